package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"mangashelf/internal/catalog"
	"mangashelf/internal/ndl"
	"mangashelf/internal/textnorm"
)

const (
	searchLimitDefault = 10
	searchLimitMax     = 100

	// searchLimitWidenFactor over-fetches before owned-status assignment so
	// the trimmed page still fills up after upstream rows are discarded.
	searchLimitWidenFactor = 5
)

type CatalogHandler struct {
	store   Store
	catalog CatalogClient
	logger  *slog.Logger
}

func NewCatalogHandler(store Store, client CatalogClient, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{store: store, catalog: client, logger: logger}
}

// Search proxies a keyword search to the catalog and annotates each result
// with its owned status.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	limit := searchLimitDefault
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > searchLimitMax {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be between 1 and 100", map[string]any{
				"field": "limit",
			})
			return
		}
		limit = parsed
	}

	widened := limit * searchLimitWidenFactor
	if widened > searchLimitMax {
		widened = searchLimitMax
	}

	candidates, err := h.catalog.SearchByKeyword(r.Context(), query, widened, 1)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	registered, err := h.registeredAmong(r, candidates)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	candidates = catalog.AssignOwnedAll(candidates, registered)

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	resp := make([]CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		resp = append(resp, toCandidateResponse(candidate))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Lookup fetches a single catalog record by ISBN.
func (h *CatalogHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	rawISBN := r.URL.Query().Get("isbn")
	isbn, err := textnorm.ISBN(rawISBN)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ISBN", "isbn must be a 13 digit ISBN", map[string]any{
			"isbn": rawISBN,
		})
		return
	}

	candidate, err := h.catalog.LookupByIdentifier(r.Context(), isbn)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if candidate == nil {
		writeError(w, http.StatusNotFound, "CATALOG_ITEM_NOT_FOUND", "catalog item not found", map[string]any{
			"isbn":            isbn,
			"upstream":        "NDL Search",
			"externalFailure": false,
		})
		return
	}

	registered, err := h.registeredAmong(r, []ndl.SearchCandidate{*candidate})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	resolved := catalog.AssignOwned(*candidate, registered)
	writeJSON(w, http.StatusOK, toCandidateResponse(resolved))
}

func (h *CatalogHandler) registeredAmong(r *http.Request, candidates []ndl.SearchCandidate) (map[string]struct{}, error) {
	isbns := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ISBN != "" {
			isbns = append(isbns, candidate.ISBN)
		}
	}
	return h.store.RegisteredISBNs(r.Context(), isbns)
}
