package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"mangashelf/internal/catalog"
	"mangashelf/internal/library"
	"mangashelf/internal/ndl"
	"mangashelf/internal/textnorm"
)

// seriesCandidatesSearchLimit is how many catalog rows the candidate
// pipeline fetches before filtering. The pipeline discards aggressively,
// so it fetches the upstream maximum.
const seriesCandidatesSearchLimit = 100

type SeriesHandler struct {
	store   Store
	catalog CatalogClient
	logger  *slog.Logger
}

func NewSeriesHandler(store Store, client CatalogClient, logger *slog.Logger) *SeriesHandler {
	return &SeriesHandler{store: store, catalog: client, logger: logger}
}

type createSeriesRequest struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
}

func (h *SeriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	title := textnorm.Text(req.Title)
	if title == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "title is required", map[string]any{
			"field": "title",
		})
		return
	}

	series, err := h.store.CreateSeries(r.Context(), title, textnorm.Text(req.Author), textnorm.Text(req.Publisher))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSeriesResponse(series))
}

func (h *SeriesHandler) List(w http.ResponseWriter, r *http.Request) {
	seriesList, err := h.store.ListSeries(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	resp := make([]SeriesResponse, 0, len(seriesList))
	for _, series := range seriesList {
		resp = append(resp, toSeriesResponse(series))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SeriesHandler) Detail(w http.ResponseWriter, r *http.Request) {
	seriesID, ok := parseSeriesID(w, r)
	if !ok {
		return
	}

	detail, err := h.store.SeriesDetailByID(r.Context(), seriesID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	resp := SeriesDetailResponse{
		SeriesResponse: toSeriesResponse(detail.Series),
		Volumes:        make([]VolumeResponse, 0, len(detail.Volumes)),
	}
	for _, volume := range detail.Volumes {
		resp.Volumes = append(resp.Volumes, toVolumeResponse(volume))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SeriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	seriesID, ok := parseSeriesID(w, r)
	if !ok {
		return
	}

	deletedVolumes, err := h.store.DeleteSeries(r.Context(), seriesID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted": map[string]any{
			"seriesId":           seriesID,
			"deletedVolumeCount": deletedVolumes,
		},
	})
}

// Candidates searches the catalog for volumes of a registered series that
// the user does not own yet.
func (h *SeriesHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	seriesID, ok := parseSeriesID(w, r)
	if !ok {
		return
	}

	detail, err := h.store.SeriesDetailByID(r.Context(), seriesID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	target := catalog.TargetSeries{
		Title:     detail.Series.Title,
		Author:    detail.Series.Author,
		Publisher: detail.Series.Publisher,
	}
	query := catalog.BuildCandidateQuery(target)

	candidates, err := h.catalog.SearchByKeyword(r.Context(), query, seriesCandidatesSearchLimit, 1)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	registered, err := h.registeredSet(r, detail, candidates)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	registeredNumbers := make(map[int]struct{}, len(detail.Volumes))
	for _, volume := range detail.Volumes {
		if volume.VolumeNumber != nil {
			registeredNumbers[*volume.VolumeNumber] = struct{}{}
		}
	}

	unregistered := catalog.UnregisteredCandidates(target, candidates, registered, registeredNumbers)

	resp := make([]BookResponse, 0, len(unregistered))
	for _, candidate := range unregistered {
		resp = append(resp, toBookResponse(candidate))
	}
	writeJSON(w, http.StatusOK, resp)
}

// registeredSet collects ISBNs owned anywhere in the library among the
// candidate results, plus every volume of the target series.
func (h *SeriesHandler) registeredSet(r *http.Request, detail library.SeriesDetail, candidates []ndl.SearchCandidate) (map[string]struct{}, error) {
	isbns := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.ISBN != "" {
			isbns = append(isbns, candidate.ISBN)
		}
	}
	registered, err := h.store.RegisteredISBNs(r.Context(), isbns)
	if err != nil {
		return nil, err
	}
	for _, volume := range detail.Volumes {
		registered[volume.ISBN] = struct{}{}
	}
	return registered, nil
}

func parseSeriesID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	seriesID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seriesID < 1 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "series id must be a positive integer", map[string]any{
			"field": "id",
		})
		return 0, false
	}
	return seriesID, true
}
