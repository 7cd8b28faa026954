package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mangashelf/internal/library"
	"mangashelf/internal/textnorm"
)

type VolumeHandler struct {
	store   Store
	catalog CatalogClient
	logger  *slog.Logger
}

func NewVolumeHandler(store Store, client CatalogClient, logger *slog.Logger) *VolumeHandler {
	return &VolumeHandler{store: store, catalog: client, logger: logger}
}

type createVolumeRequest struct {
	ISBN string `json:"isbn"`
}

// Create registers a volume by ISBN: it resolves metadata from the catalog,
// finds or creates the matching series, and stores the volume under it.
func (h *VolumeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createVolumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}

	isbn, err := textnorm.ISBN(req.ISBN)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ISBN", "isbn must be a 13 digit ISBN", map[string]any{
			"isbn": req.ISBN,
		})
		return
	}

	ctx := r.Context()

	if seriesID, err := h.store.ExistingVolumeSeriesID(ctx, isbn); err == nil {
		h.respondAlreadyRegistered(w, isbn, seriesID)
		return
	} else if !errors.Is(err, library.ErrVolumeNotFound) {
		respondError(w, h.logger, err)
		return
	}

	meta, err := h.catalog.FetchVolumeMetadata(ctx, isbn)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	series, err := h.store.FindOrCreateSeries(ctx, meta.Title, meta.Author, meta.Publisher)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if err := h.store.InsertVolume(ctx, isbn, series.ID, meta.VolumeNumber, meta.CoverURL); err != nil {
		// Concurrent registration of the same ISBN loses the race here.
		if errors.Is(err, library.ErrVolumeExists) {
			if seriesID, lookupErr := h.store.ExistingVolumeSeriesID(ctx, isbn); lookupErr == nil {
				h.respondAlreadyRegistered(w, isbn, seriesID)
				return
			}
		}
		respondError(w, h.logger, err)
		return
	}

	storedSeries, storedVolume, err := h.store.VolumeWithSeries(ctx, isbn)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateVolumeResponse{
		Series: toSeriesResponse(storedSeries),
		Volume: toVolumeResponse(storedVolume),
	})
}

func (h *VolumeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	isbn, err := textnorm.ISBN(r.PathValue("isbn"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ISBN", "isbn must be a 13 digit ISBN", map[string]any{
			"isbn": r.PathValue("isbn"),
		})
		return
	}

	seriesID, remaining, err := h.store.DeleteVolume(r.Context(), isbn)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted": map[string]any{
			"isbn":                 isbn,
			"seriesId":             seriesID,
			"remainingVolumeCount": remaining,
		},
	})
}

func (h *VolumeHandler) respondAlreadyRegistered(w http.ResponseWriter, isbn string, seriesID int64) {
	writeError(w, http.StatusConflict, "VOLUME_ALREADY_EXISTS", "volume is already registered", map[string]any{
		"isbn":     isbn,
		"seriesId": seriesID,
	})
}
