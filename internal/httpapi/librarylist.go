package httpapi

import (
	"log/slog"
	"net/http"
)

type LibraryHandler struct {
	store  Store
	logger *slog.Logger
}

func NewLibraryHandler(store Store, logger *slog.Logger) *LibraryHandler {
	return &LibraryHandler{store: store, logger: logger}
}

// List returns every owned series with a representative cover, optionally
// filtered by a title or author substring.
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListLibrary(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	resp := make([]LibrarySeriesResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, LibrarySeriesResponse{
			SeriesResponse:         toSeriesResponse(entry.Series),
			RepresentativeCoverURL: nullable(entry.RepresentativeCoverURL),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
