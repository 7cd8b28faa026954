package httpapi

import (
	"log/slog"
	"net/http"
)

type HealthHandler struct {
	store  Store
	logger *slog.Logger
}

func NewHealthHandler(store Store, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, logger: logger}
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Manga Shelf API"})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "database connection failed", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "API is running"})
}
