package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"mangashelf/internal/library"
	"mangashelf/internal/ndl"
	"mangashelf/internal/textnorm"
)

// respondError maps domain errors onto the JSON error envelope. Upstream
// failures are logged before being forwarded so operators can tell catalog
// outages apart from client mistakes.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var clientErr *ndl.ClientError
	if errors.As(err, &clientErr) {
		if clientErr.ExternalFailure() {
			logger.Error("upstream catalog failure",
				slog.String("code", clientErr.Code),
				slog.Int("status", clientErr.StatusCode),
				slog.String("message", clientErr.Message),
			)
		}
		writeError(w, clientErr.StatusCode, clientErr.Code, clientErr.Message, clientErr.Details)
		return
	}

	switch {
	case errors.Is(err, textnorm.ErrInvalidISBN):
		writeError(w, http.StatusBadRequest, "INVALID_ISBN", "isbn must be a 13 digit ISBN", nil)
	case errors.Is(err, ndl.ErrBlankQuery):
		writeError(w, http.StatusBadRequest, "INVALID_CATALOG_SEARCH_QUERY", "search query must not be blank", map[string]any{
			"reason": "blank",
		})
	case errors.Is(err, ndl.ErrInvalidLimit), errors.Is(err, ndl.ErrInvalidPage):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, library.ErrSeriesNotFound):
		writeError(w, http.StatusNotFound, "SERIES_NOT_FOUND", "series not found", nil)
	case errors.Is(err, library.ErrVolumeNotFound):
		writeError(w, http.StatusNotFound, "VOLUME_NOT_FOUND", "volume not found", nil)
	case errors.Is(err, library.ErrVolumeExists):
		writeError(w, http.StatusConflict, "VOLUME_ALREADY_EXISTS", "volume is already registered", nil)
	case errors.Is(err, library.ErrConstraint):
		writeError(w, http.StatusConflict, "DB_CONSTRAINT_VIOLATION", "database constraint violation", nil)
	default:
		logger.Error("unhandled error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
	}
}
