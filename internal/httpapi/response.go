package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"mangashelf/internal/library"
	"mangashelf/internal/ndl"
)

// ErrorBody is the uniform error envelope: {"error": {code, message, details}}.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	writeJSON(w, statusCode, ErrorBody{Error: ErrorDetail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// SeriesResponse is the wire shape of a registered series.
type SeriesResponse struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Author    *string `json:"author"`
	Publisher *string `json:"publisher"`
}

// LibrarySeriesResponse adds the representative cover to a series row.
type LibrarySeriesResponse struct {
	SeriesResponse
	RepresentativeCoverURL *string `json:"representative_cover_url"`
}

// VolumeResponse is the wire shape of a registered volume.
type VolumeResponse struct {
	ISBN         string  `json:"isbn"`
	VolumeNumber *int    `json:"volume_number"`
	CoverURL     *string `json:"cover_url"`
	RegisteredAt string  `json:"registered_at"`
}

// SeriesDetailResponse is a series with its registered volumes.
type SeriesDetailResponse struct {
	SeriesResponse
	Volumes []VolumeResponse `json:"volumes"`
}

// CreateVolumeResponse is the registration result.
type CreateVolumeResponse struct {
	Series SeriesResponse `json:"series"`
	Volume VolumeResponse `json:"volume"`
}

// CandidateResponse is the wire shape of a catalog search candidate,
// including the tri-state owned flag.
type CandidateResponse struct {
	Title        string          `json:"title"`
	Author       *string         `json:"author"`
	Publisher    *string         `json:"publisher"`
	ISBN         *string         `json:"isbn"`
	VolumeNumber *int            `json:"volume_number"`
	CoverURL     *string         `json:"cover_url"`
	Owned        ndl.OwnedStatus `json:"owned"`
}

// BookResponse is one unregistered series candidate; unlike
// CandidateResponse its ISBN is always present.
type BookResponse struct {
	Title        string  `json:"title"`
	Author       *string `json:"author"`
	Publisher    *string `json:"publisher"`
	ISBN         string  `json:"isbn"`
	VolumeNumber *int    `json:"volume_number"`
	CoverURL     *string `json:"cover_url"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toSeriesResponse(series library.Series) SeriesResponse {
	return SeriesResponse{
		ID:        series.ID,
		Title:     series.Title,
		Author:    nullable(series.Author),
		Publisher: nullable(series.Publisher),
	}
}

func toVolumeResponse(volume library.Volume) VolumeResponse {
	return VolumeResponse{
		ISBN:         volume.ISBN,
		VolumeNumber: volume.VolumeNumber,
		CoverURL:     nullable(volume.CoverURL),
		RegisteredAt: toISO8601UTC(volume.RegisteredAt),
	}
}

func toCandidateResponse(candidate ndl.SearchCandidate) CandidateResponse {
	return CandidateResponse{
		Title:        candidate.Title,
		Author:       nullable(candidate.Author),
		Publisher:    nullable(candidate.Publisher),
		ISBN:         nullable(candidate.ISBN),
		VolumeNumber: candidate.VolumeNumber,
		CoverURL:     nullable(candidate.CoverURL),
		Owned:        candidate.Owned,
	}
}

func toBookResponse(candidate ndl.SearchCandidate) BookResponse {
	return BookResponse{
		Title:        candidate.Title,
		Author:       nullable(candidate.Author),
		Publisher:    nullable(candidate.Publisher),
		ISBN:         candidate.ISBN,
		VolumeNumber: candidate.VolumeNumber,
		CoverURL:     nullable(candidate.CoverURL),
	}
}

// sqliteTimestampLayout matches the datetime('now') default used by the
// store.
const sqliteTimestampLayout = "2006-01-02 15:04:05"

// toISO8601UTC converts a stored timestamp to ISO-8601 UTC with a Z suffix.
// Unparseable values pass through untouched.
func toISO8601UTC(raw string) string {
	if parsed, err := time.Parse(sqliteTimestampLayout, raw); err == nil {
		return parsed.UTC().Format("2006-01-02T15:04:05Z")
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC().Format("2006-01-02T15:04:05Z")
	}
	return raw
}
