package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToISO8601UTC(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "sqlite timestamp", input: "2026-08-30 10:04:05", want: "2026-08-30T10:04:05Z"},
		{name: "already rfc3339", input: "2026-08-30T10:04:05Z", want: "2026-08-30T10:04:05Z"},
		{name: "unparseable passes through", input: "yesterday", want: "yesterday"},
		{name: "empty", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toISO8601UTC(tt.input))
		})
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "SERIES_NOT_FOUND", "series not found", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "SERIES_NOT_FOUND", payload.Error.Code)
	assert.Equal(t, "series not found", payload.Error.Message)
	assert.NotNil(t, payload.Error.Details)
	assert.Empty(t, payload.Error.Details)
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	require.NotNil(t, nullable("x"))
	assert.Equal(t, "x", *nullable("x"))
}
