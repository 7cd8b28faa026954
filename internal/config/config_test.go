package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", settings.Addr)
	assert.Equal(t, "data/library.db", settings.DBPath)
	assert.Equal(t, "https://ndlsearch.ndl.go.jp/api/opensearch", settings.NDLBaseURL)
	assert.Equal(t, float64(10), settings.RequestPolicy.TimeoutSeconds)
	assert.Equal(t, 1, settings.RequestPolicy.MaxRetries)
	assert.Empty(t, settings.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("NDL_TIMEOUT_SECONDS", "2.5")
	t.Setenv("NDL_MAX_RETRIES", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", settings.Addr)
	assert.Equal(t, 2.5, settings.RequestPolicy.TimeoutSeconds)
	assert.Equal(t, 0, settings.RequestPolicy.MaxRetries)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, settings.AllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non numeric timeout", key: "NDL_TIMEOUT_SECONDS", value: "abc"},
		{name: "zero timeout", key: "NDL_TIMEOUT_SECONDS", value: "0"},
		{name: "negative retries", key: "NDL_MAX_RETRIES", value: "-1"},
		{name: "base url without host", key: "NDL_BASE_URL", value: "not-a-url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
