package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries everything NewRouter needs to assemble the HTTP
// surface.
type RouterConfig struct {
	Store           Store
	Catalog         CatalogClient
	Logger          *slog.Logger
	MetricsGatherer prometheus.Gatherer
	AllowedOrigins  []string
}

// NewRouter wires handlers and middleware into the API's route table.
func NewRouter(cfg RouterConfig) http.Handler {
	healthHandler := NewHealthHandler(cfg.Store, cfg.Logger)
	seriesHandler := NewSeriesHandler(cfg.Store, cfg.Catalog, cfg.Logger)
	volumeHandler := NewVolumeHandler(cfg.Store, cfg.Catalog, cfg.Logger)
	catalogHandler := NewCatalogHandler(cfg.Store, cfg.Catalog, cfg.Logger)
	libraryHandler := NewLibraryHandler(cfg.Store, cfg.Logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", healthHandler.Root)
	mux.HandleFunc("GET /health", healthHandler.Health)

	mux.HandleFunc("POST /api/series", seriesHandler.Create)
	mux.HandleFunc("GET /api/series", seriesHandler.List)
	mux.HandleFunc("GET /api/series/{id}", seriesHandler.Detail)
	mux.HandleFunc("DELETE /api/series/{id}/volumes", seriesHandler.Delete)
	mux.HandleFunc("GET /api/series/{id}/candidates", seriesHandler.Candidates)

	mux.HandleFunc("POST /api/volumes", volumeHandler.Create)
	mux.HandleFunc("DELETE /api/volumes/{isbn}", volumeHandler.Delete)

	mux.HandleFunc("GET /api/library", libraryHandler.List)

	mux.HandleFunc("GET /api/catalog/search", catalogHandler.Search)
	mux.HandleFunc("GET /api/catalog/lookup", catalogHandler.Lookup)

	if cfg.MetricsGatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	var handler http.Handler = mux
	handler = CORSMiddleware(cfg.AllowedOrigins)(handler)
	handler = RecoveryMiddleware(cfg.Logger)(handler)
	handler = AccessLogMiddleware(cfg.Logger)(handler)
	handler = RequestIDMiddleware(handler)
	return handler
}
