package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mangashelf/internal/config"
	"mangashelf/internal/httpapi"
	"mangashelf/internal/library"
	"mangashelf/internal/ndl"
)

func main() {
	_ = godotenv.Load(".env.local")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	settings, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := library.Open(settings.DBPath, logger)
	if err != nil {
		logger.Error("cannot open database", slog.String("path", settings.DBPath), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	metrics := ndl.NewMetrics()
	catalogClient := ndl.NewClient(settings.NDLBaseURL, settings.RequestPolicy,
		ndl.WithMetrics(metrics),
		ndl.WithRateLimit(5),
	)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Store:           store,
		Catalog:         catalogClient,
		Logger:          logger,
		MetricsGatherer: metrics.Registry,
		AllowedOrigins:  settings.AllowedOrigins,
	})

	httpServer := &http.Server{
		Addr:         settings.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", slog.String("addr", settings.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
