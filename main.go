package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vault-analyzer/internal/analysis"
	"vault-analyzer/internal/catalog"
	"vault-analyzer/internal/logging"
	"vault-analyzer/internal/middleware"
	"vault-analyzer/internal/safety"
	"vault-analyzer/internal/startup"
	"vault-analyzer/internal/worker"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	if err := config.EnsureDirectories(); err != nil {
		startup.LogFatal("Directory setup error: %v", err)
	}

	// Initialize libvips for the fast thumbnail path
	analysis.InitVips()
	defer analysis.ShutdownVips()

	// Initialize pipeline stages
	captions := analysis.NewCaptionStage(analysis.CaptionConfig{
		APIKey:     config.CaptionAPIKey,
		BaseURL:    config.CaptionBaseURL,
		Model:      config.CaptionModel,
		Timeout:    config.CaptionTimeout,
		Confidence: config.CaptionConfidence,
	})
	thumbs := analysis.NewThumbnailRenderer(config.ThumbnailDir)
	catalogClient := catalog.NewClient(config.APIURL, config.RequestTimeout)
	safetyClient := safety.NewClient(config.NSFWURL, config.RequestTimeout)

	// Check classifier reachability; degraded mode is fine, the worker falls
	// back to mock verdicts per item.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if health, err := safetyClient.Health(pingCtx); err != nil {
		logging.Warn("Safety classifier not reachable at startup: %v", err)
	} else {
		logging.Info("Safety classifier healthy (model loaded: %v)", health.ModelLoaded)
	}
	pingCancel()

	// Initialize worker
	w := worker.New(catalogClient, safetyClient, captions, thumbs, worker.Config{
		PollInterval:    config.PollInterval,
		ItemDelay:       config.ItemDelay,
		BackoffInterval: config.BackoffInterval,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Watch the processing directory so new uploads shorten the idle wait
	go w.WatchProcessingDir(ctx, config.ProcessingPath)

	// Observability endpoint
	srv := &http.Server{
		Addr:         ":" + config.MetricsPort,
		Handler:      observabilityRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logging.Info("Metrics listening on :%s", config.MetricsPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logging.Error("Metrics server error: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan

		logging.Info("Received %s, shutting down", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		}
	}()

	logging.Info("Startup complete in %s", time.Since(startTime).Round(time.Millisecond))
	w.Run(ctx)

	logging.Info("Worker stopped")
}

func observabilityRouter() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", handleHealth).Methods("GET")
	r.HandleFunc("/healthz", handleHealth).Methods("GET")
	r.HandleFunc("/version", handleVersion).Methods("GET")
	return middleware.Chain(r, middleware.RequestID, middleware.Logger, middleware.Metrics)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(startup.GetBuildInfo())
}
