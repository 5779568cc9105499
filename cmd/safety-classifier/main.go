package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vault-analyzer/internal/classifier"
	"vault-analyzer/internal/logging"
	"vault-analyzer/internal/startup"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	predictor, err := classifier.LoadPredictor(config.ModelPath)
	if err != nil {
		startup.LogFatal("Model load error: %v", err)
	}

	svc := classifier.New(predictor, config.ConfidenceThreshold)
	if svc.ModelLoaded() {
		logging.Info("Serving real verdicts (threshold %v)", svc.Threshold())
	} else {
		logging.Warn("Serving mock verdicts; place weights under %s to enable detection", config.ModelPath)
	}

	srv := &http.Server{
		Addr:         ":" + config.ClassifierPort,
		Handler:      svc.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan

		logging.Info("Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logging.Warn("Server shutdown error: %v", err)
		}
	}()

	logging.Info("Safety classifier listening on :%s (startup %s)",
		config.ClassifierPort, time.Since(startTime).Round(time.Millisecond))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}
