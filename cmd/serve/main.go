package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"hotel-reservations/api"
	"hotel-reservations/config"
	"hotel-reservations/models"
	"hotel-reservations/services"
	"hotel-reservations/storage"
	"hotel-reservations/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

	if err := run(cfg, logger); err != nil {
		logger.Error("Prediction service stopped: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *utils.Logger) error {
	rf, err := storage.LoadModel(cfg.ModelPath)
	if err != nil {
		return err
	}

	features, err := models.FeatureSchema(cfg.FeatureSchema)
	if err != nil {
		return err
	}
	if len(rf.Features) > 0 && !slices.Equal(features, rf.Features) {
		logger.Warn("[api] Model at %s was trained on %d features, not the %s schema; serving the model's own feature list",
			cfg.ModelPath, len(rf.Features), cfg.FeatureSchema)
		features = rf.Features
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	predictor := services.NewPredictor(rf, features)
	logger.Debug("[api] Feature order: %s", strings.Join(predictor.Features(), ", "))

	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	srv := &http.Server{
		Addr:              cfg.ServeAddr,
		Handler:           api.NewRouter(predictor, logger, timeout, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[api] Serving %d-feature model on %s", len(predictor.Features()), cfg.ServeAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("[api] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
