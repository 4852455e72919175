package main

import (
	"fmt"
	"os"

	"hotel-reservations/config"
	"hotel-reservations/ml"
	"hotel-reservations/models"
	"hotel-reservations/services"
	"hotel-reservations/storage"
	"hotel-reservations/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

	logger.Info("=== Booking cancellation model training ===")
	if err := run(cfg, logger); err != nil {
		logger.Error("Training failed: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *utils.Logger) error {
	features, err := models.FeatureSchema(cfg.FeatureSchema)
	if err != nil {
		return err
	}

	cleaned, err := storage.LoadTable(cfg.ProcessedCSVPath)
	if err != nil {
		return err
	}
	logger.Info("[csv] Loaded %d cleaned rows from %s", cleaned.Rows(), cfg.ProcessedCSVPath)

	trainer := services.NewTrainer(logger,
		ml.WithNEstimators(cfg.ForestTrees),
		ml.WithRandomState(cfg.ForestSeed),
		ml.WithWorkers(cfg.MaxConcurrency),
	)
	rf, report, err := trainer.Train(cleaned, features)
	if err != nil {
		return err
	}

	if err := storage.SaveModel(rf, cfg.ModelPath); err != nil {
		return err
	}
	logger.Info("[train] Model saved to %s (%s schema, %d features)", cfg.ModelPath, cfg.FeatureSchema, report.Features)

	fmt.Printf("\n  Training accuracy %.2f%% on %d rows. Model → %s\n\n",
		report.Accuracy*100, report.Rows, cfg.ModelPath)
	return nil
}
