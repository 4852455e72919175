package main

import (
	"fmt"
	"os"

	"hotel-reservations/config"
	"hotel-reservations/services"
	"hotel-reservations/storage"
	"hotel-reservations/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))

	logger.Info("=== Hotel reservations cleaning starting ===")
	logger.Info("Config: raw %s | processed %s | isolation forest %d trees, contamination %.3f, seed %d",
		cfg.RawCSVPath, cfg.ProcessedCSVPath, cfg.IsoForestTrees, cfg.IsoForestContamination, cfg.IsoForestSeed)

	if err := run(cfg, logger); err != nil {
		logger.Error("Cleaning run failed: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *utils.Logger) error {
	raw, err := storage.LoadTable(cfg.RawCSVPath)
	if err != nil {
		return err
	}
	logger.Info("[csv] Loaded %d rows x %d columns from %s", raw.Rows(), raw.Cols(), cfg.RawCSVPath)

	cleaner := services.NewCleaner(logger, services.OutlierConfig{
		Trees:         cfg.IsoForestTrees,
		Contamination: cfg.IsoForestContamination,
		Seed:          cfg.IsoForestSeed,
		Workers:       cfg.MaxConcurrency,
	})
	cleaned, report, err := cleaner.Clean(raw)
	if err != nil {
		return err
	}

	if err := storage.SaveTable(cleaned, cfg.ProcessedCSVPath); err != nil {
		return err
	}
	logger.Info("[csv] Cleaned dataset saved to %s", cfg.ProcessedCSVPath)

	if cfg.PostgresEnabled {
		if err := persist(cfg, logger, report, cleaned); err != nil {
			return err
		}
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(cleaned, report))

	fmt.Printf("  Done. Raw CSV → %s | Clean CSV → %s\n\n", cfg.RawCSVPath, cfg.ProcessedCSVPath)
	return nil
}
