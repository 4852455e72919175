package main

import (
	"fmt"
	"time"

	"hotel-reservations/config"
	"hotel-reservations/models"
	"hotel-reservations/storage"
	"hotel-reservations/table"
	"hotel-reservations/utils"
)

// persist stores the run summary and cleaned rows in PostgreSQL.
func persist(cfg *config.Config, logger *utils.Logger, report *models.RunReport, cleaned *table.Table) error {
	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   time.Second,
		Logger:      logger,
	}
	pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), retry)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		return err
	}
	defer pgWriter.Close()

	if err := storeRun(pgWriter, logger, report, cleaned); err != nil {
		return err
	}

	runs, err := pgWriter.FetchRuns(5)
	if err != nil {
		logger.Warn("[postgres] Could not read run history: %v", err)
		return nil
	}
	for _, r := range runs {
		logger.Info("[postgres] run %s at %s: %d -> %d rows",
			r.RunID, r.StartedAt.Format(time.RFC3339), r.InputRows, r.OutputRows)
	}
	return nil
}

// storeRun writes one run to w.
func storeRun(w storage.RunWriter, logger *utils.Logger, report *models.RunReport, cleaned *table.Table) error {
	if err := w.WriteRun(report, cleaned); err != nil {
		return fmt.Errorf("store run %s: %w", report.RunID, err)
	}
	logger.Info("[postgres] Run %s stored (%d rows in cleaned_reservations)", report.RunID, cleaned.Rows())
	return nil
}
