package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"hotel-reservations/models"
	"hotel-reservations/table"
	"hotel-reservations/utils"
)

// PostgresWriter persists cleaning runs and the cleaned rows to PostgreSQL.
type PostgresWriter struct {
	db *sqlx.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do("postgres ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id      UUID         PRIMARY KEY,
			started_at  TIMESTAMPTZ  NOT NULL,
			finished_at TIMESTAMPTZ  NOT NULL,
			input_rows  INTEGER      NOT NULL,
			output_rows INTEGER      NOT NULL,
			steps       JSONB        NOT NULL DEFAULT '[]'
		);

		CREATE TABLE IF NOT EXISTS cleaned_reservations (
			id      SERIAL  PRIMARY KEY,
			run_id  UUID    NOT NULL REFERENCES pipeline_runs(run_id) ON DELETE CASCADE,
			row_num INTEGER NOT NULL,
			data    JSONB   NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_cleaned_reservations_run ON cleaned_reservations(run_id);
		CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started   ON pipeline_runs(started_at);
	`)
	return err
}

// WriteRun stores the run summary and replaces the cleaned rows of earlier
// runs with the rows of cleaned, all in one transaction.
func (pw *PostgresWriter) WriteRun(report *models.RunReport, cleaned *table.Table) error {
	steps, err := json.Marshal(report.Steps)
	if err != nil {
		return fmt.Errorf("postgres: encode steps: %w", err)
	}

	tx, err := pw.db.Beginx()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cleaned_reservations"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	rec := models.RunRecord{
		RunID:      report.RunID,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		InputRows:  report.InputRows,
		OutputRows: report.OutputRows,
		Steps:      string(steps),
	}
	if _, err := tx.NamedExec(`
		INSERT INTO pipeline_runs (run_id, started_at, finished_at, input_rows, output_rows, steps)
		VALUES (:run_id, :started_at, :finished_at, :input_rows, :output_rows, :steps)
	`, rec); err != nil {
		return fmt.Errorf("postgres: insert run: %w", err)
	}

	rows, err := rowsAsJSON(cleaned.Records())
	if err != nil {
		return err
	}

	const batchSize = 500
	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))
		query, args := buildRowInsert(report.RunID, i, rows[i:end])
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// FetchRuns returns the most recent run summaries, newest first.
func (pw *PostgresWriter) FetchRuns(limit int) ([]models.RunRecord, error) {
	var runs []models.RunRecord
	err := pw.db.Select(&runs, `
		SELECT run_id, started_at, finished_at, input_rows, output_rows, steps
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch runs: %w", err)
	}
	return runs, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// rowsAsJSON turns CSV-style records (header first) into one JSON object per row.
func rowsAsJSON(records [][]string) ([][]byte, error) {
	if len(records) == 0 {
		return nil, nil
	}
	header := records[0]
	out := make([][]byte, 0, len(records)-1)
	for _, rec := range records[1:] {
		obj := make(map[string]string, len(header))
		for j, col := range header {
			obj[col] = rec[j]
		}
		b, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("postgres: encode row: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}

func buildRowInsert(runID string, offset int, batch [][]byte) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*3)

	for idx, data := range batch {
		base := idx * 3
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d)", base+1, base+2, base+3))
		valueArgs = append(valueArgs, runID, offset+idx, string(data))
	}

	query := fmt.Sprintf(`
		INSERT INTO cleaned_reservations (run_id, row_num, data)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

var _ RunWriter = (*PostgresWriter)(nil)
