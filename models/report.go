package models

import "time"

// StepReport records the table shape around one pipeline step.
type StepReport struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	RowsBefore int    `json:"rows_before"`
	RowsAfter  int    `json:"rows_after"`
	ColsBefore int    `json:"cols_before"`
	ColsAfter  int    `json:"cols_after"`
}

// Dropped returns the number of rows the step removed.
func (s StepReport) Dropped() int {
	return s.RowsBefore - s.RowsAfter
}

// RunReport summarises one cleaning run.
type RunReport struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	InputRows  int          `json:"input_rows"`
	OutputRows int          `json:"output_rows"`
	Steps      []StepReport `json:"steps"`
}

// RunRecord is a run summary as stored in PostgreSQL.
type RunRecord struct {
	RunID      string    `db:"run_id"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
	InputRows  int       `db:"input_rows"`
	OutputRows int       `db:"output_rows"`
	Steps      string    `db:"steps"` // JSON array of StepReport
}

// InsightReport holds the computed analytics over the cleaned dataset.
type InsightReport struct {
	InputRows        int
	OutputRows       int
	Columns          []string
	DroppedByStep    []StepReport
	CancellationRate float64
	WithChildrenRate float64
	AveragePrice     float64
	PriceStdDev      float64
	MinPrice         float64
	MaxPrice         float64
}
