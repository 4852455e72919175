package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hotel-reservations/models"
	"hotel-reservations/table"
	"hotel-reservations/utils"
)

// Step is one named transformation of the reservation table.
type Step struct {
	Name  string
	Apply func(t *table.Table) (*table.Table, error)
}

// OutlierConfig parameterises the Isolation Forest step.
type OutlierConfig struct {
	Trees         int
	Contamination float64
	Seed          int64
	Workers       int
}

// DefaultOutlierConfig returns 100 trees, contamination 0.075 and seed 0.
func DefaultOutlierConfig() OutlierConfig {
	return OutlierConfig{Trees: 100, Contamination: 0.075, Seed: 0}
}

// Cleaner turns the raw reservations table into the model training table by
// applying a fixed sequence of steps.
type Cleaner struct {
	logger   *utils.Logger
	outliers OutlierConfig
	steps    []Step
}

// NewCleaner creates a Cleaner with the given logger and outlier settings.
func NewCleaner(logger *utils.Logger, outliers OutlierConfig) *Cleaner {
	c := &Cleaner{logger: logger, outliers: outliers}
	c.steps = c.pipeline()
	return c
}

// Steps returns the step sequence in execution order.
func (c *Cleaner) Steps() []Step {
	out := make([]Step, len(c.steps))
	copy(out, c.steps)
	return out
}

// Clean applies every step in order. The first failing step aborts the run
// and no table is returned.
func (c *Cleaner) Clean(raw *table.Table) (*table.Table, *models.RunReport, error) {
	return c.run(raw, c.steps)
}

func (c *Cleaner) run(raw *table.Table, steps []Step) (*table.Table, *models.RunReport, error) {
	report := &models.RunReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		InputRows: raw.Rows(),
	}
	c.logger.Info("[cleaner] run %s: %d rows x %d columns", report.RunID, raw.Rows(), raw.Cols())

	cur := raw
	for i, step := range steps {
		sr := models.StepReport{
			Index:      i + 1,
			Name:       step.Name,
			RowsBefore: cur.Rows(),
			ColsBefore: cur.Cols(),
		}

		next, err := step.Apply(cur)
		if err != nil {
			var schemaErr *models.SchemaError
			if errors.As(err, &schemaErr) && schemaErr.Step == "" {
				schemaErr.Step = step.Name
			}
			c.logger.Error("[cleaner] step %02d %s failed: %v", sr.Index, step.Name, err)
			return nil, nil, fmt.Errorf("cleaner: step %d (%s): %w", sr.Index, step.Name, err)
		}
		cur = next

		sr.RowsAfter = cur.Rows()
		sr.ColsAfter = cur.Cols()
		report.Steps = append(report.Steps, sr)
		c.logger.Info("[cleaner] step %02d %-45s rows %6d -> %6d  cols %2d -> %2d",
			sr.Index, step.Name, sr.RowsBefore, sr.RowsAfter, sr.ColsBefore, sr.ColsAfter)
	}

	report.OutputRows = cur.Rows()
	report.FinishedAt = time.Now()
	c.logger.Info("[cleaner] Cleaned %d -> %d rows (dropped %d) in %v",
		report.InputRows, report.OutputRows, report.InputRows-report.OutputRows,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return cur, report, nil
}
