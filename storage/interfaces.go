package storage

import (
	"hotel-reservations/models"
	"hotel-reservations/table"
)

// RunWriter is the interface any run-history backend must satisfy.
type RunWriter interface {
	WriteRun(report *models.RunReport, cleaned *table.Table) error
	Close() error
}
