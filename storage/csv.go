package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"hotel-reservations/models"
	"hotel-reservations/table"
)

// categoricalTypes pins the text columns so type detection never turns a
// category into a number.
var categoricalTypes = map[string]series.Type{
	models.ColBookingID:     series.String,
	models.ColMealPlan:      series.String,
	models.ColRoomType:      series.String,
	models.ColMarketSegment: series.String,
}

// LoadTable parses the CSV file at path, which must have a header row.
func LoadTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	t, err := ReadTable(bufio.NewReader(f))
	if err != nil {
		return nil, &models.IOError{Op: "parse", Path: path, Err: err}
	}
	return t, nil
}

// ReadTable parses CSV with a header row from r.
func ReadTable(r io.Reader) (*table.Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.WithTypes(categoricalTypes),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("csv: read: %w", df.Err)
	}
	return table.New(df)
}

// SaveTable writes t to path as CSV with a header row and no index column,
// creating intermediate directories as needed.
func SaveTable(t *table.Table, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &models.IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &models.IOError{Op: "create", Path: path, Err: err}
	}

	w := bufio.NewWriter(f)
	if err := WriteTable(t, w); err != nil {
		_ = f.Close()
		return &models.IOError{Op: "write", Path: path, Err: err}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return &models.IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &models.IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// WriteTable serializes t as CSV with a header row to w.
func WriteTable(t *table.Table, w io.Writer) error {
	if err := t.DataFrame().WriteCSV(w); err != nil {
		return fmt.Errorf("csv: write: %w", err)
	}
	return nil
}
