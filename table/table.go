// Package table holds the in-memory reservation table the cleaning pipeline
// operates on. A Table wraps a gota DataFrame and remembers how each one-hot
// encoded column group was built, so later steps can decode the implicit
// baseline category. Every operation returns a new Table.
package table

import (
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"hotel-reservations/models"
)

// Encoding describes a one-hot encoded column group.
type Encoding struct {
	Source     string
	Baseline   string   // category with no indicator column; "" when there were no categories
	Categories []string // every category seen, sorted; Categories[0] is the baseline
}

// Indicators returns the indicator column names of the group, baseline excluded.
func (e Encoding) Indicators() []string {
	if len(e.Categories) < 2 {
		return nil
	}
	out := make([]string, 0, len(e.Categories)-1)
	for _, c := range e.Categories[1:] {
		out = append(out, models.IndicatorName(e.Source, c))
	}
	return out
}

// Table is an ordered collection of rows sharing one column schema.
type Table struct {
	df        dataframe.DataFrame
	encodings map[string]Encoding
}

// New wraps df. It returns df's load error, if any.
func New(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	return &Table{df: df, encodings: map[string]Encoding{}}, nil
}

func (t *Table) derive(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("table: %w", df.Err)
	}
	enc := make(map[string]Encoding, len(t.encodings))
	for k, v := range t.encodings {
		enc[k] = v
	}
	return &Table{df: df, encodings: enc}, nil
}

// DataFrame exposes the underlying frame for serialization.
func (t *Table) DataFrame() dataframe.DataFrame { return t.df }

func (t *Table) Rows() int { return t.df.Nrow() }

func (t *Table) Cols() int { return t.df.Ncol() }

// Columns returns the column names in table order.
func (t *Table) Columns() []string { return t.df.Names() }

// Has reports whether col is a column of the table.
func (t *Table) Has(col string) bool {
	for _, n := range t.df.Names() {
		if n == col {
			return true
		}
	}
	return false
}

// Require returns a SchemaError for the first of cols the table lacks.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return &models.SchemaError{Column: c}
		}
	}
	return nil
}

// Floats returns col parsed as float64. Unparsable cells are NaN.
func (t *Table) Floats(col string) ([]float64, error) {
	if err := t.Require(col); err != nil {
		return nil, err
	}
	return t.df.Col(col).Float(), nil
}

// Strings returns the textual cells of col.
func (t *Table) Strings(col string) ([]string, error) {
	if err := t.Require(col); err != nil {
		return nil, err
	}
	return t.df.Col(col).Records(), nil
}

// Records returns the header followed by every row as strings.
func (t *Table) Records() [][]string { return t.df.Records() }

// Encoding returns the encoding recorded for source, if it was one-hot encoded.
func (t *Table) Encoding(source string) (Encoding, bool) {
	e, ok := t.encodings[source]
	return e, ok
}

// Filter keeps the rows for which keep returns true, in their original order.
func (t *Table) Filter(keep func(i int) bool) (*Table, error) {
	n := t.Rows()
	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	if len(idx) == n {
		return t.derive(t.df)
	}
	return t.derive(t.df.Subset(idx))
}

// Drop removes cols. Every column must exist.
func (t *Table) Drop(cols ...string) (*Table, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	out, err := t.derive(t.df.Drop(cols))
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		delete(out.encodings, c)
	}
	return out, nil
}

// Select keeps only cols, in the given order.
func (t *Table) Select(cols []string) (*Table, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	return t.derive(t.df.Select(cols))
}

// SetInts replaces col, or appends it when absent.
func (t *Table) SetInts(col string, vals []int) (*Table, error) {
	return t.mutate(series.New(vals, series.Int, col))
}

// SetStrings replaces col, or appends it when absent.
func (t *Table) SetStrings(col string, vals []string) (*Table, error) {
	return t.mutate(series.New(vals, series.String, col))
}

// SetFloats replaces col, or appends it when absent.
func (t *Table) SetFloats(col string, vals []float64) (*Table, error) {
	return t.mutate(series.New(vals, series.Float, col))
}

func (t *Table) mutate(s series.Series) (*Table, error) {
	if s.Len() != t.Rows() {
		return nil, fmt.Errorf("table: column %q has %d values, table has %d rows", s.Name, s.Len(), t.Rows())
	}
	return t.derive(t.df.Mutate(s))
}

// Matrix returns the given columns as a row-major float64 matrix.
func (t *Table) Matrix(cols []string) ([][]float64, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	n := t.Rows()
	X := make([][]float64, n)
	for i := range X {
		X[i] = make([]float64, len(cols))
	}
	for j, c := range cols {
		for i, v := range t.df.Col(c).Float() {
			X[i][j] = v
		}
	}
	return X, nil
}

func isMissing(s string) bool {
	return s == "" || s == "NaN" || s == "NA"
}

func distinctSorted(vals []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range vals {
		if isMissing(v) {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
