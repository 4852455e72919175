package table

import (
	"fmt"

	"hotel-reservations/models"
)

// OneHot replaces the categorical column source with one 0/1 indicator column
// per category, except the first category in sorted order, which becomes the
// baseline and is represented by all indicators being zero. Indicator columns
// are appended after the existing columns. Missing cells get all zeros. A
// column with no categories yields no indicators, which is an error only
// when source is the sole column of the table.
func (t *Table) OneHot(source string) (*Table, error) {
	vals, err := t.Strings(source)
	if err != nil {
		return nil, err
	}

	cats := distinctSorted(vals)
	enc := Encoding{Source: source, Categories: cats}
	if len(cats) > 0 {
		enc.Baseline = cats[0]
	}

	out := t
	for _, cat := range enc.Categories[min(1, len(cats)):] {
		ind := make([]int, len(vals))
		for i, v := range vals {
			if v == cat {
				ind[i] = 1
			}
		}
		if out, err = out.SetInts(models.IndicatorName(source, cat), ind); err != nil {
			return nil, err
		}
	}
	if out.Cols() == 1 {
		return nil, fmt.Errorf("table: one-hot encoding %q would leave no columns", source)
	}
	if out, err = out.Drop(source); err != nil {
		return nil, err
	}
	out.encodings[source] = enc
	return out, nil
}

// Decode returns the category of every row of an encoded column group,
// reading the baseline back for rows whose indicators are all zero. It
// returns a SchemaError when source was never one-hot encoded.
func (t *Table) Decode(source string) ([]string, error) {
	enc, ok := t.encodings[source]
	if !ok {
		return nil, &models.SchemaError{Column: source}
	}
	out := make([]string, t.Rows())
	for i := range out {
		out[i] = enc.Baseline
	}
	for _, cat := range enc.Categories[min(1, len(enc.Categories)):] {
		vals, err := t.Floats(models.IndicatorName(source, cat))
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			if v == 1 {
				out[i] = cat
			}
		}
	}
	return out, nil
}

// Bucket maps each numeric cell of col to a label and stores the labels as
// a string column in place of the numbers.
func (t *Table) Bucket(col string, label func(v float64) string) (*Table, error) {
	vals, err := t.Floats(col)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(vals))
	for i, v := range vals {
		labels[i] = label(v)
	}
	return t.SetStrings(col, labels)
}
