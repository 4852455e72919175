package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cast"

	"hotel-reservations/models"
	"hotel-reservations/table"
)

// Classifier labels rows of a feature matrix.
type Classifier interface {
	Predict(X [][]float64) ([]int, error)
}

// Predictor checks prediction input against a fixed, ordered feature
// schema and forwards it to a trained classifier.
type Predictor struct {
	model    Classifier
	features []string
}

func NewPredictor(model Classifier, features []string) *Predictor {
	return &Predictor{model: model, features: append([]string(nil), features...)}
}

// Features returns the ordered feature columns the predictor expects.
func (p *Predictor) Features() []string {
	return append([]string(nil), p.features...)
}

// PredictRecords labels a batch of records. Every record must carry
// exactly the schema's columns with numeric values.
func (p *Predictor) PredictRecords(records []map[string]any) ([]int, error) {
	if len(records) == 0 {
		return []int{}, nil
	}
	X := make([][]float64, len(records))
	for i, rec := range records {
		missing, unexpected := p.compare(keys(rec))
		if len(missing) > 0 || len(unexpected) > 0 {
			return nil, &models.ValidationError{
				Missing:    missing,
				Unexpected: unexpected,
				Msg:        fmt.Sprintf("record %d", i),
			}
		}
		row := make([]float64, len(p.features))
		for j, col := range p.features {
			v, err := toFloat(rec[col])
			if err != nil {
				return nil, &models.ValidationError{Msg: fmt.Sprintf("record %d: column %q: %v", i, col, err)}
			}
			row[j] = v
		}
		X[i] = row
	}
	return p.predict(X)
}

// PredictTable labels every row of t. The target column and any column
// outside the schema are ignored; every schema cell must be numeric.
func (p *Predictor) PredictTable(t *table.Table) ([]int, error) {
	missing, _ := p.compare(t.Columns())
	if len(missing) > 0 {
		return nil, &models.ValidationError{Missing: missing}
	}
	X := make([][]float64, t.Rows())
	for i := range X {
		X[i] = make([]float64, len(p.features))
	}
	for j, col := range p.features {
		cells, err := t.Strings(col)
		if err != nil {
			return nil, err
		}
		for i, cell := range cells {
			v, err := toFloat(cell)
			if err != nil {
				return nil, &models.ValidationError{Msg: fmt.Sprintf("row %d: column %q: %v", i+1, col, err)}
			}
			X[i][j] = v
		}
	}
	return p.predict(X)
}

func (p *Predictor) predict(X [][]float64) ([]int, error) {
	labels, err := p.model.Predict(X)
	if err != nil {
		return nil, fmt.Errorf("predictor: %w", err)
	}
	return labels, nil
}

// compare returns the schema columns absent from cols and the columns of
// cols outside the schema, both sorted.
func (p *Predictor) compare(cols []string) (missing, unexpected []string) {
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c] = true
	}
	want := make(map[string]bool, len(p.features))
	for _, f := range p.features {
		want[f] = true
		if !have[f] {
			missing = append(missing, f)
		}
	}
	for _, c := range cols {
		if !want[c] {
			unexpected = append(unexpected, c)
		}
	}
	sort.Strings(missing)
	sort.Strings(unexpected)
	return missing, unexpected
}

// toFloat coerces a cell to float64. Nulls, NaN and text that is not a
// number are rejected.
func toFloat(v any) (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("null value")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("missing value %q", fmt.Sprint(v))
	}
	return f, nil
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
