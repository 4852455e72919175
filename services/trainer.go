package services

import (
	"errors"
	"fmt"
	"time"

	"hotel-reservations/ml"
	"hotel-reservations/models"
	"hotel-reservations/table"
	"hotel-reservations/utils"
)

const trainStep = "train"

// TrainingReport holds in-sample classification metrics of a fitted model.
type TrainingReport struct {
	Rows      int
	Features  int
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	Elapsed   time.Duration
}

type Trainer struct {
	logger *utils.Logger
	opts   []ml.RandomForestOption
}

func NewTrainer(logger *utils.Logger, opts ...ml.RandomForestOption) *Trainer {
	return &Trainer{logger: logger, opts: opts}
}

// Train fits a random forest on the features columns of a cleaned table,
// with booking_status as the target.
func (tr *Trainer) Train(t *table.Table, features []string) (*ml.RandomForest, *TrainingReport, error) {
	if err := t.Require(append([]string{models.ColBookingStatus}, features...)...); err != nil {
		var se *models.SchemaError
		if errors.As(err, &se) {
			se.Step = trainStep
		}
		return nil, nil, err
	}
	if t.Rows() == 0 {
		return nil, nil, fmt.Errorf("trainer: no rows to train on")
	}

	X, err := t.Matrix(features)
	if err != nil {
		return nil, nil, err
	}
	target, err := t.Floats(models.ColBookingStatus)
	if err != nil {
		return nil, nil, err
	}
	y := make([]int, len(target))
	for i, v := range target {
		y[i] = int(v)
	}

	tr.logger.Info("[train] Fitting random forest on %d rows x %d features", len(X), len(features))
	start := time.Now()
	rf := ml.NewRandomForest(features, tr.opts...)
	if err := rf.Fit(X, y); err != nil {
		return nil, nil, fmt.Errorf("trainer: %w", err)
	}

	pred, err := rf.Predict(X)
	if err != nil {
		return nil, nil, fmt.Errorf("trainer: %w", err)
	}
	report := &TrainingReport{
		Rows:     len(X),
		Features: len(features),
		Accuracy: ml.Accuracy(y, pred),
		Elapsed:  time.Since(start),
	}
	report.Precision, report.Recall, report.F1 = ml.PrecisionRecallF1(y, pred)

	tr.logger.Info("[train] %d trees in %v | accuracy %.4f | precision %.4f | recall %.4f | f1 %.4f",
		len(rf.Trees), report.Elapsed.Round(time.Millisecond),
		report.Accuracy, report.Precision, report.Recall, report.F1)
	return rf, report, nil
}
