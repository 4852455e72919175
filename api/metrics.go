package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	endpointRecord = "predict_from_record"
	endpointFile   = "predict_from_file"
)

// Metrics holds the prediction counters, labelled by endpoint.
type Metrics struct {
	Predictions *prometheus.CounterVec
	Errors      *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Predictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hotel_predictions_total",
			Help: "Rows labelled by the cancellation model.",
		}, []string{"endpoint"}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hotel_prediction_errors_total",
			Help: "Prediction requests that failed validation or prediction.",
		}, []string{"endpoint"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hotel_prediction_duration_seconds",
			Help:    "Time spent serving prediction requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
