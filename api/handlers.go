package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"

	"hotel-reservations/models"
	"hotel-reservations/services"
	"hotel-reservations/storage"
	"hotel-reservations/utils"
)

const maxUploadBytes = 32 << 20

type Handler struct {
	predictor *services.Predictor
	logger    *utils.Logger
	metrics   *Metrics
}

// ErrorResponse is the body of every failed prediction.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FilePrediction is the body of a successful file prediction.
type FilePrediction struct {
	Prediction []int `json:"prediction"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.predictor == nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, HealthResponse{Status: "no model loaded", Timestamp: time.Now()})
		return
	}
	render.JSON(w, r, HealthResponse{Status: "ready", Timestamp: time.Now()})
}

// PredictFromRecord labels a JSON array of feature records. Input that does
// not match the feature schema is rejected with 400.
func (h *Handler) PredictFromRecord(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(h.metrics.Duration.WithLabelValues(endpointRecord))
	defer timer.ObserveDuration()

	var records []map[string]any
	if err := render.DecodeJSON(r.Body, &records); err != nil {
		h.fail(w, r, endpointRecord, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}

	labels, err := h.predictor.PredictRecords(records)
	if err != nil {
		status := http.StatusInternalServerError
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusBadRequest
		}
		h.fail(w, r, endpointRecord, status, err)
		return
	}

	h.metrics.Predictions.WithLabelValues(endpointRecord).Add(float64(len(labels)))
	render.JSON(w, r, labels)
}

// PredictFromFile labels every row of an uploaded CSV file. Failures past
// the upload itself are reported in the response body with status 200.
func (h *Handler) PredictFromFile(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(h.metrics.Duration.WithLabelValues(endpointFile))
	defer timer.ObserveDuration()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, endpointFile, http.StatusBadRequest, fmt.Errorf("missing CSV upload in field \"file\": %w", err))
		return
	}
	defer file.Close()

	t, err := storage.ReadTable(file)
	if err != nil {
		h.fail(w, r, endpointFile, http.StatusOK, err)
		return
	}
	labels, err := h.predictor.PredictTable(t)
	if err != nil {
		h.fail(w, r, endpointFile, http.StatusOK, err)
		return
	}

	h.metrics.Predictions.WithLabelValues(endpointFile).Add(float64(len(labels)))
	render.JSON(w, r, FilePrediction{Prediction: labels})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, endpoint string, status int, err error) {
	h.metrics.Errors.WithLabelValues(endpoint).Inc()
	h.logger.Warn("[api] %s request %s: %v", endpoint, middleware.GetReqID(r.Context()), err)
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: err.Error()})
}
