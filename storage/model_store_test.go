package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-reservations/ml"
	"hotel-reservations/models"
)

func TestModelRoundTrip(t *testing.T) {
	X := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {0.1, 0.2}, {0.9, 0.8}}
	y := []int{0, 0, 0, 1, 0, 1}
	rf := ml.NewRandomForest([]string{"lead_time", "avg_price_per_room"}, ml.WithNEstimators(5))
	require.NoError(t, rf.Fit(X, y))

	path := filepath.Join(t.TempDir(), "models", "model.gob")
	require.NoError(t, SaveModel(rf, path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, rf.Features, loaded.Features)
	assert.Equal(t, rf.Classes, loaded.Classes)

	want, err := rf.PredictProba(X)
	require.NoError(t, err)
	got, err := loaded.PredictProba(X)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveModelRejectsUntrained(t *testing.T) {
	err := SaveModel(ml.NewRandomForest(nil), filepath.Join(t.TempDir(), "m.gob"))
	assert.Error(t, err)
}

func TestLoadModelMissing(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing.gob"))
	var ioErr *models.IOError
	assert.True(t, errors.As(err, &ioErr))
}
