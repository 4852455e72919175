package storage

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"hotel-reservations/ml"
	"hotel-reservations/models"
)

// SaveModel gob-encodes a trained forest to path.
func SaveModel(rf *ml.RandomForest, path string) error {
	if len(rf.Trees) == 0 {
		return fmt.Errorf("model: refusing to save an untrained forest")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &models.IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &models.IOError{Op: "create", Path: path, Err: err}
	}
	if err := gob.NewEncoder(f).Encode(rf); err != nil {
		_ = f.Close()
		return &models.IOError{Op: "encode", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &models.IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}

// LoadModel reads a forest written by SaveModel.
func LoadModel(path string) (*ml.RandomForest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var rf ml.RandomForest
	if err := gob.NewDecoder(f).Decode(&rf); err != nil {
		return nil, &models.IOError{Op: "decode", Path: path, Err: err}
	}
	if len(rf.Trees) == 0 {
		return nil, &models.IOError{Op: "decode", Path: path, Err: fmt.Errorf("model has no trees")}
	}
	return &rf, nil
}
