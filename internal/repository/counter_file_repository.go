package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type counterRecord struct {
	Count *int64 `json:"count"`
}

type fileCounterRepository struct {
	path string
}

// NewFileCounterRepository stores the counter as {"count": N} in a JSON file.
func NewFileCounterRepository(path string) CounterRepository {
	return &fileCounterRepository{path: path}
}

func (r *fileCounterRepository) Load(_ context.Context) (int64, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrCounterNotFound
		}
		return 0, fmt.Errorf("read %s: %w", r.path, err)
	}

	var rec counterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCounterCorrupt, err)
	}
	if rec.Count == nil {
		return 0, fmt.Errorf("%w: count missing", ErrCounterCorrupt)
	}
	if *rec.Count < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrCounterCorrupt, *rec.Count)
	}
	return *rec.Count, nil
}

// Save replaces the file wholesale through a rename so readers never see a partial write.
func (r *fileCounterRepository) Save(_ context.Context, count int64) error {
	data, err := json.Marshal(counterRecord{Count: &count})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}
