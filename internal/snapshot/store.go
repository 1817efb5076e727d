package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// Store is a parquet-backed snapshot store for one row type. It exposes the
// three operations the pipeline needs: existence check, full read, and full
// overwrite. Absence of the file is the only recognized "first run" condition.
type Store[Row any] struct {
	path string
}

func NewStore[Row any](path string) *Store[Row] {
	return &Store[Row]{path: path}
}

func (s *Store[Row]) Path() string {
	return s.path
}

func (s *Store[Row]) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *Store[Row]) Read() ([]Row, error) {
	rows, err := parquet.ReadFile[Row](s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	return rows, nil
}

func (s *Store[Row]) Write(rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	if err := parquet.WriteFile(s.path, rows); err != nil {
		return fmt.Errorf("write snapshot %s: %w", s.path, err)
	}
	return nil
}

// Merge folds an incoming batch into the cumulative snapshot using the given
// strategy. On first run the store is initialized with the batch verbatim.
// It returns the merged row set and the number of rows actually added.
func (s *Store[Row]) Merge(incoming []Row, strategy Strategy[Row]) ([]Row, int, error) {
	if !s.Exists() {
		if err := s.Write(incoming); err != nil {
			return nil, 0, err
		}
		return incoming, len(incoming), nil
	}

	existing, err := s.Read()
	if err != nil {
		return nil, 0, err
	}

	added := strategy.Merge(existing, incoming)
	if len(added) == 0 {
		return existing, 0, nil
	}

	merged := append(existing, added...)
	if err := s.Write(merged); err != nil {
		return nil, 0, err
	}
	return merged, len(added), nil
}
