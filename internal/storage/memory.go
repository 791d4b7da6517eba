package storage

import (
	"context"
	"errors"
	"sync"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	curves      map[string][]CurveRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.curves = make(map[string][]CurveRecord)
	return nil
}

func (s *MemoryStore) SaveCurve(_ context.Context, record CurveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	record.Curve = append([]float64(nil), record.Curve...)
	s.curves[record.RunID] = append(s.curves[record.RunID], record)
	return nil
}

func (s *MemoryStore) Curves(_ context.Context, runID string) ([]CurveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errors.New("store is not initialized")
	}
	records := s.curves[runID]
	out := make([]CurveRecord, len(records))
	for i, r := range records {
		r.Curve = append([]float64(nil), r.Curve...)
		out[i] = r
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
