package storage

import (
	"context"
	"time"
)

// CurveRecord is the final running-average reward curve of one algorithm in
// one experiment of one run.
type CurveRecord struct {
	RunID      string    `json:"run_id"`
	Experiment string    `json:"experiment"`
	Algorithm  string    `json:"algorithm"`
	Label      string    `json:"label"`
	Steps      int       `json:"steps"`
	Repeats    int       `json:"repeats"`
	Curve      []float64 `json:"curve"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store persists reward curves so finished runs can be summarized later.
type Store interface {
	Init(ctx context.Context) error
	SaveCurve(ctx context.Context, record CurveRecord) error
	// Curves returns a run's records in insertion order.
	Curves(ctx context.Context, runID string) ([]CurveRecord, error)
	Close() error
}
