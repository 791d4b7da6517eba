package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveCurve(ctx context.Context, record CurveRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeCurve(record.Curve)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO curves (run_id, experiment, algorithm, label, steps, repeats, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, experiment, algorithm) DO UPDATE SET
			label = excluded.label,
			steps = excluded.steps,
			repeats = excluded.repeats,
			created_at = excluded.created_at,
			payload = excluded.payload
	`, record.RunID, record.Experiment, record.Algorithm, record.Label,
		record.Steps, record.Repeats, record.CreatedAt.UTC().Format(time.RFC3339Nano), payload)
	return err
}

func (s *SQLiteStore) Curves(ctx context.Context, runID string) ([]CurveRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT experiment, algorithm, label, steps, repeats, created_at, payload
		FROM curves WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []CurveRecord
	for rows.Next() {
		record := CurveRecord{RunID: runID}
		var createdAt string
		var payload []byte
		if err := rows.Scan(&record.Experiment, &record.Algorithm, &record.Label,
			&record.Steps, &record.Repeats, &createdAt, &payload); err != nil {
			return nil, err
		}
		if record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("decode created_at for %s/%s: %w", record.Experiment, record.Algorithm, err)
		}
		if record.Curve, err = DecodeCurve(payload); err != nil {
			return nil, fmt.Errorf("%s/%s: %w", record.Experiment, record.Algorithm, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS curves (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			experiment TEXT NOT NULL,
			algorithm TEXT NOT NULL,
			label TEXT NOT NULL,
			steps INTEGER NOT NULL,
			repeats INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			payload BLOB NOT NULL,
			UNIQUE (run_id, experiment, algorithm)
		);
	`)
	return err
}
