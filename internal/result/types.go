package result

import (
	"encoding/json"
	"time"
)

// Manifest identifies a run directory.
type Manifest struct {
	RunID       string    `json:"run_id"`
	ConfigPath  string    `json:"config_path"`
	StartedAt   time.Time `json:"started_at"`
	Experiments []string  `json:"experiments"`
	Store       string    `json:"store"`
	// Labels maps algorithm keys to their legend labels.
	Labels map[string]string `json:"labels,omitempty"`
}

// RawRecord is one line of an algorithm's raw output file. Each trial writes
// three records: rewards, actions, then debug.
type RawRecord struct {
	Trial int             `json:"trial"`
	Field string          `json:"field"`
	Data  json.RawMessage `json:"data"`
}

const (
	FieldRewards = "rewards"
	FieldActions = "actions"
	FieldDebug   = "debug"
)
