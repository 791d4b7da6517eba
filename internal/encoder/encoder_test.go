package encoder_test

import (
	"errors"
	"testing"

	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/encoder"
	"github.com/signalnine/htmbench/internal/env"
)

func ones(v []float64) []int {
	var idx []int
	for i, x := range v {
		if x != 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

func TestScalarEncode(t *testing.T) {
	s, err := encoder.NewScalar(100, 0.1, 10)
	if err != nil {
		t.Fatalf("NewScalar: %v", err)
	}
	tests := []struct {
		value     int
		wantFirst int
	}{
		{0, 0},
		{9, 90},
		{3, 30},
	}
	for _, tt := range tests {
		out, err := s.Encode(env.State{tt.value})
		if err != nil {
			t.Fatalf("Encode(%d): %v", tt.value, err)
		}
		idx := ones(out)
		if len(idx) != 10 {
			t.Errorf("Encode(%d): %d active bits, want 10", tt.value, len(idx))
			continue
		}
		if idx[0] != tt.wantFirst || idx[9] != tt.wantFirst+9 {
			t.Errorf("Encode(%d): block %d..%d, want %d..%d", tt.value, idx[0], idx[9], tt.wantFirst, tt.wantFirst+9)
		}
	}
	if _, err := s.Encode(env.State{10}); !errors.Is(err, encoder.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestGridEncode(t *testing.T) {
	g, err := encoder.NewGrid(100, 0.1, 5)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	out, err := g.Encode(env.State{0, 4})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	idx := ones(out)
	if len(idx) != 10 {
		t.Fatalf("expected 10 active bits, got %d", len(idx))
	}
	if idx[0] != 0 || idx[len(idx)-1] != 99 {
		t.Errorf("expected x block at start and y block at end, got %v", idx)
	}
	if _, err := g.Encode(env.State{1}); !errors.Is(err, encoder.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for short state, got %v", err)
	}
}

func TestForEnv(t *testing.T) {
	tests := []struct {
		name  string
		state env.State
	}{
		{"Sanity", env.State{3}},
		{"Maze", env.State{1, 2}},
		{"Bandit", env.State{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := encoder.ForEnv(config.EnvConfig{Name: tt.name, Size: 8}, 64, 0.1)
			if err != nil {
				t.Fatalf("ForEnv: %v", err)
			}
			out, err := enc.Encode(tt.state)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if len(out) != enc.Size() {
				t.Errorf("len = %d, Size() = %d", len(out), enc.Size())
			}
		})
	}
	if _, err := encoder.ForEnv(config.EnvConfig{Name: "Nope"}, 64, 0.1); !errors.Is(err, config.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}
