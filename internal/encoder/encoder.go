// Package encoder turns environment state into the binary input vectors fed
// to the pooler.
package encoder

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/env"
)

var ErrOutOfRange = errors.New("value out of encoder range")

type Encoder interface {
	Encode(state env.State) ([]float64, error)
	Size() int
}

// Scalar encodes an integer in [0, Max) as a contiguous block of Active ones
// in a vector of Bits entries. Neighbouring values share most of their bits.
type Scalar struct {
	Bits   int
	Active int
	Max    int
}

func NewScalar(bits int, sparsity float64, maxValue int) (*Scalar, error) {
	active := int(math.Round(float64(bits) * sparsity))
	if active < 1 {
		active = 1
	}
	if bits < 1 || active > bits {
		return nil, fmt.Errorf("scalar encoder: %d active bits do not fit in %d", active, bits)
	}
	if maxValue < 1 {
		return nil, fmt.Errorf("scalar encoder: max value must be positive, got %d", maxValue)
	}
	return &Scalar{Bits: bits, Active: active, Max: maxValue}, nil
}

func (s *Scalar) Size() int { return s.Bits }

func (s *Scalar) Encode(state env.State) ([]float64, error) {
	if len(state) < 1 {
		return nil, fmt.Errorf("%w: empty state", ErrOutOfRange)
	}
	out := make([]float64, s.Bits)
	if err := s.encodeInto(out, state[0]); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Scalar) encodeInto(out []float64, v int) error {
	if v < 0 || v >= s.Max {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, v, s.Max)
	}
	start := 0
	if s.Max > 1 {
		start = v * (s.Bits - s.Active) / (s.Max - 1)
	}
	for i := start; i < start+s.Active; i++ {
		out[i] = 1
	}
	return nil
}

// Grid encodes an (x, y) pair as two scalar halves.
type Grid struct {
	X, Y *Scalar
}

func NewGrid(bits int, sparsity float64, size int) (*Grid, error) {
	x, err := NewScalar(bits/2, sparsity, size)
	if err != nil {
		return nil, err
	}
	y, err := NewScalar(bits-bits/2, sparsity, size)
	if err != nil {
		return nil, err
	}
	return &Grid{X: x, Y: y}, nil
}

func (g *Grid) Size() int { return g.X.Bits + g.Y.Bits }

func (g *Grid) Encode(state env.State) ([]float64, error) {
	if len(state) < 2 {
		return nil, fmt.Errorf("%w: grid state needs two coordinates, got %v", ErrOutOfRange, state)
	}
	out := make([]float64, g.Size())
	if err := g.X.encodeInto(out[:g.X.Bits], state[0]); err != nil {
		return nil, err
	}
	if err := g.Y.encodeInto(out[g.X.Bits:], state[1]); err != nil {
		return nil, err
	}
	return out, nil
}

// Constant returns the same pattern for every state. It feeds the pooler
// for stateless environments such as the bandit.
type Constant struct {
	pattern []float64
}

func NewConstant(bits int, sparsity float64) (*Constant, error) {
	s, err := NewScalar(bits, sparsity, 1)
	if err != nil {
		return nil, err
	}
	pattern := make([]float64, bits)
	if err := s.encodeInto(pattern, 0); err != nil {
		return nil, err
	}
	return &Constant{pattern: pattern}, nil
}

func (c *Constant) Size() int { return len(c.pattern) }

func (c *Constant) Encode(env.State) ([]float64, error) {
	return append([]float64(nil), c.pattern...), nil
}

// ForEnv picks the encoder matching the environment's state shape.
func ForEnv(cfg config.EnvConfig, bits int, sparsity float64) (Encoder, error) {
	switch cfg.Name {
	case "Sanity":
		return NewScalar(bits, sparsity, cfg.Size)
	case "Maze":
		return NewGrid(bits, sparsity, cfg.Size)
	case "Bandit":
		return NewConstant(bits, sparsity)
	default:
		return nil, fmt.Errorf("%w: no encoder for env type %q", config.ErrConfig, cfg.Name)
	}
}
