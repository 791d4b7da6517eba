// Package algo holds the action-selection strategies the harness compares.
// Every adapter runs one trial against an environment it is handed and keeps
// all of its learning state local to that call.
package algo

import (
	"fmt"
	"math/rand/v2"

	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/env"
)

// Trial is the output of one adapter run. Debug is carried through the
// harness untouched.
type Trial[D any] struct {
	Rewards []float64
	Actions []int
	Debug   D
}

type Adapter[D any] interface {
	// Name is the adapter's config key, also used for output file names.
	Name() string
	// Label is the legend entry in plots and reports.
	Label() string
	Run(e env.Environment, steps int, rng *rand.Rand) (Trial[D], error)
}

// New builds the adapter for an algorithm key enabled in exp.
func New(key string, exp *config.Experiment) (Adapter[any], error) {
	switch key {
	case config.AlgoQ:
		if exp.Q != nil {
			return &QLearn{Config: *exp.Q}, nil
		}
	case config.AlgoPooling:
		if exp.Pooling != nil {
			return &Pooling{Config: *exp.Pooling, Env: exp.Env}, nil
		}
	case config.AlgoEps:
		if exp.Eps != nil {
			return &EpsilonGreedy{Eps: exp.Eps.E}, nil
		}
	case config.AlgoRandom:
		if exp.Random != nil {
			return &Random{}, nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", config.ErrConfig, key)
	}
	return nil, fmt.Errorf("%w: algorithm %q is not enabled in experiment %q", config.ErrConfig, key, exp.Name)
}

func newTrial(steps int) Trial[any] {
	return Trial[any]{
		Rewards: make([]float64, 0, steps),
		Actions: make([]int, 0, steps),
	}
}

func (t *Trial[D]) record(action int, reward float64) {
	t.Actions = append(t.Actions, action)
	t.Rewards = append(t.Rewards, reward)
}
