// Package env defines the environment contract the harness drives and the
// reference environments selectable by name from the config.
package env

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/signalnine/htmbench/internal/config"
)

var ErrInvalidAction = errors.New("invalid action")

// State is the observable state of an environment. Stateless environments
// return an empty State.
type State []int

type Environment interface {
	ActionCount() int
	State() State
	Do(action int) (State, float64, error)
	DebugInfo() any
}

// Factory builds a fresh environment. rng is the trial's random stream.
type Factory func(cfg config.EnvConfig, rng *rand.Rand) (Environment, error)

var registry = map[string]Factory{
	"Bandit": NewBandit,
	"Maze":   NewMaze,
	"Sanity": NewSanity,
}

func Lookup(name string) (Factory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown env type %q (known: %v)", config.ErrConfig, name, Names())
	}
	return f, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkAction(action, k int) error {
	if action < 0 || action >= k {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidAction, action, k)
	}
	return nil
}
