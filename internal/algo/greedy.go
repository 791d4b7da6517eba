package algo

import (
	"fmt"
	"math/rand/v2"

	"github.com/signalnine/htmbench/internal/env"
	"gonum.org/v1/gonum/floats"
)

// EpsilonGreedy explores uniformly with probability Eps and otherwise takes
// the action with the best sample-average reward so far. It ignores
// environment state.
type EpsilonGreedy struct {
	Eps float64
}

func (g *EpsilonGreedy) Name() string  { return "eps" }
func (g *EpsilonGreedy) Label() string { return "eps-greedy" }

func (g *EpsilonGreedy) Run(e env.Environment, steps int, rng *rand.Rand) (Trial[any], error) {
	k := e.ActionCount()
	avgs := make([]float64, k)
	counts := make([]float64, k)
	trial := newTrial(steps)
	for step := 0; step < steps; step++ {
		var action int
		if rng.Float64() < g.Eps {
			action = rng.IntN(k)
		} else {
			action = floats.MaxIdx(avgs)
		}
		_, reward, err := e.Do(action)
		if err != nil {
			return trial, fmt.Errorf("eps-greedy step %d: %w", step, err)
		}
		avgs[action] = (counts[action]*avgs[action] + reward) / (counts[action] + 1)
		counts[action]++
		trial.record(action, reward)
	}
	trial.Debug = e.DebugInfo()
	return trial, nil
}
