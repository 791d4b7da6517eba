package algo

import (
	"fmt"
	"math/rand/v2"

	"github.com/signalnine/htmbench/internal/env"
)

// Random picks uniformly among the environment's actions every step.
type Random struct{}

func (r *Random) Name() string  { return "random" }
func (r *Random) Label() string { return "random" }

func (r *Random) Run(e env.Environment, steps int, rng *rand.Rand) (Trial[any], error) {
	k := e.ActionCount()
	trial := newTrial(steps)
	for step := 0; step < steps; step++ {
		action := rng.IntN(k)
		_, reward, err := e.Do(action)
		if err != nil {
			return trial, fmt.Errorf("random step %d: %w", step, err)
		}
		trial.record(action, reward)
	}
	trial.Debug = e.DebugInfo()
	return trial, nil
}
