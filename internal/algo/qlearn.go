package algo

import (
	"fmt"
	"math/rand/v2"

	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/env"
	"github.com/signalnine/htmbench/internal/qlearn"
)

// QLearn hands state, action choice and updates to a fresh tabular learner.
type QLearn struct {
	Config config.QConfig
}

func (q *QLearn) Name() string  { return "q" }
func (q *QLearn) Label() string { return "Q-learn" }

func (q *QLearn) Run(e env.Environment, steps int, rng *rand.Rand) (Trial[any], error) {
	learner, err := qlearn.New(e.ActionCount(), q.Config.LearningRate, q.Config.Discount, q.Config.Epsilon, rng)
	if err != nil {
		return Trial[any]{}, err
	}
	trial := newTrial(steps)
	state := e.State()
	for step := 0; step < steps; step++ {
		action := learner.Action(state)
		next, reward, err := e.Do(action)
		if err != nil {
			return trial, fmt.Errorf("q-learn step %d: %w", step, err)
		}
		if err := learner.Learn(state, next, action, reward); err != nil {
			return trial, fmt.Errorf("q-learn step %d: %w", step, err)
		}
		state = next
		trial.record(action, reward)
	}
	trial.Debug = e.DebugInfo()
	return trial, nil
}
