package runner

import (
	"fmt"
	"math/rand/v2"

	"github.com/signalnine/htmbench/internal/algo"
	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/env"
)

// Sink receives each trial's raw output. Aggregate calls WriteRewards,
// WriteActions and WriteDebug once each per trial, in that order.
type Sink[D any] interface {
	WriteRewards(trial int, rewards []float64) error
	WriteActions(trial int, actions []int) error
	WriteDebug(trial int, debug D) error
}

type AggregateOpts[D any] struct {
	Factory env.Factory
	Env     config.EnvConfig
	Steps   int
	Repeats int
	Seed    uint64
	Sink    Sink[D]
}

// TrialRNG is the random stream for trial i. Each trial gets its own stream
// so a trial's outcome does not depend on the trials before it.
func TrialRNG(seed uint64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(i)))
}

// Aggregate runs adapter Repeats times, each against a freshly built
// environment, and returns the running mean of the trials' smoothed reward
// curves. The first failing trial aborts the whole set.
func Aggregate[D any](adapter algo.Adapter[D], opts *AggregateOpts[D]) ([]float64, error) {
	if opts.Steps < 0 || opts.Repeats < 0 {
		return nil, fmt.Errorf("%w: steps and repeats must not be negative", config.ErrConfig)
	}
	avg := make([]float64, opts.Steps)
	for i := 0; i < opts.Repeats; i++ {
		rng := TrialRNG(opts.Seed, i)
		e, err := opts.Factory(opts.Env, rng)
		if err != nil {
			return nil, fmt.Errorf("creating environment for trial %d: %w", i, err)
		}
		trial, err := adapter.Run(e, opts.Steps, rng)
		if err != nil {
			return nil, fmt.Errorf("%s trial %d: %w", adapter.Name(), i, err)
		}
		if len(trial.Rewards) != opts.Steps {
			return nil, fmt.Errorf("%s trial %d: got %d rewards, want %d", adapter.Name(), i, len(trial.Rewards), opts.Steps)
		}
		if opts.Sink != nil {
			if err := writeTrial(opts.Sink, i, trial); err != nil {
				return nil, fmt.Errorf("writing %s trial %d: %w", adapter.Name(), i, err)
			}
		}
		avg = Fold(avg, Smooth(trial.Rewards), i)
	}
	return avg, nil
}

func writeTrial[D any](sink Sink[D], i int, trial algo.Trial[D]) error {
	if err := sink.WriteRewards(i, trial.Rewards); err != nil {
		return err
	}
	if err := sink.WriteActions(i, trial.Actions); err != nil {
		return err
	}
	return sink.WriteDebug(i, trial.Debug)
}
