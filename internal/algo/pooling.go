package algo

import (
	"fmt"
	"math/rand/v2"

	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/decoder"
	"github.com/signalnine/htmbench/internal/encoder"
	"github.com/signalnine/htmbench/internal/env"
	"github.com/signalnine/htmbench/internal/pooler"
)

// Pooling encodes the state, pools it into active columns, decodes the
// columns into an action and reinforces the pooler with the reward.
type Pooling struct {
	Config config.PoolingConfig
	Env    config.EnvConfig

	// NewPooler overrides pooler construction; nil builds a SpatialPooler.
	NewPooler func(inputSize, actions int, opts pooler.Options, rng *rand.Rand) (pooler.Pooler, error)
}

func (p *Pooling) Name() string  { return "htmrl" }
func (p *Pooling) Label() string { return "HTM" }

func (p *Pooling) Run(e env.Environment, steps int, rng *rand.Rand) (Trial[any], error) {
	k := e.ActionCount()
	enc, err := encoder.ForEnv(p.Env, p.Config.InputSize, p.Config.InputSparsity)
	if err != nil {
		return Trial[any]{}, err
	}
	sp, err := p.pooler(enc.Size(), k, rng)
	if err != nil {
		return Trial[any]{}, err
	}
	dec := &decoder.Decoder{Max: float64(p.Config.Columns), SampleEvery: p.Config.TraceEvery}

	trial := newTrial(steps)
	state := e.State()
	for step := 0; step < steps; step++ {
		input, err := enc.Encode(state)
		if err != nil {
			return trial, fmt.Errorf("htmrl step %d: encoding state: %w", step, err)
		}
		encoding, err := sp.Step(input)
		if err != nil {
			return trial, fmt.Errorf("htmrl step %d: pooling: %w", step, err)
		}
		action, err := dec.Decode(encoding, k, step)
		if err != nil {
			return trial, fmt.Errorf("htmrl step %d: %w", step, err)
		}
		next, reward, err := e.Do(action)
		if err != nil {
			return trial, fmt.Errorf("htmrl step %d: %w", step, err)
		}
		if err := sp.Reinforce(action, reward); err != nil {
			return trial, fmt.Errorf("htmrl step %d: reinforcing: %w", step, err)
		}
		state = next
		trial.record(action, reward)
	}
	trial.Debug = e.DebugInfo()
	return trial, nil
}

func (p *Pooling) pooler(inputSize, actions int, rng *rand.Rand) (pooler.Pooler, error) {
	opts := pooler.Options{
		Columns:               p.Config.Columns,
		ActiveColumns:         p.Config.ActiveColumns,
		BoostStrength:         p.Config.BoostStrength,
		OnlyReinforceSelected: p.Config.OnlyReinforceSelected,
		RewardScaledReinf:     p.Config.RewardScaledReinf,
		NormalizeRewards:      p.Config.NormalizedRewards,
		BoostScaledReinf:      p.Config.BoostScaledReinf,
	}
	if p.NewPooler != nil {
		return p.NewPooler(inputSize, actions, opts, rng)
	}
	return pooler.New(inputSize, actions, opts, rng)
}
