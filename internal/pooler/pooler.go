// Package pooler is a small spatial pooler with a reinforcement hook. Its
// output encoding is the sorted list of active column indices, so values lie
// in [0, Columns) and the decoder can bucket them into actions.
package pooler

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/signalnine/htmbench/internal/decoder"
)

var (
	ErrInputSize  = errors.New("input size mismatch")
	ErrNotStepped = errors.New("reinforce before step")
)

const (
	connectedPerm = 0.5
	permInc       = 0.05
	permDec       = 0.05
	dutyPeriod    = 100.0
)

type Pooler interface {
	Step(input []float64) ([]float64, error)
	Reinforce(action int, reward float64) error
}

type Options struct {
	Columns               int
	ActiveColumns         int
	BoostStrength         float64
	OnlyReinforceSelected bool
	RewardScaledReinf     bool
	NormalizeRewards      bool
	BoostScaledReinf      bool
}

type SpatialPooler struct {
	inputSize int
	actions   int
	opts      Options
	rng       *rand.Rand

	perms [][]float64
	duty  []float64
	boost []float64

	lastInput  []float64
	lastActive []int

	rewardN    int
	rewardMean float64
	rewardM2   float64
}

func New(inputSize, actions int, opts Options, rng *rand.Rand) (*SpatialPooler, error) {
	if inputSize < 1 {
		return nil, fmt.Errorf("pooler: input size must be positive, got %d", inputSize)
	}
	if actions < 1 || actions > opts.Columns {
		return nil, fmt.Errorf("pooler: %d actions do not fit in %d columns", actions, opts.Columns)
	}
	if opts.ActiveColumns < 1 || opts.ActiveColumns > opts.Columns {
		return nil, fmt.Errorf("pooler: active columns %d not in [1, %d]", opts.ActiveColumns, opts.Columns)
	}
	sp := &SpatialPooler{
		inputSize: inputSize,
		actions:   actions,
		opts:      opts,
		rng:       rng,
		perms:     make([][]float64, opts.Columns),
		duty:      make([]float64, opts.Columns),
		boost:     make([]float64, opts.Columns),
	}
	for c := range sp.perms {
		row := make([]float64, inputSize)
		for i := range row {
			row[i] = connectedPerm + (rng.Float64()-0.5)*0.2
		}
		sp.perms[c] = row
		sp.boost[c] = 1
	}
	return sp, nil
}

// Step activates the ActiveColumns columns with the highest boosted overlap
// and returns their indices in ascending order.
func (sp *SpatialPooler) Step(input []float64) ([]float64, error) {
	if len(input) != sp.inputSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInputSize, len(input), sp.inputSize)
	}
	var on []int
	for i, v := range input {
		if v != 0 {
			on = append(on, i)
		}
	}

	scores := make([]float64, sp.opts.Columns)
	for c, row := range sp.perms {
		var overlap float64
		for _, i := range on {
			if row[i] >= connectedPerm {
				overlap += input[i]
			}
		}
		// Small noise breaks ties between equally matching columns.
		scores[c] = overlap*sp.boost[c] + sp.rng.Float64()*1e-6
	}

	order := make([]int, len(scores))
	for c := range order {
		order[c] = c
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	active := append([]int(nil), order[:sp.opts.ActiveColumns]...)
	sort.Ints(active)

	sp.updateBoost(active)
	sp.lastInput = append(sp.lastInput[:0], input...)
	sp.lastActive = active

	out := make([]float64, len(active))
	for i, c := range active {
		out[i] = float64(c)
	}
	return out, nil
}

func (sp *SpatialPooler) updateBoost(active []int) {
	target := float64(sp.opts.ActiveColumns) / float64(sp.opts.Columns)
	isActive := make([]bool, sp.opts.Columns)
	for _, c := range active {
		isActive[c] = true
	}
	for c := range sp.duty {
		var a float64
		if isActive[c] {
			a = 1
		}
		sp.duty[c] += (a - sp.duty[c]) / dutyPeriod
		sp.boost[c] = math.Exp(-sp.opts.BoostStrength * (sp.duty[c] - target) / target)
	}
}

// Reinforce nudges the permanences of the last active columns toward the
// last input on positive reward and away from it otherwise.
func (sp *SpatialPooler) Reinforce(action int, reward float64) error {
	if sp.lastActive == nil {
		return ErrNotStepped
	}
	if action < 0 || action >= sp.actions {
		return fmt.Errorf("pooler: action %d not in [0, %d)", action, sp.actions)
	}
	r := reward
	if sp.opts.NormalizeRewards {
		r = sp.normalize(reward)
	}

	width := float64(sp.opts.Columns) / float64(sp.actions)
	for _, c := range sp.lastActive {
		if sp.opts.OnlyReinforceSelected && decoder.Bucket(float64(c), width, sp.actions) != action {
			continue
		}
		var delta float64
		switch {
		case sp.opts.RewardScaledReinf:
			delta = permInc * r
		case r > 0:
			delta = permInc
		default:
			delta = -permDec
		}
		if sp.opts.BoostScaledReinf {
			delta *= sp.boost[c]
		}
		if delta == 0 {
			continue
		}
		row := sp.perms[c]
		for i, v := range sp.lastInput {
			if v != 0 {
				row[i] = clamp01(row[i] + delta)
			} else {
				row[i] = clamp01(row[i] - delta/2)
			}
		}
	}
	return nil
}

// normalize standardizes reward against the rewards seen so far.
func (sp *SpatialPooler) normalize(reward float64) float64 {
	sp.rewardN++
	d := reward - sp.rewardMean
	sp.rewardMean += d / float64(sp.rewardN)
	sp.rewardM2 += d * (reward - sp.rewardMean)
	if sp.rewardN < 2 {
		return reward
	}
	std := math.Sqrt(sp.rewardM2 / float64(sp.rewardN-1))
	if std == 0 {
		return reward - sp.rewardMean
	}
	return (reward - sp.rewardMean) / std
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
