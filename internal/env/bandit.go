package env

import (
	"fmt"
	"math/rand/v2"

	"github.com/signalnine/htmbench/internal/config"
	"gonum.org/v1/gonum/floats"
)

// Bandit is a stateless k-armed bandit. Arm means are drawn from N(0, 1)
// when the bandit is built; each pull pays N(mean, 1).
type Bandit struct {
	rng   *rand.Rand
	means []float64
	pulls []int
	best  int
}

type BanditInfo struct {
	Means []float64 `json:"means"`
	Best  int       `json:"best"`
	Pulls []int     `json:"pulls"`
	// BestPulls counts pulls of the best arm.
	BestPulls int `json:"best_pulls"`
}

func NewBandit(cfg config.EnvConfig, rng *rand.Rand) (Environment, error) {
	if cfg.Arms < 1 {
		return nil, fmt.Errorf("%w: bandit needs at least one arm, got %d", config.ErrConfig, cfg.Arms)
	}
	means := make([]float64, cfg.Arms)
	for i := range means {
		means[i] = rng.NormFloat64()
	}
	return &Bandit{rng: rng, means: means, pulls: make([]int, cfg.Arms)}, nil
}

func (b *Bandit) ActionCount() int { return len(b.means) }

func (b *Bandit) State() State { return State{} }

func (b *Bandit) Do(action int) (State, float64, error) {
	if err := checkAction(action, len(b.means)); err != nil {
		return nil, 0, err
	}
	b.pulls[action]++
	if b.IsBest(action) {
		b.best++
	}
	return State{}, b.means[action] + b.rng.NormFloat64(), nil
}

// IsBest reports whether action is the arm with the highest mean.
func (b *Bandit) IsBest(action int) bool {
	return action == floats.MaxIdx(b.means)
}

func (b *Bandit) DebugInfo() any {
	return BanditInfo{
		Means:     append([]float64(nil), b.means...),
		Best:      floats.MaxIdx(b.means),
		Pulls:     append([]int(nil), b.pulls...),
		BestPulls: b.best,
	}
}
