package env

import (
	"fmt"
	"math/rand/v2"

	"github.com/signalnine/htmbench/internal/config"
)

// Sanity draws a random state in [0, size) every step. The rewarded action is
// the state's slice of the action range: state*actions/size. A learner that
// reads the state can reach an average reward of 1.
type Sanity struct {
	rng     *rand.Rand
	size    int
	actions int
	state   int
	correct int
	steps   int
}

type SanityInfo struct {
	Correct int `json:"correct"`
	Steps   int `json:"steps"`
}

func NewSanity(cfg config.EnvConfig, rng *rand.Rand) (Environment, error) {
	if cfg.Size < 1 {
		return nil, fmt.Errorf("%w: sanity size must be positive, got %d", config.ErrConfig, cfg.Size)
	}
	if cfg.Actions < 1 {
		return nil, fmt.Errorf("%w: sanity needs at least one action, got %d", config.ErrConfig, cfg.Actions)
	}
	s := &Sanity{rng: rng, size: cfg.Size, actions: cfg.Actions}
	s.state = rng.IntN(s.size)
	return s, nil
}

func (s *Sanity) ActionCount() int { return s.actions }

func (s *Sanity) State() State { return State{s.state} }

// Target is the rewarded action for the current state.
func (s *Sanity) Target() int {
	return s.state * s.actions / s.size
}

func (s *Sanity) Do(action int) (State, float64, error) {
	if err := checkAction(action, s.actions); err != nil {
		return nil, 0, err
	}
	var reward float64
	if action == s.Target() {
		reward = 1
		s.correct++
	}
	s.steps++
	s.state = s.rng.IntN(s.size)
	return s.State(), reward, nil
}

func (s *Sanity) DebugInfo() any {
	return SanityInfo{Correct: s.correct, Steps: s.steps}
}
