// Package qlearn implements tabular Q-learning over discrete states.
package qlearn

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/signalnine/htmbench/internal/env"
	"gonum.org/v1/gonum/floats"
)

type Learner struct {
	actions      int
	learningRate float64
	discount     float64
	epsilon      float64
	rng          *rand.Rand
	table        map[string][]float64
}

func New(actions int, learningRate, discount, epsilon float64, rng *rand.Rand) (*Learner, error) {
	if actions < 1 {
		return nil, fmt.Errorf("qlearn: need at least one action, got %d", actions)
	}
	return &Learner{
		actions:      actions,
		learningRate: learningRate,
		discount:     discount,
		epsilon:      epsilon,
		rng:          rng,
		table:        make(map[string][]float64),
	}, nil
}

// Action picks a uniformly random action with probability epsilon and the
// lowest-index greedy action otherwise.
func (l *Learner) Action(state env.State) int {
	if l.epsilon > 0 && l.rng.Float64() < l.epsilon {
		return l.rng.IntN(l.actions)
	}
	return floats.MaxIdx(l.values(state))
}

func (l *Learner) Learn(state, next env.State, action int, reward float64) error {
	if action < 0 || action >= l.actions {
		return fmt.Errorf("qlearn: action %d not in [0, %d)", action, l.actions)
	}
	q := l.values(state)
	target := reward + l.discount*floats.Max(l.values(next))
	q[action] += l.learningRate * (target - q[action])
	return nil
}

// Value returns Q(state, action).
func (l *Learner) Value(state env.State, action int) float64 {
	return l.values(state)[action]
}

func (l *Learner) values(state env.State) []float64 {
	k := key(state)
	q, ok := l.table[k]
	if !ok {
		q = make([]float64, l.actions)
		l.table[k] = q
	}
	return q
}

func key(state env.State) string {
	parts := make([]string, len(state))
	for i, v := range state {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
