package env

import (
	"fmt"
	"math/rand/v2"

	"github.com/signalnine/htmbench/internal/config"
)

const (
	Up = iota
	Down
	Left
	Right
)

// Maze is an open size x size grid. The agent starts at (0, 0); reaching
// (size-1, size-1) pays 1 and restarts the episode. Moves into the border
// leave the agent in place.
type Maze struct {
	size     int
	x, y     int
	episodes int
	steps    int
}

type MazeInfo struct {
	Episodes int `json:"episodes"`
	Steps    int `json:"steps"`
}

func NewMaze(cfg config.EnvConfig, _ *rand.Rand) (Environment, error) {
	if cfg.Size < 2 {
		return nil, fmt.Errorf("%w: maze size must be at least 2, got %d", config.ErrConfig, cfg.Size)
	}
	return &Maze{size: cfg.Size}, nil
}

func (m *Maze) ActionCount() int { return 4 }

func (m *Maze) State() State { return State{m.x, m.y} }

func (m *Maze) Do(action int) (State, float64, error) {
	if err := checkAction(action, 4); err != nil {
		return nil, 0, err
	}
	switch action {
	case Up:
		m.y = max(m.y-1, 0)
	case Down:
		m.y = min(m.y+1, m.size-1)
	case Left:
		m.x = max(m.x-1, 0)
	case Right:
		m.x = min(m.x+1, m.size-1)
	}
	m.steps++
	if m.x == m.size-1 && m.y == m.size-1 {
		m.episodes++
		m.x, m.y = 0, 0
		return m.State(), 1, nil
	}
	return m.State(), 0, nil
}

func (m *Maze) DebugInfo() any {
	return MazeInfo{Episodes: m.episodes, Steps: m.steps}
}
