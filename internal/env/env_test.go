package env_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/env"
)

func newRNG() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func TestLookup(t *testing.T) {
	for _, name := range []string{"Bandit", "Maze", "Sanity"} {
		if _, err := env.Lookup(name); err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
		}
	}
	if _, err := env.Lookup("Gridworld"); !errors.Is(err, config.ErrConfig) {
		t.Errorf("expected ErrConfig for unknown env, got %v", err)
	}
}

func TestInvalidAction(t *testing.T) {
	cfg := config.EnvConfig{Size: 4, Arms: 3, Actions: 2}
	for _, name := range env.Names() {
		t.Run(name, func(t *testing.T) {
			f, _ := env.Lookup(name)
			e, err := f(cfg, newRNG())
			if err != nil {
				t.Fatalf("factory: %v", err)
			}
			for _, a := range []int{-1, e.ActionCount()} {
				if _, _, err := e.Do(a); !errors.Is(err, env.ErrInvalidAction) {
					t.Errorf("Do(%d): expected ErrInvalidAction, got %v", a, err)
				}
			}
		})
	}
}

func TestBanditTracksPulls(t *testing.T) {
	e, err := env.NewBandit(config.EnvConfig{Arms: 4}, newRNG())
	if err != nil {
		t.Fatalf("NewBandit: %v", err)
	}
	b := e.(*env.Bandit)
	info := b.DebugInfo().(env.BanditInfo)
	if !b.IsBest(info.Best) {
		t.Errorf("IsBest(%d) = false for reported best arm", info.Best)
	}
	for i := 0; i < 4000; i++ {
		if _, _, err := b.Do(i % 4); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	info = b.DebugInfo().(env.BanditInfo)
	if info.Pulls[0] != 1000 {
		t.Errorf("expected 1000 pulls of arm 0, got %v", info.Pulls)
	}
	if info.BestPulls != 1000 {
		t.Errorf("expected 1000 pulls of the best arm, got %d", info.BestPulls)
	}
}

func TestSanityRewardsTarget(t *testing.T) {
	e, err := env.NewSanity(config.EnvConfig{Size: 8, Actions: 4}, newRNG())
	if err != nil {
		t.Fatalf("NewSanity: %v", err)
	}
	s := e.(*env.Sanity)
	for i := 0; i < 100; i++ {
		state := s.State()
		if want := state[0] * 4 / 8; s.Target() != want {
			t.Fatalf("Target() = %d for state %d, want %d", s.Target(), state[0], want)
		}
		_, r, err := s.Do(s.Target())
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
		if r != 1 {
			t.Fatalf("expected reward 1 for target action, got %v", r)
		}
	}
	info := s.DebugInfo().(env.SanityInfo)
	if info.Correct != 100 || info.Steps != 100 {
		t.Errorf("debug info: got %+v", info)
	}
}

func TestMazeReachesGoal(t *testing.T) {
	e, err := env.NewMaze(config.EnvConfig{Size: 3}, nil)
	if err != nil {
		t.Fatalf("NewMaze: %v", err)
	}
	// Bumping into the wall keeps the agent in place.
	if s, r, _ := e.Do(env.Up); s[0] != 0 || s[1] != 0 || r != 0 {
		t.Errorf("expected to stay at origin, got %v reward %v", s, r)
	}
	path := []int{env.Right, env.Right, env.Down, env.Down}
	var total float64
	for _, a := range path {
		_, r, err := e.Do(a)
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
		total += r
	}
	if total != 1 {
		t.Errorf("expected reward 1 at goal, got %v", total)
	}
	if s := e.State(); s[0] != 0 || s[1] != 0 {
		t.Errorf("expected reset to origin after goal, got %v", s)
	}
	if info := e.DebugInfo().(env.MazeInfo); info.Episodes != 1 || info.Steps != 5 {
		t.Errorf("debug info: got %+v", info)
	}
}

func TestFactoryRejectsBadConfig(t *testing.T) {
	if _, err := env.NewBandit(config.EnvConfig{Arms: 0}, newRNG()); !errors.Is(err, config.ErrConfig) {
		t.Errorf("bandit: expected ErrConfig, got %v", err)
	}
	if _, err := env.NewSanity(config.EnvConfig{Size: 0, Actions: 2}, newRNG()); !errors.Is(err, config.ErrConfig) {
		t.Errorf("sanity: expected ErrConfig, got %v", err)
	}
	if _, err := env.NewMaze(config.EnvConfig{Size: 1}, nil); !errors.Is(err, config.ErrConfig) {
		t.Errorf("maze: expected ErrConfig, got %v", err)
	}
}
