package config_test

import (
	"errors"
	"testing"

	"github.com/signalnine/htmbench/internal/config"
)

func TestLoadMinimal(t *testing.T) {
	cfg, err := config.Load("../../testdata/minimal.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Experiments) != 1 {
		t.Fatalf("expected 1 experiment, got %d", len(cfg.Experiments))
	}
	exp := cfg.Experiments[0]
	if exp.Name != "baseline" {
		t.Errorf("expected experiment name 'baseline', got %q", exp.Name)
	}
	if exp.General.Steps != 200 || exp.General.Repeats != 2 {
		t.Errorf("expected steps=200 repeats=2, got %+v", exp.General)
	}
	if exp.Env.Name != "Bandit" || exp.Env.Arms != 4 {
		t.Errorf("expected default bandit env, got %+v", exp.Env)
	}
	if got := exp.Enabled(); len(got) != 1 || got[0] != config.AlgoRandom {
		t.Errorf("expected only random enabled, got %v", got)
	}
	if cfg.Results.Dir != "output" || cfg.Results.Store != "sqlite" {
		t.Errorf("expected default results, got %+v", cfg.Results)
	}
}

func TestLoadFullLayering(t *testing.T) {
	cfg, err := config.Load("../../testdata/full.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Experiments) != 3 {
		t.Fatalf("expected 3 experiments, got %d", len(cfg.Experiments))
	}
	base, boost, big := cfg.Experiments[0], cfg.Experiments[1], cfg.Experiments[2]

	if base.Pooling.BoostStrength != 1.0 || boost.Pooling.BoostStrength != 3.0 {
		t.Errorf("boost_strength: base %v, strong_boost %v", base.Pooling.BoostStrength, boost.Pooling.BoostStrength)
	}
	// Keys the experiment does not mention come from the top-level section.
	if !boost.Pooling.OnlyReinforceSelected || boost.Pooling.InputSize != 120 {
		t.Errorf("expected top-level htmrl keys to carry over, got %+v", boost.Pooling)
	}
	// Keys neither layer mentions come from the defaults.
	if boost.Pooling.Columns != 2048 {
		t.Errorf("expected default columns, got %d", boost.Pooling.Columns)
	}
	if boost.Eps.E != 0.0 || base.Eps.E != 0.1 {
		t.Errorf("eps.e: base %v, strong_boost %v", base.Eps.E, boost.Eps.E)
	}
	if boost.General.Repeats != 3 || boost.General.Steps != 1000 || boost.General.Seed != 7 {
		t.Errorf("general override: got %+v", boost.General)
	}
	if big.Env.Size != 32 || big.Env.Name != "Sanity" || big.Env.Actions != 4 {
		t.Errorf("env override: got %+v", big.Env)
	}
	// Overrides must not leak into the top-level layer shared by siblings.
	if base.Env.Size != 8 || base.General.Repeats != 10 {
		t.Errorf("override leaked into base: env %+v general %+v", base.Env, base.General)
	}
	if q := base.Q; q == nil || q.LearningRate != 0.2 || q.Discount != 0.9 {
		t.Errorf("q config: got %+v", q)
	}
	want := []string{config.AlgoQ, config.AlgoPooling, config.AlgoEps, config.AlgoRandom}
	got := base.Enabled()
	if len(got) != len(want) {
		t.Fatalf("Enabled() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Enabled()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if cfg.Results.Store != "memory" || cfg.Results.Dir != "out" {
		t.Errorf("results: got %+v", cfg.Results)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := config.Load("nonexistent.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalid(t *testing.T) {
	_, err := config.Load("../../testdata/invalid.yaml")
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadUnknownAlgorithm(t *testing.T) {
	_, err := config.Load("../../testdata/unknown_algo.yaml")
	if !errors.Is(err, config.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no experiments", "general: {steps: 10}\nenv: {name: Bandit}\nalgorithms: {random: {}}\n"},
		{"missing steps", "env: {name: Bandit}\nalgorithms: {random: {}}\nexperiments:\n  - a:\n"},
		{"missing env name", "general: {steps: 10}\nalgorithms: {random: {}}\nexperiments:\n  - a:\n"},
		{"no algorithms", "general: {steps: 10}\nenv: {name: Bandit}\nexperiments:\n  - a:\n"},
		{"eps out of range", "general: {steps: 10}\nenv: {name: Bandit}\nalgorithms: {eps: {e: 1.5}}\nexperiments:\n  - a:\n"},
		{"duplicate experiment", "general: {steps: 10}\nenv: {name: Bandit}\nalgorithms: {random: {}}\nexperiments:\n  - a:\n  - a:\n"},
		{"bad store", "general: {steps: 10}\nenv: {name: Bandit}\nalgorithms: {random: {}}\nresults: {store: redis}\nexperiments:\n  - a:\n"},
		{"too many active columns", "general: {steps: 10}\nenv: {name: Bandit}\nalgorithms: {htmrl: {columns: 10, active_columns: 20}}\nexperiments:\n  - a:\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			if !errors.Is(err, config.ErrConfig) {
				t.Errorf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestExperimentEnablesAlgorithm(t *testing.T) {
	doc := `
general: {steps: 10}
env: {name: Bandit}
algorithms:
  random:
experiments:
  - plain:
  - with_eps:
      algorithms:
        eps:
          e: 0.3
`
	cfg, err := config.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Experiments[0].Eps != nil {
		t.Error("expected eps disabled in plain experiment")
	}
	eps := cfg.Experiments[1].Eps
	if eps == nil || eps.E != 0.3 {
		t.Errorf("expected eps enabled with e=0.3, got %+v", eps)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTMBENCH_RESULTS_DIR", "/tmp/elsewhere")
	t.Setenv("HTMBENCH_SEED", "99")
	t.Setenv("HTMBENCH_STORE", "memory")
	cfg, err := config.Load("../../testdata/minimal.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Results.Dir != "/tmp/elsewhere" || cfg.Results.Store != "memory" {
		t.Errorf("results: got %+v", cfg.Results)
	}
	if cfg.Experiments[0].General.Seed != 99 {
		t.Errorf("seed: got %d, want 99", cfg.Experiments[0].General.Seed)
	}

	t.Setenv("HTMBENCH_SEED", "not-a-number")
	if _, err := config.Load("../../testdata/minimal.yaml"); !errors.Is(err, config.ErrConfig) {
		t.Errorf("expected ErrConfig for bad seed, got %v", err)
	}
}
