package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrConfig marks every configuration problem: unknown names, missing keys,
// out of range values.
var ErrConfig = errors.New("configuration error")

// Algorithm keys as they appear under `algorithms:`.
const (
	AlgoQ       = "q"
	AlgoPooling = "htmrl"
	AlgoEps     = "eps"
	AlgoRandom  = "random"
)

// AlgorithmOrder is the order algorithms run and are plotted in.
var AlgorithmOrder = []string{AlgoQ, AlgoPooling, AlgoEps, AlgoRandom}

type Config struct {
	Path        string
	Results     Results
	Experiments []Experiment
}

// Experiment is one named experiment with every layer already merged.
// A nil algorithm config means the algorithm is not run.
type Experiment struct {
	Name    string
	General General
	Env     EnvConfig
	Q       *QConfig
	Pooling *PoolingConfig
	Eps     *EpsConfig
	Random  *RandomConfig
}

type General struct {
	Steps   int    `yaml:"steps"`
	Repeats int    `yaml:"repeats"`
	Seed    uint64 `yaml:"seed"`
}

type EnvConfig struct {
	Name    string `yaml:"name"`
	Size    int    `yaml:"size"`
	Arms    int    `yaml:"arms"`
	Actions int    `yaml:"actions"`
}

type PoolingConfig struct {
	InputSize             int     `yaml:"input_size"`
	InputSparsity         float64 `yaml:"input_sparsity"`
	Columns               int     `yaml:"columns"`
	ActiveColumns         int     `yaml:"active_columns"`
	BoostStrength         float64 `yaml:"boost_strength"`
	OnlyReinforceSelected bool    `yaml:"only_reinforce_selected"`
	RewardScaledReinf     bool    `yaml:"reward_scaled_reinf"`
	NormalizedRewards     bool    `yaml:"normalized_rewards"`
	BoostScaledReinf      bool    `yaml:"boost_scaled_reinf"`
	TraceEvery            int     `yaml:"trace_every"`
}

type EpsConfig struct {
	E float64 `yaml:"e"`
}

type QConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Discount     float64 `yaml:"discount"`
	Epsilon      float64 `yaml:"epsilon"`
}

type RandomConfig struct{}

type Results struct {
	Dir   string `yaml:"dir"`
	Store string `yaml:"store"`
}

// file mirrors the YAML document. Override sections stay as raw nodes so
// they can be decoded on top of the layer below them.
type file struct {
	General     yaml.Node                    `yaml:"general"`
	Env         yaml.Node                    `yaml:"env"`
	Algorithms  map[string]yaml.Node         `yaml:"algorithms"`
	Experiments []map[string]*experimentFile `yaml:"experiments"`
	Results     Results                      `yaml:"results"`
}

type experimentFile struct {
	General    yaml.Node            `yaml:"general"`
	Env        yaml.Node            `yaml:"env"`
	Algorithms map[string]yaml.Node `yaml:"algorithms"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse resolves a YAML document into per-experiment configs. Precedence,
// lowest first: built-in defaults, top-level sections, experiment sections.
// Environment overrides are applied last.
func Parse(data []byte) (*Config, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	base := Experiment{General: DefaultGeneral(), Env: DefaultEnv()}
	if err := overlay(&f.General, &base.General); err != nil {
		return nil, fmt.Errorf("%w: general: %v", ErrConfig, err)
	}
	if err := overlay(&f.Env, &base.Env); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrConfig, err)
	}
	if err := applyAlgorithms(&base, f.Algorithms); err != nil {
		return nil, err
	}

	cfg := &Config{Results: f.Results}
	if cfg.Results.Dir == "" {
		cfg.Results.Dir = "output"
	}
	if cfg.Results.Store == "" {
		cfg.Results.Store = "sqlite"
	}

	if len(f.Experiments) == 0 {
		return nil, fmt.Errorf("%w: no experiments defined", ErrConfig)
	}
	seen := make(map[string]bool)
	for i, entry := range f.Experiments {
		if len(entry) != 1 {
			return nil, fmt.Errorf("%w: experiment %d: expected a single name key, got %d", ErrConfig, i, len(entry))
		}
		for name, ef := range entry {
			if name == "" {
				return nil, fmt.Errorf("%w: experiment %d: name is required", ErrConfig, i)
			}
			if seen[name] {
				return nil, fmt.Errorf("%w: experiment %q defined twice", ErrConfig, name)
			}
			seen[name] = true
			exp, err := resolveExperiment(base, name, ef)
			if err != nil {
				return nil, err
			}
			cfg.Experiments = append(cfg.Experiments, exp)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	for i := range cfg.Experiments {
		if err := validate(&cfg.Experiments[i]); err != nil {
			return nil, err
		}
	}
	if cfg.Results.Store != "sqlite" && cfg.Results.Store != "memory" {
		return nil, fmt.Errorf("%w: results.store must be sqlite or memory, got %q", ErrConfig, cfg.Results.Store)
	}
	return cfg, nil
}

func resolveExperiment(base Experiment, name string, ef *experimentFile) (Experiment, error) {
	exp := base.clone()
	exp.Name = name
	if ef == nil {
		return exp, nil
	}
	if err := overlay(&ef.General, &exp.General); err != nil {
		return exp, fmt.Errorf("%w: experiment %q: general: %v", ErrConfig, name, err)
	}
	if err := overlay(&ef.Env, &exp.Env); err != nil {
		return exp, fmt.Errorf("%w: experiment %q: env: %v", ErrConfig, name, err)
	}
	if err := applyAlgorithms(&exp, ef.Algorithms); err != nil {
		return exp, fmt.Errorf("experiment %q: %w", name, err)
	}
	return exp, nil
}

// applyAlgorithms decodes each algorithm section on top of whatever the
// experiment already carries for it, enabling the algorithm if needed.
func applyAlgorithms(exp *Experiment, algos map[string]yaml.Node) error {
	for key, node := range algos {
		var err error
		switch key {
		case AlgoQ:
			if exp.Q == nil {
				d := DefaultQ()
				exp.Q = &d
			}
			err = overlay(&node, exp.Q)
		case AlgoPooling:
			if exp.Pooling == nil {
				d := DefaultPooling()
				exp.Pooling = &d
			}
			err = overlay(&node, exp.Pooling)
		case AlgoEps:
			if exp.Eps == nil {
				d := DefaultEps()
				exp.Eps = &d
			}
			err = overlay(&node, exp.Eps)
		case AlgoRandom:
			exp.Random = &RandomConfig{}
		default:
			return fmt.Errorf("%w: unknown algorithm %q", ErrConfig, key)
		}
		if err != nil {
			return fmt.Errorf("%w: algorithms.%s: %v", ErrConfig, key, err)
		}
	}
	return nil
}

func overlay(n *yaml.Node, out any) error {
	if n == nil || n.Kind == 0 {
		return nil
	}
	return n.Decode(out)
}

func (e Experiment) clone() Experiment {
	c := e
	if e.Q != nil {
		q := *e.Q
		c.Q = &q
	}
	if e.Pooling != nil {
		p := *e.Pooling
		c.Pooling = &p
	}
	if e.Eps != nil {
		eps := *e.Eps
		c.Eps = &eps
	}
	if e.Random != nil {
		c.Random = &RandomConfig{}
	}
	return c
}

// Enabled lists the algorithm keys this experiment runs, in AlgorithmOrder.
func (e *Experiment) Enabled() []string {
	var keys []string
	for _, key := range AlgorithmOrder {
		switch {
		case key == AlgoQ && e.Q != nil,
			key == AlgoPooling && e.Pooling != nil,
			key == AlgoEps && e.Eps != nil,
			key == AlgoRandom && e.Random != nil:
			keys = append(keys, key)
		}
	}
	return keys
}

func applyEnvOverrides(cfg *Config) error {
	if dir := os.Getenv("HTMBENCH_RESULTS_DIR"); dir != "" {
		cfg.Results.Dir = dir
	}
	if store := os.Getenv("HTMBENCH_STORE"); store != "" {
		cfg.Results.Store = store
	}
	if raw := os.Getenv("HTMBENCH_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: HTMBENCH_SEED: %v", ErrConfig, err)
		}
		for i := range cfg.Experiments {
			cfg.Experiments[i].General.Seed = seed
		}
	}
	return nil
}

func validate(exp *Experiment) error {
	if exp.General.Steps < 1 {
		return fmt.Errorf("%w: experiment %q: general.steps must be at least 1", ErrConfig, exp.Name)
	}
	if exp.General.Repeats < 0 {
		return fmt.Errorf("%w: experiment %q: general.repeats must not be negative", ErrConfig, exp.Name)
	}
	if exp.Env.Name == "" {
		return fmt.Errorf("%w: experiment %q: env.name is required", ErrConfig, exp.Name)
	}
	if len(exp.Enabled()) == 0 {
		return fmt.Errorf("%w: experiment %q: no algorithms enabled", ErrConfig, exp.Name)
	}
	if p := exp.Pooling; p != nil {
		if p.InputSize < 1 {
			return fmt.Errorf("%w: experiment %q: htmrl.input_size must be positive", ErrConfig, exp.Name)
		}
		if p.InputSparsity <= 0 || p.InputSparsity > 1 {
			return fmt.Errorf("%w: experiment %q: htmrl.input_sparsity must be in (0, 1]", ErrConfig, exp.Name)
		}
		if p.ActiveColumns < 1 || p.ActiveColumns > p.Columns {
			return fmt.Errorf("%w: experiment %q: htmrl.active_columns must be in [1, columns]", ErrConfig, exp.Name)
		}
	}
	if e := exp.Eps; e != nil && (e.E < 0 || e.E > 1) {
		return fmt.Errorf("%w: experiment %q: eps.e must be in [0, 1]", ErrConfig, exp.Name)
	}
	if q := exp.Q; q != nil {
		if q.LearningRate <= 0 || q.LearningRate > 1 {
			return fmt.Errorf("%w: experiment %q: q.learning_rate must be in (0, 1]", ErrConfig, exp.Name)
		}
		if q.Discount < 0 || q.Discount > 1 {
			return fmt.Errorf("%w: experiment %q: q.discount must be in [0, 1]", ErrConfig, exp.Name)
		}
	}
	return nil
}
