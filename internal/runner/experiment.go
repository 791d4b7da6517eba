package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/signalnine/htmbench/internal/algo"
	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/env"
	"github.com/signalnine/htmbench/internal/plot"
	"github.com/signalnine/htmbench/internal/result"
	"github.com/signalnine/htmbench/internal/storage"
)

type ExperimentOpts struct {
	RunDir string
	RunID  string
	// Store receives every final curve. Nil skips persistence.
	Store storage.Store
	// Out receives progress lines. Nil discards them.
	Out io.Writer
	// Factory builds the environments. Nil looks up exp.Env.Name.
	Factory env.Factory
}

// AlgorithmResult is the final running-average curve of one algorithm.
type AlgorithmResult struct {
	Name  string
	Label string
	Curve []float64
}

type ExperimentResult struct {
	Name       string
	Dir        string
	PlotPath   string
	Algorithms []AlgorithmResult
}

// RunExperiment runs every enabled algorithm of exp in order, then writes the
// experiment's plot and config dump. The first error aborts the experiment.
func RunExperiment(ctx context.Context, exp *config.Experiment, opts *ExperimentOpts) (*ExperimentResult, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	factory := opts.Factory
	if factory == nil {
		var err error
		if factory, err = env.Lookup(exp.Env.Name); err != nil {
			return nil, fmt.Errorf("experiment %s: %w", exp.Name, err)
		}
	}

	expDir := result.ExperimentDir(opts.RunDir, exp.Name)
	if err := os.MkdirAll(expDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating experiment dir: %w", err)
	}

	res := &ExperimentResult{
		Name:     exp.Name,
		Dir:      expDir,
		PlotPath: result.PlotPath(opts.RunDir, exp.Name),
	}
	for _, key := range exp.Enabled() {
		adapter, err := algo.New(key, exp)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "Running %s × %s (%d repeats, %d steps)...\n",
			exp.Name, adapter.Label(), exp.General.Repeats, exp.General.Steps)

		start := time.Now()
		curve, err := runAlgorithm(adapter, exp, factory, expDir)
		if err != nil {
			return nil, fmt.Errorf("experiment %s: %w", exp.Name, err)
		}
		fmt.Fprintf(out, "  final avg reward %.3f (duration: %s)\n", last(curve), time.Since(start).Round(time.Millisecond))

		if err := result.WriteCurveCSV(filepath.Join(expDir, adapter.Name()+".csv"), curve); err != nil {
			return nil, err
		}
		if opts.Store != nil {
			err := opts.Store.SaveCurve(ctx, storage.CurveRecord{
				RunID:      opts.RunID,
				Experiment: exp.Name,
				Algorithm:  adapter.Name(),
				Label:      adapter.Label(),
				Steps:      exp.General.Steps,
				Repeats:    exp.General.Repeats,
				Curve:      curve,
				CreatedAt:  time.Now().UTC(),
			})
			if err != nil {
				return nil, fmt.Errorf("saving %s/%s curve: %w", exp.Name, adapter.Name(), err)
			}
		}
		res.Algorithms = append(res.Algorithms, AlgorithmResult{Name: adapter.Name(), Label: adapter.Label(), Curve: curve})
	}

	series := make([]plot.Series, len(res.Algorithms))
	for i, a := range res.Algorithms {
		series[i] = plot.Series{Label: a.Label, Curve: a.Curve}
	}
	if err := plot.Render(res.PlotPath, exp.Name, series); err != nil {
		return nil, err
	}
	if err := result.WriteConfigDump(expDir, exp); err != nil {
		return nil, err
	}
	return res, nil
}

// runAlgorithm owns the raw sink for one algorithm; it is closed on every path.
func runAlgorithm(adapter algo.Adapter[any], exp *config.Experiment, factory env.Factory, expDir string) (curve []float64, err error) {
	sink, err := result.CreateRawSink(filepath.Join(expDir, adapter.Name()))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s output: %w", adapter.Name(), cerr)
		}
	}()

	return Aggregate(adapter, &AggregateOpts[any]{
		Factory: factory,
		Env:     exp.Env,
		Steps:   exp.General.Steps,
		Repeats: exp.General.Repeats,
		Seed:    exp.General.Seed,
		Sink:    sink,
	})
}

func last(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}
	return curve[len(curve)-1]
}
