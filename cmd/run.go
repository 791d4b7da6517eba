package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/report"
	"github.com/signalnine/htmbench/internal/result"
	"github.com/signalnine/htmbench/internal/runner"
	"github.com/signalnine/htmbench/internal/storage"
)

var (
	flagExperiment string
	flagRepeats    int
	flagSteps      int
	flagSeed       uint64
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured experiments",
		RunE:  runBenchmark,
	}
	cmd.Flags().StringVar(&flagExperiment, "experiment", "", "filter experiments by name (trailing * matches a prefix)")
	cmd.Flags().IntVar(&flagRepeats, "repeats", 0, "override repeat count")
	cmd.Flags().IntVar(&flagSteps, "steps", 0, "override steps per trial")
	cmd.Flags().Uint64Var(&flagSeed, "seed", 0, "override the base seed")
	return cmd
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	experiments := filterExperiments(cfg.Experiments, flagExperiment)
	if len(experiments) == 0 {
		return fmt.Errorf("no experiments match %q", flagExperiment)
	}
	applyOverrides(experiments, flagRepeats, flagSteps, flagSeed, cmd.Flags().Changed("seed"))
	labels, err := validateExperiments(experiments)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	runDir, err := result.CreateRunDir(cfg.Results.Dir, runID)
	if err != nil {
		return err
	}
	fmt.Printf("Run directory: %s\n", runDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	manifest := &result.Manifest{
		RunID:      runID,
		ConfigPath: cfg.Path,
		StartedAt:  time.Now().UTC(),
		Store:      cfg.Results.Store,
		Labels:     labels,
	}
	for _, exp := range experiments {
		manifest.Experiments = append(manifest.Experiments, exp.Name)
	}
	if err := result.WriteManifest(runDir, manifest); err != nil {
		return err
	}

	store, err := storage.NewStore(cfg.Results.Store, result.DBPath(runDir))
	if err != nil {
		return err
	}
	if err := store.Init(ctx); err != nil {
		return fmt.Errorf("opening result store: %w", err)
	}
	defer store.Close()

	for i := range experiments {
		res, err := runner.RunExperiment(ctx, &experiments[i], &runner.ExperimentOpts{
			RunDir: runDir,
			RunID:  manifest.RunID,
			Store:  store,
			Out:    os.Stdout,
		})
		if err != nil {
			return err
		}
		fmt.Printf("  plot: %s\n", res.PlotPath)
	}

	fmt.Println("\n--- Results ---")
	return report.FromStore(ctx, store, manifest.RunID, "table", os.Stdout)
}

func filterExperiments(exps []config.Experiment, pattern string) []config.Experiment {
	if pattern == "" {
		return exps
	}
	var filtered []config.Experiment
	for _, e := range exps {
		if matchName(e.Name, pattern) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func matchName(name, pattern string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(name, prefix)
	}
	return name == pattern
}

// applyOverrides replaces the layered values with command-line ones. Zero
// repeats or steps mean "keep the config value".
func applyOverrides(exps []config.Experiment, repeats, steps int, seed uint64, seedSet bool) {
	for i := range exps {
		if repeats > 0 {
			exps[i].General.Repeats = repeats
		}
		if steps > 0 {
			exps[i].General.Steps = steps
		}
		if seedSet {
			exps[i].General.Seed = seed
		}
	}
}
