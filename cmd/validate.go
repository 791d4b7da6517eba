package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/htmbench/internal/algo"
	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/env"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config]",
		Short: "Check a config file without running it",
		Long:  "Resolve every experiment of a config file, then check that its environment exists and that each enabled algorithm can be built.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if len(args) > 0 {
				path = args[0]
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if _, err := validateExperiments(cfg.Experiments); err != nil {
				return err
			}
			fmt.Printf("%s: %d experiments OK\n", path, len(cfg.Experiments))
			return nil
		},
	}
}

// validateExperiments checks that every experiment's environment exists and
// that each enabled algorithm can be built. It returns the legend label of
// every algorithm key in use.
func validateExperiments(exps []config.Experiment) (map[string]string, error) {
	labels := make(map[string]string)
	for i := range exps {
		exp := &exps[i]
		if _, err := env.Lookup(exp.Env.Name); err != nil {
			return nil, fmt.Errorf("experiment %s: %w", exp.Name, err)
		}
		for _, key := range exp.Enabled() {
			adapter, err := algo.New(key, exp)
			if err != nil {
				return nil, fmt.Errorf("experiment %s: %w", exp.Name, err)
			}
			labels[adapter.Name()] = adapter.Label()
		}
	}
	return labels, nil
}
