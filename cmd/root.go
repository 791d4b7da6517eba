package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "htmbench",
		Short:        "Benchmark harness for online action-selection algorithms",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(envFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "htmbench.yaml", "config file path")
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with HTMBENCH_* overrides (default: .env if present)")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newValidateCmd())
	return root
}

// loadEnvFile loads an explicit dotenv file, failing if it cannot be read.
// Without one, a .env in the working directory is loaded when present.
// Variables already set in the process environment win.
func loadEnvFile(path string) error {
	if path == "" {
		_ = godotenv.Load(".env")
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}
