package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/report"
)

var flagFormat string

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-dir]",
		Short: "Summarize the curves of a finished run",
		RunE: func(cmd *cobra.Command, args []string) error {
			var runDir string
			if len(args) > 0 {
				runDir = args[0]
			} else {
				cfg, err := config.Load(cfgFile)
				if err != nil {
					return err
				}
				runDir = filepath.Join(cfg.Results.Dir, "latest")
			}
			resolved, err := filepath.EvalSymlinks(runDir)
			if err != nil {
				return fmt.Errorf("resolving run dir: %w", err)
			}
			return report.Generate(cmd.Context(), resolved, flagFormat, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "table", "output format (table, markdown, json)")
	return cmd
}
