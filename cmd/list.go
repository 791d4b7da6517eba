package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalnine/htmbench/internal/config"
	"github.com/signalnine/htmbench/internal/env"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured experiments and available environments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Println("Experiments:")
			for _, e := range cfg.Experiments {
				fmt.Printf("  - %s (env: %s, steps: %d, repeats: %d) [%s]\n",
					e.Name, e.Env.Name, e.General.Steps, e.General.Repeats, strings.Join(e.Enabled(), ", "))
			}
			fmt.Println("\nEnvironments:")
			for _, name := range env.Names() {
				fmt.Printf("  - %s\n", name)
			}
			return nil
		},
	}
}
