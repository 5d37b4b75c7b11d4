package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sierradec/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.Encode(a.cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			out := cmd.OutOrStdout()
			if a.cfg.File != "" {
				fmt.Fprintf(out, "# from %s\n", a.cfg.File)
			}
			_, err = out.Write(data)
			return err
		},
	}
}
