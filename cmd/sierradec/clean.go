package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sierradec/internal/cache"
)

func newCleanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cached programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := cache.Open(a.cfg.Cache.Dir)
			if err != nil {
				return err
			}
			if err := c.DropAll(); err != nil {
				return fmt.Errorf("failed to clear %s: %w", c.Dir(), err)
			}
			if !a.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", c.Dir())
			}
			return nil
		},
	}
	cmd.Flags().String("cache-dir", "", "program cache directory (default $XDG_CACHE_HOME/sierradec)")
	return cmd
}
