package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-drift/presenter/pkg/config"
)

func newConfigCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Inspect presenter configuration",
	}
	c.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate a configuration file",
		Long: `Load and validate a configuration file.

With no path, the file selected by --config, PRESENTER_CONFIG or the working
directory is checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, source := a.cfg, a.configPath()
			if len(args) == 1 {
				loaded, err := config.Load(args[0])
				if err != nil {
					return err
				}
				cfg, source = loaded, args[0]
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok\n", source)
			fmt.Fprintf(out, "  version:    %s\n", cfg.Version)
			fmt.Fprintf(out, "  debug:      %t\n", cfg.Debug)
			fmt.Fprintf(out, "  verbose:    %t\n", cfg.Log.Verbose)
			fmt.Fprintf(out, "  max passes: %d\n", cfg.Scheduler.MaxPasses)
			return nil
		},
	})
	return c
}
