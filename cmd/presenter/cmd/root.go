// Package cmd implements the presenter CLI commands.
//
// The root command resolves the runtime configuration once, before any
// subcommand runs: --config wins over PRESENTER_CONFIG, and with neither set
// presenter.yaml is read from the working directory if it exists.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-drift/presenter/pkg/config"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

const keyConfig = "config"

// app carries state shared by the command tree.
type app struct {
	v   *viper.Viper
	cfg *config.Config
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("PRESENTER")

	root := &cobra.Command{
		Use:   "presenter",
		Short: "Presenter - view lifecycle and state sync for Go UIs",
		Long: `presenter drives presenter trees outside a real UI.

Use "presenter <command> --help" for more information about a command.`,
		Version:           Version + " (built " + BuildTime + ")",
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
	}
	root.PersistentFlags().String(keyConfig, "", "config file (default: ./"+config.FileName+" if present)")
	_ = a.v.BindPFlag(keyConfig, root.PersistentFlags().Lookup(keyConfig))
	_ = a.v.BindEnv(keyConfig)

	root.AddCommand(newDemoCommand(a))
	root.AddCommand(newConfigCommand(a))
	return root
}

// Execute runs the CLI with os.Args. An interrupt cancels the running
// command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	path := a.v.GetString(keyConfig)
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.LoadOptional(".")
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// configPath reports where the active configuration came from.
func (a *app) configPath() string {
	if path := a.v.GetString(keyConfig); path != "" {
		return path
	}
	return config.FileName
}
