package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasklet/internal/config"
	"tasklet/internal/format"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	json     bool
	output   string
	logLevel string
}

// structured reports whether output should be machine readable.
func (g *globalFlags) structured() bool {
	return g.json || g.output != ""
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "tasklet",
		Short:         "Tasklet is a small todo service with attachments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			warning, err := configureLoggerForCLI(flags.logLevel, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			formatter, err := format.ForName(flags.output)
			if err != nil {
				return err
			}
			outputFormatter = formatter
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&flags.json, "json", false, "output JSON")
	cmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "", "output format: json or yaml")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newListCmd(cfg, flags),
		newShowCmd(cfg, flags),
		newAddCmd(cfg, flags),
		newEditCmd(cfg, flags),
		newToggleCmd(cfg, flags),
		newRmCmd(cfg, flags),
		newUICmd(cfg),
		newConfigCmd(cfg),
		newMigrateCmd(cfg, flags),
	)

	return cmd
}
