package main

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"tasklet/internal/api"
	"tasklet/internal/client"
	"tasklet/internal/config"
	"tasklet/internal/tui"
)

const uiLogFileName = "tasklet-ui.log"

func newUICmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive todo board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			closeLog, err := redirectLogs(filepath.Join(dir, uiLogFileName))
			if err != nil {
				return err
			}
			defer closeLog()

			return withClient(cfg, func(c *api.Client) error {
				logger := slog.Default()
				board := client.NewBoard(c, logger)
				return tui.Run(cmd.Context(), board, logger)
			})
		},
	}
}
