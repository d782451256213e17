package main

import (
	"github.com/spf13/cobra"

	"tasklet/internal/api"
	"tasklet/internal/config"
)

type deleteResult struct {
	ID       string   `json:"id"`
	Deleted  bool     `json:"deleted"`
	Warnings []string `json:"warnings,omitempty"`
}

func newRmCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo and its attachments",
		Args:    requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				warnings, err := client.DeleteTodo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeStructured(deleteResult{ID: args[0], Deleted: true, Warnings: warnings})
				}
				writeWarnings(warnings)
				return writePlain("deleted %s\n", args[0])
			})
		},
	}
}
