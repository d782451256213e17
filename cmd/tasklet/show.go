package main

import (
	"github.com/spf13/cobra"

	"tasklet/internal/api"
	"tasklet/internal/config"
)

func newShowCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a todo",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				todo, err := client.GetTodo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if flags.structured() {
					return writeStructured(todo)
				}
				return writeTodoDetail(todo)
			})
		},
	}
}
