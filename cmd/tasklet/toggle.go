package main

import (
	"github.com/spf13/cobra"

	"tasklet/internal/api"
	"tasklet/internal/config"
)

func newToggleCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the completed flag of a todo",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				todo, err := client.GetTodo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				completed := !todo.Completed
				resp, err := client.UpdateTodo(cmd.Context(), todo.ID, api.TodoUpdateRequest{Completed: &completed}, api.Attachments{})
				if err != nil {
					return err
				}
				writeWarnings(resp.Warnings)
				if flags.structured() {
					return writeStructured(resp.Todo)
				}
				return writePlain("%s\n", formatTodoLine(resp.Todo))
			})
		},
	}
}
