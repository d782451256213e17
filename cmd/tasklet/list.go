package main

import (
	"github.com/spf13/cobra"

	"tasklet/internal/api"
	"tasklet/internal/config"
	"tasklet/internal/models"
)

func newListCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				todos, err := client.ListTodos(cmd.Context())
				if err != nil {
					return err
				}
				if pendingOnly {
					todos = filterPending(todos)
				}
				if flags.structured() {
					return writeStructured(todos)
				}
				return writeTodoList(todos)
			})
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "only show todos that are not completed")
	return cmd
}

func filterPending(todos []models.Todo) []models.Todo {
	out := make([]models.Todo, 0, len(todos))
	for _, t := range todos {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}
