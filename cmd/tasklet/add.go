package main

import (
	"strings"

	"github.com/spf13/cobra"

	"tasklet/internal/api"
	"tasklet/internal/client"
	"tasklet/internal/config"
	"tasklet/internal/models"
)

func newAddCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var (
		due       string
		done      bool
		imagePath string
		pdfPath   string
	)

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Create a todo",
		Args:  requireAtLeastArgs(1, "text is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.TodoCreateRequest{Text: strings.Join(args, " ")}
			if due != "" {
				parsed, err := models.ParseDueDate(due)
				if err != nil {
					return err
				}
				req.DueDate = &parsed
			}
			if cmd.Flags().Changed("done") {
				req.Completed = &done
			}

			files, closeFiles, err := client.OpenAttachments(imagePath, pdfPath)
			if err != nil {
				return err
			}
			defer closeFiles()

			return withClient(cfg, func(c *api.Client) error {
				resp, err := c.CreateTodo(cmd.Context(), req, files)
				if err != nil {
					return err
				}
				writeWarnings(resp.Warnings)
				if flags.structured() {
					return writeStructured(resp.Todo)
				}
				return writePlain("created %s\n", resp.ID)
			})
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().BoolVar(&done, "done", false, "create the todo as completed")
	cmd.Flags().StringVar(&imagePath, "image", "", "path to an image to attach")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "path to a PDF to attach")
	return cmd
}
