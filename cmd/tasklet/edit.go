package main

import (
	"errors"

	"github.com/spf13/cobra"

	"tasklet/internal/api"
	"tasklet/internal/client"
	"tasklet/internal/config"
	"tasklet/internal/models"
)

type editOptions struct {
	text      string
	due       string
	clearDue  bool
	done      bool
	imagePath string
	pdfPath   string
}

func newEditCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var opts editOptions

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update fields or attachments of a todo",
		Args:  requireID,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildUpdateRequest(cmd, opts)
			if err != nil {
				return err
			}
			files, closeFiles, err := client.OpenAttachments(opts.imagePath, opts.pdfPath)
			if err != nil {
				return err
			}
			defer closeFiles()
			if req.IsEmpty() && files.IsEmpty() {
				return errors.New("nothing to update: pass --text, --due, --clear-due, --done, --image or --pdf")
			}

			return withClient(cfg, func(c *api.Client) error {
				resp, err := c.UpdateTodo(cmd.Context(), args[0], req, files)
				if err != nil {
					return err
				}
				writeWarnings(resp.Warnings)
				if flags.structured() {
					return writeStructured(resp.Todo)
				}
				return writeTodoDetail(resp.Todo)
			})
		},
	}

	cmd.Flags().StringVar(&opts.text, "text", "", "new text")
	cmd.Flags().StringVar(&opts.due, "due", "", "new due date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().BoolVar(&opts.clearDue, "clear-due", false, "remove the due date")
	cmd.Flags().BoolVar(&opts.done, "done", false, "set completed (--done=false to reopen)")
	cmd.Flags().StringVar(&opts.imagePath, "image", "", "path to a replacement image")
	cmd.Flags().StringVar(&opts.pdfPath, "pdf", "", "path to a replacement PDF")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

// buildUpdateRequest sends only the flags the user set.
func buildUpdateRequest(cmd *cobra.Command, opts editOptions) (api.TodoUpdateRequest, error) {
	var req api.TodoUpdateRequest
	fs := cmd.Flags()

	if fs.Changed("text") {
		text := opts.text
		req.Text = &text
	}
	if fs.Changed("due") {
		parsed, err := models.ParseDueDate(opts.due)
		if err != nil {
			return req, err
		}
		req.DueDate = &parsed
	}
	if opts.clearDue {
		req.ClearDueDate = true
	}
	if fs.Changed("done") {
		done := opts.done
		req.Completed = &done
	}
	return req, nil
}
