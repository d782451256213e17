package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"tasklet/internal/format"
	"tasklet/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	now              = time.Now
)

func writeStructured(payload any) error {
	return outputFormatter.Write(stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(stdout, format, args...)
	return err
}

// writeWarnings reports cleanup failures the server attached to a response.
func writeWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}
}

func writeTodoList(todos []models.Todo) error {
	if len(todos) == 0 {
		return writePlain("No todos.\n")
	}
	for _, todo := range todos {
		if err := writePlain("%s\n", formatTodoLine(todo)); err != nil {
			return err
		}
	}
	return nil
}

func writeTodoDetail(todo models.Todo) error {
	lines := []string{
		fmt.Sprintf("id: %s", todo.ID),
		fmt.Sprintf("text: %s", todo.Text),
		fmt.Sprintf("completed: %t", todo.Completed),
	}
	if todo.DueDate != nil {
		lines = append(lines, fmt.Sprintf("due: %s (%s)", models.FormatDueDate(*todo.DueDate), relative(*todo.DueDate)))
	}
	if todo.ImageURL != "" {
		lines = append(lines, fmt.Sprintf("image: %s", todo.ImageURL))
	}
	if todo.PDFURL != "" {
		lines = append(lines, fmt.Sprintf("pdf: %s", todo.PDFURL))
	}
	lines = append(lines,
		fmt.Sprintf("created_at: %s", formatTime(todo.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTime(todo.UpdatedAt)),
	)
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatTodoLine(todo models.Todo) string {
	mark := "○"
	if todo.Completed {
		mark = "✓"
	}
	line := fmt.Sprintf("%s %s - %s", mark, todo.ID, todo.Text)
	if todo.DueDate != nil {
		line += fmt.Sprintf(" (due %s)", relative(*todo.DueDate))
	}
	if n := len(todo.AttachmentURLs()); n > 0 {
		line += fmt.Sprintf(" [%s]", english.Plural(n, "attachment", "attachments"))
	}
	return line
}

func relative(t time.Time) string {
	return humanize.RelTime(t, now(), "ago", "from now")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
