package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasklet/internal/api"
	"tasklet/internal/models"
)

const (
	fieldText = iota
	fieldDue
	fieldImage
	fieldPDF
	fieldCount
)

var fieldLabels = [fieldCount]string{"Text", "Due", "Image", "PDF"}

// todoForm is the create and edit form. editID is empty when creating.
type todoForm struct {
	editID   string
	original models.Todo
	inputs   [fieldCount]textinput.Model
	focus    int
	err      string
}

func newTodoForm() todoForm {
	var f todoForm
	placeholders := [fieldCount]string{
		"What needs doing?",
		"2024-06-01 or RFC3339, blank for none",
		"path to an image (optional)",
		"path to a PDF (optional)",
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = placeholders[i]
		f.inputs[i] = ti
	}
	f.inputs[fieldText].CharLimit = models.TextMaxLength
	f.inputs[fieldText].Focus()
	return f
}

func editTodoForm(todo models.Todo) todoForm {
	f := newTodoForm()
	f.editID = todo.ID
	f.original = todo
	f.inputs[fieldText].SetValue(todo.Text)
	f.inputs[fieldText].CursorEnd()
	if todo.DueDate != nil {
		f.inputs[fieldDue].SetValue(models.FormatDueDate(*todo.DueDate))
	}
	return f
}

func (f todoForm) editing() bool { return f.editID != "" }

func (f *todoForm) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

func (f *todoForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f todoForm) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f todoForm) view() string {
	title := "New todo"
	if f.editing() {
		title = "Edit todo"
	}
	if f.err != "" {
		title += "  " + errorStyle.Render(f.err)
	}
	lines := []string{titleStyle.Render(title)}
	for i := range f.inputs {
		lines = append(lines, labelStyle.Render(fieldLabels[i])+f.inputs[i].View())
	}
	lines = append(lines, helpStyle.Render("tab next • shift+tab prev • enter save • esc cancel"))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// createRequest validates the form for a create call.
func (f todoForm) createRequest() (api.TodoCreateRequest, error) {
	text := f.value(fieldText)
	if text == "" {
		return api.TodoCreateRequest{}, fmt.Errorf("text cannot be empty")
	}
	req := api.TodoCreateRequest{Text: text}
	if raw := f.value(fieldDue); raw != "" {
		due, err := models.ParseDueDate(raw)
		if err != nil {
			return api.TodoCreateRequest{}, err
		}
		req.DueDate = &due
	}
	return req, nil
}

// updateRequest builds a patch holding only the fields that changed.
func (f todoForm) updateRequest() (api.TodoUpdateRequest, error) {
	var req api.TodoUpdateRequest

	text := f.value(fieldText)
	if text == "" {
		return req, fmt.Errorf("text cannot be empty")
	}
	if text != f.original.Text {
		req.Text = &text
	}

	raw := f.value(fieldDue)
	switch {
	case raw == "" && f.original.DueDate != nil:
		req.ClearDueDate = true
	case raw != "":
		due, err := models.ParseDueDate(raw)
		if err != nil {
			return req, err
		}
		if f.original.DueDate == nil || !due.Equal(*f.original.DueDate) {
			req.DueDate = &due
		}
	}
	return req, nil
}
