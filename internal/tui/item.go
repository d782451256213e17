package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"tasklet/internal/models"
)

// todoItem adapts a models.Todo to list.Item.
type todoItem struct {
	todo models.Todo
	now  func() time.Time
}

func (i todoItem) Title() string       { return i.todo.Text }
func (i todoItem) Description() string { return i.dueText() }
func (i todoItem) FilterValue() string { return i.todo.Text }

func (i todoItem) dueText() string {
	if i.todo.DueDate == nil {
		return ""
	}
	now := time.Now()
	if i.now != nil {
		now = i.now()
	}
	return "due " + humanize.RelTime(*i.todo.DueDate, now, "ago", "from now")
}

func (i todoItem) overdue() bool {
	if i.todo.DueDate == nil || i.todo.Completed {
		return false
	}
	now := time.Now()
	if i.now != nil {
		now = i.now()
	}
	return i.todo.DueDate.Before(now)
}

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}

	box := mutedStyle.Render(boxUnchecked)
	text := it.todo.Text
	if it.todo.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}

	parts := []string{box, text}
	if due := it.dueText(); due != "" {
		style := pendingStyle
		if it.overdue() {
			style = overdueStyle
		}
		parts = append(parts, style.Render("("+due+")"))
	}
	if n := len(it.todo.AttachmentURLs()); n > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("%s%d", clipMark, n)))
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+strings.Join(parts, " "))
}

func toItems(todos []models.Todo, now func() time.Time) []list.Item {
	items := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		items = append(items, todoItem{todo: t, now: now})
	}
	return items
}

func stats(todos []models.Todo) (done, pending int) {
	for _, t := range todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
