// Package tui is the interactive terminal client.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"tasklet/internal/api"
	"tasklet/internal/client"
	"tasklet/internal/models"
)

// Board is the state holder the TUI renders. *client.Board implements it.
type Board interface {
	Load(ctx context.Context) error
	Todos() []models.Todo
	Find(id string) (models.Todo, bool)
	Add(ctx context.Context, req api.TodoCreateRequest, files api.Attachments) (api.TodoResponse, error)
	Update(ctx context.Context, id string, req api.TodoUpdateRequest, files api.Attachments) (api.TodoResponse, error)
	Toggle(ctx context.Context, id string) (api.TodoResponse, error)
	Delete(ctx context.Context, id string) ([]string, error)
}

type state int

const (
	stateLoading state = iota
	stateList
	stateForm
	stateBusy
)

func (s state) String() string {
	switch s {
	case stateLoading:
		return "loading"
	case stateList:
		return "list"
	case stateForm:
		return "form"
	case stateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

const defaultRequestTimeout = 30 * time.Second

type loadedMsg struct {
	err error
}

type mutatedMsg struct {
	action   string
	warnings []string
	err      error
}

// Model is the bubbletea model for the todo board.
type Model struct {
	ctx     context.Context
	board   Board
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	state  state
	list   list.Model
	form   todoForm
	status string
	failed bool
}

// New builds the model. Init loads the board.
func New(ctx context.Context, board Board, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = titleStyle.Render("Todos")
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")

	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
	l.AdditionalShortHelpKeys = func() []key.Binding { return bindings }
	l.AdditionalFullHelpKeys = func() []key.Binding { return bindings }

	return &Model{
		ctx:     ctx,
		board:   board,
		logger:  logger.With("component", "tui"),
		timeout: defaultRequestTimeout,
		now:     time.Now,
		state:   stateLoading,
		list:    l,
	}
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(ctx context.Context, board Board, logger *slog.Logger) error {
	program := tea.NewProgram(New(ctx, board, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case loadedMsg:
		m.state = stateList
		if msg.err != nil {
			m.setError("load failed", msg.err)
			return m, m.refresh()
		}
		m.setStatus(fmt.Sprintf("loaded %d todos", len(m.board.Todos())))
		return m, m.refresh()

	case mutatedMsg:
		m.state = stateList
		if msg.err != nil {
			m.setError(msg.action+" failed", msg.err)
			return m, nil
		}
		status := msg.action
		if len(msg.warnings) > 0 {
			status += " (warning: " + strings.Join(msg.warnings, "; ") + ")"
		}
		m.setStatus(status)
		return m, m.refresh()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case stateForm:
			return m, m.updateForm(msg)
		case stateLoading, stateBusy:
			if msg.String() == "q" {
				return m, tea.Quit
			}
			return m, nil
		}
		if m.list.FilterState() != list.Filtering {
			if cmd, handled := m.handleListKey(msg); handled {
				return m, cmd
			}
		}
	}

	if m.state == stateForm {
		return m, m.form.update(msg)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return tea.Quit, true
	case "a":
		m.form = newTodoForm()
		m.state = stateForm
		return nil, true
	case "e":
		todo, ok := m.selected()
		if !ok {
			return nil, true
		}
		m.form = editTodoForm(todo)
		m.state = stateForm
		return nil, true
	case " ", "space":
		todo, ok := m.selected()
		if !ok {
			return nil, true
		}
		m.state = stateBusy
		return m.toggleCmd(todo.ID), true
	case "d":
		todo, ok := m.selected()
		if !ok {
			return nil, true
		}
		m.state = stateBusy
		return m.deleteCmd(todo.ID), true
	case "r":
		m.state = stateLoading
		m.setStatus("reloading")
		return m.loadCmd(), true
	}
	return nil, false
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.state = stateList
		return nil
	case "tab", "down":
		m.form.setFocus(m.form.focus + 1)
		return nil
	case "shift+tab", "up":
		m.form.setFocus(m.form.focus - 1)
		return nil
	case "enter":
		return m.submitForm()
	}
	return m.form.update(msg)
}

func (m *Model) submitForm() tea.Cmd {
	imagePath := m.form.value(fieldImage)
	pdfPath := m.form.value(fieldPDF)

	if !m.form.editing() {
		req, err := m.form.createRequest()
		if err != nil {
			m.form.err = err.Error()
			return nil
		}
		m.state = stateBusy
		return m.createCmd(req, imagePath, pdfPath)
	}

	req, err := m.form.updateRequest()
	if err != nil {
		m.form.err = err.Error()
		return nil
	}
	if req.IsEmpty() && imagePath == "" && pdfPath == "" {
		m.state = stateList
		m.setStatus("nothing to update")
		return nil
	}
	m.state = stateBusy
	return m.updateCmd(m.form.editID, req, imagePath, pdfPath)
}

func (m *Model) selected() (models.Todo, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	if !ok {
		return models.Todo{}, false
	}
	return it.todo, true
}

func (m *Model) refresh() tea.Cmd {
	todos := m.board.Todos()
	done, pending := stats(todos)
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render(boxChecked), done,
		pendingStyle.Render(boxUnchecked), pending,
	)
	return m.list.SetItems(toItems(todos, m.now))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *Model) setError(prefix string, err error) {
	m.status = prefix + ": " + err.Error()
	m.failed = true
	m.logger.Error(prefix, "error", err)
}

func (m *Model) View() string {
	if m.state == stateLoading && len(m.list.Items()) == 0 {
		return panelStyle.Render("Loading todos...")
	}

	var b strings.Builder
	b.WriteString(m.list.View())
	if m.state == stateForm {
		b.WriteString("\n" + m.form.view())
	}
	if m.status != "" {
		style := mutedStyle
		if m.failed {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status))
	}
	return panelStyle.Render(b.String())
}

func (m *Model) requestContext() (context.Context, context.CancelFunc) {
	parent := m.ctx
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, m.timeout)
}

func (m *Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		return loadedMsg{err: m.board.Load(ctx)}
	}
}

func (m *Model) createCmd(req api.TodoCreateRequest, imagePath, pdfPath string) tea.Cmd {
	return func() tea.Msg {
		files, closeAll, err := client.OpenAttachments(imagePath, pdfPath)
		if err != nil {
			return mutatedMsg{action: "add", err: err}
		}
		defer closeAll()

		ctx, cancel := m.requestContext()
		defer cancel()
		resp, err := m.board.Add(ctx, req, files)
		return mutatedMsg{action: "add", warnings: resp.Warnings, err: err}
	}
}

func (m *Model) updateCmd(id string, req api.TodoUpdateRequest, imagePath, pdfPath string) tea.Cmd {
	return func() tea.Msg {
		files, closeAll, err := client.OpenAttachments(imagePath, pdfPath)
		if err != nil {
			return mutatedMsg{action: "edit", err: err}
		}
		defer closeAll()

		ctx, cancel := m.requestContext()
		defer cancel()
		resp, err := m.board.Update(ctx, id, req, files)
		return mutatedMsg{action: "edit", warnings: resp.Warnings, err: err}
	}
}

func (m *Model) toggleCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		resp, err := m.board.Toggle(ctx, id)
		return mutatedMsg{action: "toggle", warnings: resp.Warnings, err: err}
	}
}

func (m *Model) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		warnings, err := m.board.Delete(ctx, id)
		return mutatedMsg{action: "delete", warnings: warnings, err: err}
	}
}
