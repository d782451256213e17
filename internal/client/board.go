// Package client holds the client-side view of the todo list.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"tasklet/internal/api"
	"tasklet/internal/models"
)

// API is the subset of api.Client the Board needs.
type API interface {
	ListTodos(ctx context.Context) ([]models.Todo, error)
	CreateTodo(ctx context.Context, req api.TodoCreateRequest, files api.Attachments) (api.TodoResponse, error)
	UpdateTodo(ctx context.Context, id string, req api.TodoUpdateRequest, files api.Attachments) (api.TodoResponse, error)
	DeleteTodo(ctx context.Context, id string) ([]string, error)
}

// ErrUnknownTodo is returned when an id is not present in the local list.
var ErrUnknownTodo = errors.New("todo not in list")

// Board mirrors the server's todo list. Every mutation goes to the server
// first and the list only changes with the server's response.
type Board struct {
	api    API
	logger *slog.Logger

	mu    sync.RWMutex
	todos []models.Todo
}

// NewBoard creates an empty board backed by c.
func NewBoard(c API, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{api: c, logger: logger.With("component", "board")}
}

// Load replaces the local list with the server's.
func (b *Board) Load(ctx context.Context) error {
	todos, err := b.api.ListTodos(ctx)
	if err != nil {
		b.logger.Error("load todos", "error", err)
		return err
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	b.mu.Lock()
	b.todos = todos
	b.mu.Unlock()
	b.logger.Debug("todos loaded", "count", len(todos))
	return nil
}

// Todos returns a copy of the local list: server order, then local additions.
func (b *Board) Todos() []models.Todo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.Todo, len(b.todos))
	copy(out, b.todos)
	return out
}

// Find returns the local copy of a todo.
func (b *Board) Find(id string) (models.Todo, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.indexLocked(id)
	if i < 0 {
		return models.Todo{}, false
	}
	return b.todos[i], true
}

// Add creates a todo and appends the server's record.
func (b *Board) Add(ctx context.Context, req api.TodoCreateRequest, files api.Attachments) (api.TodoResponse, error) {
	resp, err := b.api.CreateTodo(ctx, req, files)
	if err != nil {
		b.logger.Error("create todo", "error", err)
		return api.TodoResponse{}, err
	}
	b.logWarnings(resp.ID, resp.Warnings)

	b.mu.Lock()
	b.todos = append(b.todos, resp.Todo)
	b.mu.Unlock()
	return resp, nil
}

// Update sends a patch and replaces the local record with the response.
func (b *Board) Update(ctx context.Context, id string, req api.TodoUpdateRequest, files api.Attachments) (api.TodoResponse, error) {
	resp, err := b.api.UpdateTodo(ctx, id, req, files)
	if err != nil {
		b.logger.Error("update todo", "todo_id", id, "error", err)
		return api.TodoResponse{}, err
	}
	b.logWarnings(id, resp.Warnings)

	b.mu.Lock()
	if i := b.indexLocked(id); i >= 0 {
		b.todos[i] = resp.Todo
	}
	b.mu.Unlock()
	return resp, nil
}

// Toggle flips the completed flag of a todo in the local list.
func (b *Board) Toggle(ctx context.Context, id string) (api.TodoResponse, error) {
	todo, ok := b.Find(id)
	if !ok {
		err := fmt.Errorf("toggle %s: %w", id, ErrUnknownTodo)
		b.logger.Error("toggle todo", "todo_id", id, "error", err)
		return api.TodoResponse{}, err
	}
	completed := !todo.Completed
	return b.Update(ctx, id, api.TodoUpdateRequest{Completed: &completed}, api.Attachments{})
}

// Delete removes a todo on the server, then from the local list.
func (b *Board) Delete(ctx context.Context, id string) ([]string, error) {
	warnings, err := b.api.DeleteTodo(ctx, id)
	if err != nil {
		b.logger.Error("delete todo", "todo_id", id, "error", err)
		return nil, err
	}
	b.logWarnings(id, warnings)

	b.mu.Lock()
	filtered := b.todos[:0:0]
	for _, t := range b.todos {
		if t.ID != id {
			filtered = append(filtered, t)
		}
	}
	b.todos = filtered
	b.mu.Unlock()
	return warnings, nil
}

func (b *Board) indexLocked(id string) int {
	for i, t := range b.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) logWarnings(id string, warnings []string) {
	for _, w := range warnings {
		b.logger.Warn("server reported cleanup failure", "todo_id", id, "warning", w)
	}
}

// OpenAttachments opens the files at imagePath and pdfPath for upload.
// Empty paths are skipped. The returned func closes every opened file.
func OpenAttachments(imagePath, pdfPath string) (api.Attachments, func() error, error) {
	var files api.Attachments
	var closers []io.Closer
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
		return errors.Join(errs...)
	}

	open := func(p string) (*api.Attachment, error) {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open attachment: %w", err)
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("stat attachment: %w", err)
		}
		if info.IsDir() {
			f.Close()
			return nil, fmt.Errorf("attachment %s is a directory", p)
		}
		closers = append(closers, f)
		return &api.Attachment{Filename: filepath.Base(p), Body: f}, nil
	}

	if imagePath != "" {
		a, err := open(imagePath)
		if err != nil {
			return api.Attachments{}, nil, err
		}
		files.Image = a
	}
	if pdfPath != "" {
		a, err := open(pdfPath)
		if err != nil {
			_ = closeAll()
			return api.Attachments{}, nil, err
		}
		files.PDF = a
	}
	return files, closeAll, nil
}
