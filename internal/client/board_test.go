package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklet/internal/api"
	"tasklet/internal/models"
)

type fakeAPI struct {
	mu       sync.Mutex
	todos    []models.Todo
	err      error
	warnings []string
	updates  []api.TodoUpdateRequest
	files    []api.Attachments
	seq      int
}

func (f *fakeAPI) ListTodos(ctx context.Context) ([]models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Todo, len(f.todos))
	copy(out, f.todos)
	return out, nil
}

func (f *fakeAPI) CreateTodo(ctx context.Context, req api.TodoCreateRequest, files api.Attachments) (api.TodoResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return api.TodoResponse{}, f.err
	}
	f.seq++
	f.files = append(f.files, files)
	todo := models.Todo{ID: "new" + string(rune('0'+f.seq)), Text: req.Text, DueDate: req.DueDate, CreatedAt: time.Now()}
	if req.Completed != nil {
		todo.Completed = *req.Completed
	}
	f.todos = append([]models.Todo{todo}, f.todos...)
	return api.TodoResponse{Todo: todo, Warnings: f.warnings}, nil
}

func (f *fakeAPI) UpdateTodo(ctx context.Context, id string, req api.TodoUpdateRequest, files api.Attachments) (api.TodoResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return api.TodoResponse{}, f.err
	}
	f.updates = append(f.updates, req)
	for i, t := range f.todos {
		if t.ID != id {
			continue
		}
		if req.Text != nil {
			t.Text = *req.Text
		}
		if req.Completed != nil {
			t.Completed = *req.Completed
		}
		if req.DueDate != nil {
			t.DueDate = req.DueDate
		}
		if req.ClearDueDate {
			t.DueDate = nil
		}
		f.todos[i] = t
		return api.TodoResponse{Todo: t, Warnings: f.warnings}, nil
	}
	return api.TodoResponse{}, &api.APIError{Status: 404, Code: "not_found", Message: "todo not found"}
}

func (f *fakeAPI) DeleteTodo(ctx context.Context, id string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i, t := range f.todos {
		if t.ID == id {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			return f.warnings, nil
		}
	}
	return nil, &api.APIError{Status: 404, Code: "not_found", Message: "todo not found"}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededBoard(t *testing.T) (*Board, *fakeAPI) {
	t.Helper()
	fake := &fakeAPI{todos: []models.Todo{
		{ID: "b", Text: "B"},
		{ID: "a", Text: "A", Completed: true},
	}}
	b := NewBoard(fake, discardLogger())
	require.NoError(t, b.Load(context.Background()))
	return b, fake
}

func ids(todos []models.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.ID)
	}
	return out
}

func TestBoardLoad(t *testing.T) {
	b, _ := seededBoard(t)
	assert.Equal(t, []string{"b", "a"}, ids(b.Todos()))

	empty := NewBoard(&fakeAPI{}, discardLogger())
	require.NoError(t, empty.Load(context.Background()))
	assert.NotNil(t, empty.Todos())
	assert.Empty(t, empty.Todos())
}

func TestBoardTodosReturnsCopy(t *testing.T) {
	b, _ := seededBoard(t)
	todos := b.Todos()
	todos[0].Text = "mutated"
	assert.Equal(t, "B", b.Todos()[0].Text)
}

func TestBoardAddAppends(t *testing.T) {
	b, fake := seededBoard(t)
	resp, err := b.Add(context.Background(), api.TodoCreateRequest{Text: "C"}, api.Attachments{})
	require.NoError(t, err)
	assert.Equal(t, "C", resp.Text)
	assert.Equal(t, []string{"b", "a", resp.ID}, ids(b.Todos()))
	assert.Len(t, fake.files, 1)
}

func TestBoardUpdateReplacesByID(t *testing.T) {
	b, _ := seededBoard(t)
	text := "renamed"
	resp, err := b.Update(context.Background(), "a", api.TodoUpdateRequest{Text: &text}, api.Attachments{})
	require.NoError(t, err)
	assert.Equal(t, "renamed", resp.Text)

	got, ok := b.Find("a")
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Text)
	assert.Equal(t, []string{"b", "a"}, ids(b.Todos()))
}

func TestBoardToggleSendsOnlyCompleted(t *testing.T) {
	b, fake := seededBoard(t)

	resp, err := b.Toggle(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, resp.Completed)

	require.Len(t, fake.updates, 1)
	req := fake.updates[0]
	require.NotNil(t, req.Completed)
	assert.False(t, *req.Completed)
	assert.Nil(t, req.Text)
	assert.Nil(t, req.DueDate)
	assert.False(t, req.ClearDueDate)

	got, _ := b.Find("a")
	assert.False(t, got.Completed)
}

func TestBoardToggleUnknownID(t *testing.T) {
	b, fake := seededBoard(t)
	_, err := b.Toggle(context.Background(), "zzz")
	require.ErrorIs(t, err, ErrUnknownTodo)
	assert.Empty(t, fake.updates)
}

func TestBoardDeleteFiltersID(t *testing.T) {
	b, _ := seededBoard(t)
	_, err := b.Delete(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(b.Todos()))
}

func TestBoardReturnsWarnings(t *testing.T) {
	b, fake := seededBoard(t)
	fake.warnings = []string{"delete old image failed"}

	warnings, err := b.Delete(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"delete old image failed"}, warnings)
}

func TestBoardUnchangedOnFailure(t *testing.T) {
	b, fake := seededBoard(t)
	before := b.Todos()
	fake.err = errors.New("connection refused")
	ctx := context.Background()

	_, err := b.Add(ctx, api.TodoCreateRequest{Text: "C"}, api.Attachments{})
	assert.Error(t, err)
	_, err = b.Update(ctx, "a", api.TodoUpdateRequest{}, api.Attachments{})
	assert.Error(t, err)
	_, err = b.Toggle(ctx, "a")
	assert.Error(t, err)
	_, err = b.Delete(ctx, "a")
	assert.Error(t, err)
	assert.Error(t, b.Load(ctx))

	assert.Equal(t, before, b.Todos())
}

func TestBoardNotFoundLeavesList(t *testing.T) {
	b, fake := seededBoard(t)
	fake.todos = fake.todos[:1]

	_, err := b.Delete(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, []string{"b", "a"}, ids(b.Todos()))
}

func TestOpenAttachments(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "cat.png")
	pdf := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(img, []byte("pixels"), 0o644))
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0o644))

	t.Run("both", func(t *testing.T) {
		files, closeAll, err := OpenAttachments(img, pdf)
		require.NoError(t, err)
		defer closeAll()

		require.NotNil(t, files.Image)
		require.NotNil(t, files.PDF)
		assert.Equal(t, "cat.png", files.Image.Filename)
		body, err := io.ReadAll(files.PDF.Body)
		require.NoError(t, err)
		assert.Equal(t, "%PDF", string(body))
	})

	t.Run("none", func(t *testing.T) {
		files, closeAll, err := OpenAttachments("", "")
		require.NoError(t, err)
		assert.True(t, files.IsEmpty())
		assert.NoError(t, closeAll())
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := OpenAttachments(img, filepath.Join(dir, "nope.pdf"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		_, _, err := OpenAttachments(dir, "")
		assert.Error(t, err)
	})
}
