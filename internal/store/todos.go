package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tasklet/internal/models"
)

const todoColumns = `id, text, due_date, image_url, pdf_url, completed, created_at, updated_at`

// timeLayout keeps a fixed-width fraction so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// now is swapped in tests that need distinct timestamps.
var now = func() time.Time { return time.Now().UTC() }

// ListTodos returns every todo, newest first.
func (s *Store) ListTodos(ctx context.Context) ([]models.Todo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+todoColumns+` FROM todos ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

// GetTodo returns a todo by id.
func (s *Store) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// CreateTodo inserts a new todo and returns it as stored.
func (s *Store) CreateTodo(ctx context.Context, fields TodoFields) (*models.Todo, error) {
	if err := ValidateFields(&fields); err != nil {
		return nil, err
	}

	id, err := GenerateID(func(candidate string) (bool, error) {
		return s.todoExists(ctx, candidate)
	})
	if err != nil {
		return nil, err
	}

	ts := now()
	todo := &models.Todo{
		ID:        id,
		Text:      fields.Text,
		DueDate:   normalizeDue(fields.DueDate),
		ImageURL:  fields.ImageURL,
		PDFURL:    fields.PDFURL,
		Completed: fields.Completed,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO todos (`+todoColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		todo.ID,
		todo.Text,
		nullTime(todo.DueDate),
		nullIfEmpty(todo.ImageURL),
		nullIfEmpty(todo.PDFURL),
		boolToInt(todo.Completed),
		formatTime(todo.CreatedAt),
		formatTime(todo.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// UpdateTodo merges the provided fields into the todo and bumps updated_at.
func (s *Store) UpdateTodo(ctx context.Context, id string, patch TodoPatch) (*models.Todo, error) {
	if err := ValidatePatch(&patch); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}

	if patch.Text != nil {
		sets = append(sets, "text = ?")
		args = append(args, *patch.Text)
	}
	if patch.ClearDueDate {
		sets = append(sets, "due_date = NULL")
	} else if patch.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, nullTime(patch.DueDate))
	}
	if patch.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, nullIfEmpty(*patch.ImageURL))
	}
	if patch.PDFURL != nil {
		sets = append(sets, "pdf_url = ?")
		args = append(args, nullIfEmpty(*patch.PDFURL))
	}
	if patch.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, boolToInt(*patch.Completed))
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(now()))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE todos SET %s WHERE id = ?", strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetTodo(ctx, id)
}

// DeleteTodo removes a todo by id.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) todoExists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM todos WHERE id = ?`, id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanTodo(scanner interface {
	Scan(dest ...any) error
}) (*models.Todo, error) {
	var todo models.Todo
	var dueDate, imageURL, pdfURL sql.NullString
	var completed int
	var createdAt, updatedAt string

	if err := scanner.Scan(
		&todo.ID,
		&todo.Text,
		&dueDate,
		&imageURL,
		&pdfURL,
		&completed,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if dueDate.Valid && dueDate.String != "" {
		parsed, err := parseTime(dueDate.String)
		if err != nil {
			return nil, err
		}
		todo.DueDate = &parsed
	}
	todo.ImageURL = imageURL.String
	todo.PDFURL = pdfURL.String
	todo.Completed = completed != 0
	if todo.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if todo.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &todo, nil
}

func normalizeDue(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	t := value.UTC()
	return &t
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return formatTime(*value)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}
