package store

import (
	"context"
	"errors"
	"time"

	"tasklet/internal/models"
)

var (
	// ErrNotFound reports that no todo exists for the requested id.
	ErrNotFound = errors.New("todo not found")
	// ErrValidation reports input the repository refuses to persist.
	ErrValidation = errors.New("invalid todo")
	// ErrUnavailable reports that the backing database cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// TodoFields is the input for creating a todo.
type TodoFields struct {
	Text      string
	DueDate   *time.Time
	ImageURL  string
	PDFURL    string
	Completed bool
}

// TodoPatch lists the fields to merge into an existing todo. Nil pointers
// leave the stored value untouched; an empty URL clears it.
type TodoPatch struct {
	Text         *string
	DueDate      *time.Time
	ClearDueDate bool
	ImageURL     *string
	PDFURL       *string
	Completed    *bool
}

// IsEmpty reports whether the patch carries no changes.
func (p TodoPatch) IsEmpty() bool {
	return p.Text == nil &&
		p.DueDate == nil &&
		!p.ClearDueDate &&
		p.ImageURL == nil &&
		p.PDFURL == nil &&
		p.Completed == nil
}

// TodoStore abstracts todo storage backends.
type TodoStore interface {
	ListTodos(ctx context.Context) ([]models.Todo, error)
	GetTodo(ctx context.Context, id string) (*models.Todo, error)
	CreateTodo(ctx context.Context, fields TodoFields) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch TodoPatch) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

var _ TodoStore = (*Store)(nil)

// ValidateFields checks create input the same way for every backend.
func ValidateFields(fields *TodoFields) error {
	text, err := models.NormalizeText(fields.Text)
	if err != nil {
		return errors.Join(ErrValidation, err)
	}
	fields.Text = text
	return nil
}

// ValidatePatch checks patch input the same way for every backend.
func ValidatePatch(patch *TodoPatch) error {
	if patch.Text != nil {
		text, err := models.NormalizeText(*patch.Text)
		if err != nil {
			return errors.Join(ErrValidation, err)
		}
		patch.Text = &text
	}
	return nil
}
