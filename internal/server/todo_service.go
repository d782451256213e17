package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tasklet/internal/media"
	"tasklet/internal/models"
	"tasklet/internal/store"
)

// TodoCreateInput is a validated-at-the-edge create request.
type TodoCreateInput struct {
	Text      string
	DueDate   *time.Time
	Completed bool
	Image     *media.File
	PDF       *media.File
}

// TodoUpdateInput lists the fields and files to change. Nil means untouched.
type TodoUpdateInput struct {
	Text         *string
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
	Image        *media.File
	PDF          *media.File
}

// Outcome carries the non-fatal failures of an otherwise successful call.
type Outcome struct {
	Warnings []error
}

func (o *Outcome) warn(err error) {
	if err != nil {
		o.Warnings = append(o.Warnings, err)
	}
}

// TodoService composes the todo store and the media host. It owns the
// attachment replacement policy.
type TodoService struct {
	store  store.TodoStore
	media  media.Store
	logger *slog.Logger
}

// NewTodoService constructs a TodoService.
func NewTodoService(todoStore store.TodoStore, mediaStore media.Store, logger *slog.Logger) *TodoService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoService{store: todoStore, media: mediaStore, logger: logger}
}

// List returns all todos, newest first.
func (s *TodoService) List(ctx context.Context) ([]models.Todo, error) {
	todos, err := s.store.ListTodos(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return todos, nil
}

// Get returns one todo.
func (s *TodoService) Get(ctx context.Context, id string) (*models.Todo, error) {
	todo, err := s.store.GetTodo(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return todo, nil
}

// Create uploads the image, then the PDF, then persists the todo.
func (s *TodoService) Create(ctx context.Context, in TodoCreateInput) (*models.Todo, Outcome, error) {
	var outcome Outcome

	text, err := normalizeText(in.Text)
	if err != nil {
		return nil, outcome, err
	}
	fields := store.TodoFields{
		Text:      text,
		DueDate:   in.DueDate,
		Completed: in.Completed,
	}

	var uploaded []string
	for _, kind := range models.AttachmentKinds() {
		file := in.file(kind)
		if file == nil {
			continue
		}
		url, err := s.upload(ctx, kind, *file)
		if err != nil {
			s.logOrphans(uploaded, "create aborted by failed upload")
			return nil, outcome, err
		}
		uploaded = append(uploaded, url)
		setFieldURL(&fields, kind, url)
	}

	todo, err := s.store.CreateTodo(ctx, fields)
	if err != nil {
		s.logOrphans(uploaded, "create failed after upload")
		return nil, outcome, mapStoreError(err)
	}
	return todo, outcome, nil
}

// Update replaces attachments first and merges the provided fields. A
// missing todo is reported before any media call is made.
func (s *TodoService) Update(ctx context.Context, id string, in TodoUpdateInput) (*models.Todo, Outcome, error) {
	var outcome Outcome

	patch := store.TodoPatch{
		DueDate:      in.DueDate,
		ClearDueDate: in.ClearDueDate,
		Completed:    in.Completed,
	}
	if in.Text != nil {
		text, err := normalizeText(*in.Text)
		if err != nil {
			return nil, outcome, err
		}
		patch.Text = &text
	}

	current, err := s.store.GetTodo(ctx, id)
	if err != nil {
		return nil, outcome, mapStoreError(err)
	}
	if in.IsEmpty() {
		return current, outcome, nil
	}

	// repair records the attachment changes already applied on the host, so a
	// later upload failure can still persist them.
	var repair store.TodoPatch
	for _, kind := range models.AttachmentKinds() {
		file := in.file(kind)
		if file == nil {
			continue
		}

		old := current.AttachmentURL(kind)
		oldDeleted := false
		if old != "" {
			if err := s.deleteMedia(ctx, old); err != nil {
				outcome.warn(err)
			} else {
				oldDeleted = true
			}
		}

		url, err := s.upload(ctx, kind, *file)
		if err != nil {
			if oldDeleted {
				setPatchURL(&repair, kind, "")
			}
			s.persistRepair(ctx, id, repair)
			return nil, outcome, err
		}
		setPatchURL(&repair, kind, url)
		setPatchURL(&patch, kind, url)
	}

	if patch.IsEmpty() {
		return current, outcome, nil
	}

	updated, err := s.store.UpdateTodo(ctx, id, patch)
	if err != nil {
		return nil, outcome, mapStoreError(err)
	}
	return updated, outcome, nil
}

// Delete removes the todo's attachments best-effort, then the record.
func (s *TodoService) Delete(ctx context.Context, id string) (Outcome, error) {
	var outcome Outcome

	current, err := s.store.GetTodo(ctx, id)
	if err != nil {
		return outcome, mapStoreError(err)
	}

	for _, url := range current.AttachmentURLs() {
		outcome.warn(s.deleteMedia(ctx, url))
	}

	if err := s.store.DeleteTodo(ctx, id); err != nil {
		return outcome, mapStoreError(err)
	}
	return outcome, nil
}

func (s *TodoService) upload(ctx context.Context, kind models.AttachmentKind, file media.File) (string, error) {
	if s.media == nil {
		return "", uploadFailed(&media.UploadError{Kind: kind, Filename: file.Filename, Err: fmt.Errorf("attachments are not configured")})
	}
	file.Kind = kind
	if file.MediaType == "" {
		file.MediaType = kind.DefaultMediaType()
	}
	url, err := s.media.Upload(ctx, file)
	if err != nil {
		return "", uploadFailed(err)
	}
	return url, nil
}

func (s *TodoService) deleteMedia(ctx context.Context, url string) error {
	if s.media == nil {
		return &media.DeletionError{URL: url, Err: fmt.Errorf("attachments are not configured")}
	}
	return s.media.Delete(ctx, url)
}

func (s *TodoService) persistRepair(ctx context.Context, id string, repair store.TodoPatch) {
	if repair.IsEmpty() {
		return
	}
	if _, err := s.store.UpdateTodo(ctx, id, repair); err != nil {
		s.logger.Warn("persist attachment state after failed upload", "todo_id", id, "error", err)
	}
}

func (s *TodoService) logOrphans(urls []string, reason string) {
	for _, url := range urls {
		s.logger.Warn("orphaned attachment", "url", url, "reason", reason)
	}
}

func (in TodoCreateInput) file(kind models.AttachmentKind) *media.File {
	switch kind {
	case models.AttachmentKindImage:
		return in.Image
	case models.AttachmentKindPDF:
		return in.PDF
	default:
		return nil
	}
}

func (in TodoUpdateInput) file(kind models.AttachmentKind) *media.File {
	switch kind {
	case models.AttachmentKindImage:
		return in.Image
	case models.AttachmentKindPDF:
		return in.PDF
	default:
		return nil
	}
}

// IsEmpty reports whether the update neither changes a field nor carries a file.
func (in TodoUpdateInput) IsEmpty() bool {
	return in.Text == nil && in.DueDate == nil && !in.ClearDueDate && in.Completed == nil && in.Image == nil && in.PDF == nil
}

func setFieldURL(fields *store.TodoFields, kind models.AttachmentKind, url string) {
	switch kind {
	case models.AttachmentKindImage:
		fields.ImageURL = url
	case models.AttachmentKindPDF:
		fields.PDFURL = url
	}
}

func setPatchURL(patch *store.TodoPatch, kind models.AttachmentKind, url string) {
	switch kind {
	case models.AttachmentKindImage:
		patch.ImageURL = &url
	case models.AttachmentKindPDF:
		patch.PDFURL = &url
	}
}

func normalizeText(raw string) (string, error) {
	text, err := models.NormalizeText(raw)
	if err != nil {
		if strings.TrimSpace(raw) == "" {
			return "", badRequestCode(err, ErrCodeMissingRequired)
		}
		return "", badRequest(err)
	}
	return text, nil
}

func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFound(fmt.Errorf("todo not found"))
	case errors.Is(err, store.ErrValidation):
		return badRequest(err)
	default:
		return storeFailure(err)
	}
}
