package server

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"tasklet/internal/api"
	"tasklet/internal/media"
	"tasklet/internal/models"
)

// todoForm is the decoded body of a create or update request, from either
// multipart or JSON. Nil fields were not sent.
type todoForm struct {
	text         *string
	dueDate      *time.Time
	clearDueDate bool
	completed    *bool
	image        *media.File
	pdf          *media.File

	closers   []io.Closer
	multipart *multipart.Form
}

func (f *todoForm) close() {
	if f == nil {
		return
	}
	for _, c := range f.closers {
		_ = c.Close()
	}
	if f.multipart != nil {
		_ = f.multipart.RemoveAll()
	}
}

type todoJSONPayload struct {
	Text      *string `json:"text"`
	DueDate   *string `json:"dueDate"`
	Completed *bool   `json:"completed"`
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.service.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	s.writeJSON(w, http.StatusOK, todos)
}

func (s *Server) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrNotFound(w, r)
	if !ok {
		return
	}
	todo, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseTodoForm(w, r)
	defer form.close()
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	if form.text == nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("text is required"), ErrCodeMissingRequired))
		return
	}

	in := TodoCreateInput{
		Text:    *form.text,
		DueDate: form.dueDate,
		Image:   form.image,
		PDF:     form.pdf,
	}
	if form.completed != nil {
		in.Completed = *form.completed
	}

	todo, outcome, err := s.service.Create(r.Context(), in)
	s.writeWarnings(w, r, "", outcome)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrNotFound(w, r)
	if !ok {
		return
	}
	form, err := s.parseTodoForm(w, r)
	defer form.close()
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	todo, outcome, err := s.service.Update(r.Context(), id, TodoUpdateInput{
		Text:         form.text,
		DueDate:      form.dueDate,
		ClearDueDate: form.clearDueDate,
		Completed:    form.completed,
		Image:        form.image,
		PDF:          form.pdf,
	})
	s.writeWarnings(w, r, id, outcome)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, todo)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrNotFound(w, r)
	if !ok {
		return
	}
	outcome, err := s.service.Delete(r.Context(), id)
	s.writeWarnings(w, r, id, outcome)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeWarnings logs each cleanup failure and mirrors it into a Warning
// header. It must run before the status line is written.
func (s *Server) writeWarnings(w http.ResponseWriter, r *http.Request, id string, outcome Outcome) {
	for _, warning := range outcome.Warnings {
		fields := []any{"method", r.Method, "path", r.URL.Path, "error", warning}
		if id != "" {
			fields = append(fields, "todo_id", id)
		}
		if reqID := w.Header().Get(requestIDHeader); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		s.log().Warn("attachment cleanup failed", fields...)
		w.Header().Add(api.WarningHeader, api.FormatWarning(warning.Error()))
	}
}

func (s *Server) parseTodoForm(w http.ResponseWriter, r *http.Request) (*todoForm, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil && r.Header.Get("Content-Type") != "" {
		return nil, badRequest(fmt.Errorf("invalid content type"))
	}

	switch mediaType {
	case "multipart/form-data":
		return s.parseMultipartTodo(w, r)
	case "application/json", "":
		return parseJSONTodo(w, r)
	default:
		return nil, badRequest(fmt.Errorf("unsupported content type %q", mediaType))
	}
}

func (s *Server) parseMultipartTodo(w http.ResponseWriter, r *http.Request) (*todoForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MultipartMaxMemory); err != nil {
		return nil, classifyMultipartError(err)
	}

	form := &todoForm{multipart: r.MultipartForm}
	values := r.MultipartForm.Value

	if v, ok := values["text"]; ok && len(v) > 0 {
		text := v[0]
		form.text = &text
	}
	if v, ok := values["dueDate"]; ok && len(v) > 0 {
		if err := form.setDueDate(v[0]); err != nil {
			return form, err
		}
	}
	if v, ok := values["completed"]; ok && len(v) > 0 {
		completed, err := parseCompleted(v[0])
		if err != nil {
			return form, err
		}
		form.completed = &completed
	}

	for _, kind := range models.AttachmentKinds() {
		headers := r.MultipartForm.File[kind.FormField()]
		if len(headers) == 0 {
			continue
		}
		header := headers[0]
		if header.Filename == "" && header.Size == 0 {
			continue
		}
		file, err := header.Open()
		if err != nil {
			return form, badRequest(fmt.Errorf("read %s: %w", kind, err))
		}
		form.closers = append(form.closers, file)

		mf := &media.File{
			Kind:      kind,
			Filename:  strings.TrimSpace(header.Filename),
			MediaType: strings.TrimSpace(header.Header.Get("Content-Type")),
			Body:      file,
		}
		switch kind {
		case models.AttachmentKindImage:
			form.image = mf
		case models.AttachmentKindPDF:
			form.pdf = mf
		}
	}

	return form, nil
}

func parseJSONTodo(w http.ResponseWriter, r *http.Request) (*todoForm, error) {
	var payload todoJSONPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		if err == errEmptyBody {
			// No body sends no fields; create still requires text.
			return &todoForm{}, nil
		}
		return nil, err
	}

	form := &todoForm{text: payload.Text, completed: payload.Completed}
	if payload.DueDate != nil {
		if err := form.setDueDate(*payload.DueDate); err != nil {
			return form, err
		}
	}
	return form, nil
}

func (f *todoForm) setDueDate(raw string) error {
	due, err := parseDueDate(raw)
	if err != nil {
		return err
	}
	if due == nil {
		f.clearDueDate = true
		return nil
	}
	f.dueDate = due
	return nil
}
