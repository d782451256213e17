package api

import (
	"io"
	"time"

	"tasklet/internal/models"
)

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// TodoCreateRequest holds the non-file fields of a create call.
type TodoCreateRequest struct {
	Text      string     `json:"text"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
}

// TodoUpdateRequest holds the fields to change. Nil fields are not sent.
type TodoUpdateRequest struct {
	Text         *string    `json:"text,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"-"`
	Completed    *bool      `json:"completed,omitempty"`
}

// IsEmpty reports whether the update changes no field.
func (r TodoUpdateRequest) IsEmpty() bool {
	return r.Text == nil && r.DueDate == nil && !r.ClearDueDate && r.Completed == nil
}

// Attachment is a file sent along with a create or update.
type Attachment struct {
	Filename string
	Body     io.Reader
}

// Attachments maps the optional files of a request.
type Attachments struct {
	Image *Attachment
	PDF   *Attachment
}

func (a Attachments) forKind(kind models.AttachmentKind) *Attachment {
	switch kind {
	case models.AttachmentKindImage:
		return a.Image
	case models.AttachmentKindPDF:
		return a.PDF
	default:
		return nil
	}
}

// IsEmpty reports whether no file is attached.
func (a Attachments) IsEmpty() bool {
	return a.Image == nil && a.PDF == nil
}

// TodoResponse is a todo returned by a write, with any cleanup warnings the
// server reported through Warning headers.
type TodoResponse struct {
	models.Todo
	Warnings []string `json:"-"`
}
