// Package media uploads todo attachments to a media host and removes them.
package media

import (
	"context"
	"fmt"
	"io"

	"tasklet/internal/models"
)

// File is one attachment handed to Upload.
type File struct {
	Kind      models.AttachmentKind
	Filename  string
	MediaType string
	Body      io.Reader
}

// Store is the attachment host abstraction used by the todo service.
// Implementations are stateless apart from configuration and safe for
// concurrent use.
type Store interface {
	Upload(ctx context.Context, f File) (string, error)
	Delete(ctx context.Context, url string) error
}

// UploadError reports that a file could not be stored on the host.
type UploadError struct {
	Kind     models.AttachmentKind
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("upload %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("upload %s %q: %v", e.Kind, e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// DeletionError reports that a hosted file could not be removed.
type DeletionError struct {
	URL string
	Err error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.URL, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }

func uploadErr(f File, err error) error {
	return &UploadError{Kind: f.Kind, Filename: f.Filename, Err: err}
}

func deletionErr(url string, err error) error {
	return &DeletionError{URL: url, Err: err}
}
