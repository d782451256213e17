package models

import "time"

// Todo is a single task record.
type Todo struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	PDFURL    string     `json:"pdfUrl,omitempty"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// AttachmentURL returns the stored URL for kind, or "" when none is set.
func (t Todo) AttachmentURL(kind AttachmentKind) string {
	switch kind {
	case AttachmentKindImage:
		return t.ImageURL
	case AttachmentKindPDF:
		return t.PDFURL
	default:
		return ""
	}
}

// AttachmentURLs returns every attachment URL the todo owns, image first.
func (t Todo) AttachmentURLs() []string {
	urls := make([]string, 0, 2)
	for _, kind := range AttachmentKinds() {
		if url := t.AttachmentURL(kind); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}
