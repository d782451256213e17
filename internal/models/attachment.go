package models

// AttachmentKind describes which attachment slot of a todo a file fills.
type AttachmentKind string

const (
	AttachmentKindImage AttachmentKind = "image"
	AttachmentKindPDF   AttachmentKind = "pdf"
)

var attachmentKinds = []AttachmentKind{AttachmentKindImage, AttachmentKindPDF}

// AttachmentKinds returns the supported kinds in a stable order.
func AttachmentKinds() []AttachmentKind {
	out := make([]AttachmentKind, len(attachmentKinds))
	copy(out, attachmentKinds)
	return out
}

func IsValidAttachmentKind(kind AttachmentKind) bool {
	for _, k := range attachmentKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// FormField is the multipart field name carrying a file of this kind.
func (k AttachmentKind) FormField() string {
	return string(k)
}

// DefaultMediaType is used when the uploader declares nothing better.
func (k AttachmentKind) DefaultMediaType() string {
	switch k {
	case AttachmentKindPDF:
		return "application/pdf"
	case AttachmentKindImage:
		return "image/*"
	default:
		return "application/octet-stream"
	}
}
