package models

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeText(t *testing.T) {
	got, err := NormalizeText("  Buy milk \n")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != "Buy milk" {
		t.Fatalf("expected trimmed text, got %q", got)
	}

	if _, err := NormalizeText("   "); err == nil {
		t.Fatal("expected empty text error")
	}
	if _, err := NormalizeText(strings.Repeat("x", TextMaxLength+1)); err == nil {
		t.Fatal("expected too long text error")
	}
}

func TestTodoAttachmentURLs(t *testing.T) {
	todo := Todo{ID: "a", Text: "x", PDFURL: "https://cdn/p.pdf", CreatedAt: time.Now()}
	urls := todo.AttachmentURLs()
	if len(urls) != 1 || urls[0] != "https://cdn/p.pdf" {
		t.Fatalf("expected only pdf url, got %#v", urls)
	}

	todo.ImageURL = "https://cdn/i.png"
	urls = todo.AttachmentURLs()
	if len(urls) != 2 || urls[0] != "https://cdn/i.png" {
		t.Fatalf("expected image first, got %#v", urls)
	}
	if todo.AttachmentURL(AttachmentKind("other")) != "" {
		t.Fatal("expected empty url for unknown kind")
	}
}

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("2024-06-01")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if !got.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
	if FormatDueDate(got) != "2024-06-01" {
		t.Fatalf("expected date-only format, got %q", FormatDueDate(got))
	}

	got, err = ParseDueDate(" 2024-06-01T10:30:00+02:00 ")
	if err != nil {
		t.Fatalf("parse rfc3339: %v", err)
	}
	if FormatDueDate(got) != "2024-06-01T08:30:00Z" {
		t.Fatalf("expected UTC RFC3339, got %q", FormatDueDate(got))
	}

	for _, raw := range []string{"", "next week", "01/06/2024"} {
		if _, err := ParseDueDate(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}
