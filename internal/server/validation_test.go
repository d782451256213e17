package server

import (
	"testing"
	"time"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"V1StGXR8_Z5jdHi6B-myT", true},
		{"65f0c2a9e4b0a1b2c3d4e5f6", true},
		{"", false},
		{"has space", false},
		{"semi;colon", false},
		{"a/b", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := validateID(tt.id)
			if got != tt.want {
				t.Fatalf("validateID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestParseDueDate(t *testing.T) {
	tests := []struct {
		input   string
		want    *time.Time
		wantErr bool
	}{
		{input: "", want: nil},
		{input: "  ", want: nil},
		{input: "2024-06-01", want: ptrTime(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))},
		{input: "2024-06-01T10:30:00+02:00", want: ptrTime(time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC))},
		{input: "June 1st", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseDueDate(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseDueDate(%q): expected error", tt.input)
			}
			if errorNumericCode(400, err) != ErrCodeInvalidTime {
				t.Fatalf("parseDueDate(%q): expected invalid_time code, got %d", tt.input, errorNumericCode(400, err))
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseDueDate(%q): %v", tt.input, err)
		}
		if (got == nil) != (tt.want == nil) || got != nil && !got.Equal(*tt.want) {
			t.Fatalf("parseDueDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseCompleted(t *testing.T) {
	for _, in := range []string{"true", "1", "TRUE", " false "} {
		if _, err := parseCompleted(in); err != nil {
			t.Fatalf("parseCompleted(%q): %v", in, err)
		}
	}
	if _, err := parseCompleted("yes"); err == nil {
		t.Fatal("expected error for yes")
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
