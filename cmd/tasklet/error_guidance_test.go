package main

import (
	"context"
	"fmt"
	"net"
	"testing"

	"tasklet/internal/api"
)

func TestFormatCLIError_NetworkGuidance(t *testing.T) {
	err := &net.DNSError{Err: "dial tcp: connection refused", Name: "127.0.0.1", IsTemporary: true}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: ensure a tasklet server is running at TASKLET_API_URL.") {
		t.Fatalf("expected connectivity guidance, got %v", lines)
	}
	if !containsLine(lines, "hint: start local server manually with: tasklet srv") {
		t.Fatalf("expected manual-start guidance, got %v", lines)
	}
}

func TestFormatCLIError_TimeoutGuidance(t *testing.T) {
	err := fmt.Errorf("list todos: %w", context.DeadlineExceeded)
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: request timed out; check server health or increase TASKLET_HTTP_TIMEOUT.") {
		t.Fatalf("expected timeout guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIUnknownServiceGuidance(t *testing.T) {
	err := &api.APIError{Status: 404, Message: "api error: 404 Not Found"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: verify TASKLET_API_URL points to a tasklet server.") {
		t.Fatalf("expected api-url guidance, got %v", lines)
	}
}

func TestFormatCLIError_APIInternalGuidance(t *testing.T) {
	err := &api.APIError{Status: 500, Code: "internal", Message: "internal error"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: server returned an internal error; check server logs for details.") {
		t.Fatalf("expected internal-error guidance, got %v", lines)
	}
}

func TestFormatCLIError_UploadGuidance(t *testing.T) {
	err := &api.APIError{Status: 400, Code: "upload_failed", Message: "upload image: host down"}
	lines := formatCLIError(err)
	if !containsLine(lines, "hint: the media host rejected the file; check the server's media settings.") {
		t.Fatalf("expected upload guidance, got %v", lines)
	}
}

func TestFormatCLIError_PlainError(t *testing.T) {
	lines := formatCLIError(fmt.Errorf("nothing to update"))
	if len(lines) != 1 || lines[0] != "nothing to update" {
		t.Fatalf("expected the bare message, got %v", lines)
	}
	if formatCLIError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func containsLine(lines []string, expected string) bool {
	for _, line := range lines {
		if line == expected {
			return true
		}
	}
	return false
}
