package main

import (
	"context"
	"errors"
	"net"

	"tasklet/internal/api"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "request_too_large":
			lines = append(lines, "hint: attachments exceed uploads.max_upload_bytes on the server.")
		case "upload_failed":
			lines = append(lines, "hint: the media host rejected the file; check the server's media settings.")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify TASKLET_API_URL points to a tasklet server.")
		}
		if apiErr.Status >= 500 {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase TASKLET_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure a tasklet server is running at TASKLET_API_URL.",
			"hint: start local server manually with: tasklet srv",
			"hint: you can increase TASKLET_HTTP_TIMEOUT for slower environments.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
