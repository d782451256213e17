package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"tasklet/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "TASKLET_HTTP_TIMEOUT"
	maxErrorBodyBytes  = 64 << 10
)

// Client is a simple HTTP client for the tasklet API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeoutFromEnv()},
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	return err
}

func (c *Client) ListTodos(ctx context.Context) ([]models.Todo, error) {
	resp := []models.Todo{}
	_, err := c.do(ctx, http.MethodGet, "/api/todos", nil, &resp)
	return resp, err
}

func (c *Client) GetTodo(ctx context.Context, id string) (models.Todo, error) {
	var resp models.Todo
	_, err := c.do(ctx, http.MethodGet, todoPath(id), nil, &resp)
	return resp, err
}

// CreateTodo sends a multipart create with any attached files.
func (c *Client) CreateTodo(ctx context.Context, req TodoCreateRequest, files Attachments) (TodoResponse, error) {
	fields := map[string]string{"text": req.Text}
	if req.DueDate != nil {
		fields["dueDate"] = req.DueDate.UTC().Format(time.RFC3339)
	}
	if req.Completed != nil {
		fields["completed"] = strconv.FormatBool(*req.Completed)
	}

	var resp TodoResponse
	header, err := c.doMultipart(ctx, http.MethodPost, "/api/todos", fields, files, &resp.Todo)
	resp.Warnings = ParseWarnings(header)
	return resp, err
}

// UpdateTodo sends a multipart update carrying only the provided fields.
func (c *Client) UpdateTodo(ctx context.Context, id string, req TodoUpdateRequest, files Attachments) (TodoResponse, error) {
	fields := map[string]string{}
	if req.Text != nil {
		fields["text"] = *req.Text
	}
	if req.ClearDueDate {
		fields["dueDate"] = ""
	} else if req.DueDate != nil {
		fields["dueDate"] = req.DueDate.UTC().Format(time.RFC3339)
	}
	if req.Completed != nil {
		fields["completed"] = strconv.FormatBool(*req.Completed)
	}

	var resp TodoResponse
	header, err := c.doMultipart(ctx, http.MethodPut, todoPath(id), fields, files, &resp.Todo)
	resp.Warnings = ParseWarnings(header)
	return resp, err
}

// DeleteTodo removes a todo and returns any cleanup warnings.
func (c *Client) DeleteTodo(ctx context.Context, id string) ([]string, error) {
	header, err := c.do(ctx, http.MethodDelete, todoPath(id), nil, nil)
	return ParseWarnings(header), err
}

func todoPath(id string) string {
	return "/api/todos/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, files Attachments, out any) (http.Header, error) {
	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeMultipart(mw, fields, files))
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) (http.Header, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return resp.Header, decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.Header, nil
	}
	return resp.Header, json.NewDecoder(resp.Body).Decode(out)
}

func writeMultipart(mw *multipart.Writer, fields map[string]string, files Attachments) error {
	for _, key := range []string{"text", "dueDate", "completed"} {
		value, ok := fields[key]
		if !ok {
			continue
		}
		if err := mw.WriteField(key, value); err != nil {
			return err
		}
	}
	for _, kind := range models.AttachmentKinds() {
		file := files.forKind(kind)
		if file == nil || file.Body == nil {
			continue
		}
		filename := file.Filename
		if filename == "" {
			filename = string(kind)
		}
		part, err := mw.CreateFormFile(kind.FormField(), filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, file.Body); err != nil {
			return err
		}
	}
	return mw.Close()
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodyBytes)).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Code
		apiErr.ErrorCode = errResp.ErrorCode
		apiErr.Message = errResp.Error
		return apiErr
	}
	apiErr.Message = "api error: " + resp.Status
	return apiErr
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
