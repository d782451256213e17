package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"tasklet/internal/media"
	"tasklet/internal/models"
	"tasklet/internal/store"
)

// recordingMedia is an in-memory media.Store that records every call.
type recordingMedia struct {
	mu        sync.Mutex
	uploads   []media.File
	contents  []string
	deletes   []string
	seq       int
	uploadErr map[models.AttachmentKind]error
	deleteErr error
}

func newRecordingMedia() *recordingMedia {
	return &recordingMedia{uploadErr: map[models.AttachmentKind]error{}}
}

func (m *recordingMedia) Upload(ctx context.Context, f media.File) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(f.Body)
	m.uploads = append(m.uploads, f)
	m.contents = append(m.contents, string(data))
	if err := m.uploadErr[f.Kind]; err != nil {
		return "", &media.UploadError{Kind: f.Kind, Filename: f.Filename, Err: err}
	}
	m.seq++
	return fmt.Sprintf("https://media.test/%s/%d-%s", f.Kind, m.seq, f.Filename), nil
}

func (m *recordingMedia) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, url)
	if m.deleteErr != nil {
		return &media.DeletionError{URL: url, Err: m.deleteErr}
	}
	return nil
}

func (m *recordingMedia) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.uploads) + len(m.deletes)
}

// countingStore wraps a TodoStore and counts writes.
type countingStore struct {
	store.TodoStore
	mu      sync.Mutex
	updates int
}

func (c *countingStore) UpdateTodo(ctx context.Context, id string, patch store.TodoPatch) (*models.Todo, error) {
	c.mu.Lock()
	c.updates++
	c.mu.Unlock()
	return c.TodoStore.UpdateTodo(ctx, id, patch)
}

func (c *countingStore) updateCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

type testEnv struct {
	srv   *Server
	store *countingStore
	media *recordingMedia
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := &countingStore{TodoStore: openTestStore(t)}
	m := newRecordingMedia()
	return &testEnv{
		srv:   New("127.0.0.1:0", st, m, discardLogger(), Options{}),
		store: st,
		media: m,
	}
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(w, req)
	return w
}

type multipartFile struct {
	field    string
	filename string
	content  string
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...multipartFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.WriteString(part, f.content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeTodo(t *testing.T, w *httptest.ResponseRecorder) models.Todo {
	t.Helper()
	var todo models.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &todo); err != nil {
		t.Fatalf("decode todo: %v (%s)", err, w.Body.String())
	}
	return todo
}

func mustCreate(t *testing.T, e *testEnv, fields map[string]string, files ...multipartFile) models.Todo {
	t.Helper()
	w := e.serve(multipartRequest(t, http.MethodPost, "/api/todos", fields, files...))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	return decodeTodo(t, w)
}

func hasPrefix(values []string, prefix string) bool {
	for _, v := range values {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}
