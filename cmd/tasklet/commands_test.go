package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"tasklet/internal/api"
	"tasklet/internal/config"
	"tasklet/internal/media"
	"tasklet/internal/models"
	"tasklet/internal/server"
	"tasklet/internal/store"
)

type cliEnv struct {
	cfg    *config.Config
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	local, err := media.NewLocal(t.TempDir(), "http://media.test")
	if err != nil {
		t.Fatalf("new local media: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(server.New("127.0.0.1:0", st, local, logger, server.Options{}).Handler())
	t.Cleanup(ts.Close)

	cfg := config.Default()
	cfg.APIURL = ts.URL
	cfg.DBURL = filepath.Join(t.TempDir(), "unused.db")

	env := &cliEnv{cfg: &cfg, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	prevOut, prevErr, prevFormatter, prevLogger := stdout, stderr, outputFormatter, slog.Default()
	stdout, stderr = env.out, env.errOut
	t.Cleanup(func() {
		stdout, stderr, outputFormatter = prevOut, prevErr, prevFormatter
		slog.SetDefault(prevLogger)
	})
	t.Setenv(logLevelEnvKey, "error")
	return env
}

func (e *cliEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	e.out.Reset()
	e.errOut.Reset()
	cmd := newRootCmd(e.cfg)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	if err := e.run(t, args...); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return e.out.String()
}

func (e *cliEnv) decodeTodo(t *testing.T, args ...string) models.Todo {
	t.Helper()
	var todo models.Todo
	if err := json.Unmarshal([]byte(e.mustRun(t, args...)), &todo); err != nil {
		t.Fatalf("decode %v output: %v", args, err)
	}
	return todo
}

func TestCLITodoLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	created := env.decodeTodo(t, "add", "Buy", "milk", "--due", "2024-06-01", "--json")
	if created.Text != "Buy milk" || created.Completed || created.DueDate == nil {
		t.Fatalf("unexpected created todo: %+v", created)
	}

	out := env.mustRun(t, "list")
	if !strings.Contains(out, created.ID) || !strings.Contains(out, "○") {
		t.Fatalf("expected todo in list, got %q", out)
	}

	toggled := env.decodeTodo(t, "toggle", created.ID, "--json")
	if !toggled.Completed || toggled.Text != created.Text {
		t.Fatalf("expected only completed to flip: %+v", toggled)
	}

	edited := env.decodeTodo(t, "edit", created.ID, "--text", "Buy oat milk", "--clear-due", "--json")
	if edited.Text != "Buy oat milk" || edited.DueDate != nil || !edited.Completed {
		t.Fatalf("unexpected edit result: %+v", edited)
	}

	out = env.mustRun(t, "rm", created.ID)
	if out != "deleted "+created.ID+"\n" {
		t.Fatalf("unexpected rm output %q", out)
	}

	err := env.run(t, "show", created.ID)
	if !api.IsNotFound(err) {
		t.Fatalf("expected not found after rm, got %v", err)
	}
}

func TestCLIAddWithAttachment(t *testing.T) {
	env := newCLIEnv(t)
	img := filepath.Join(t.TempDir(), "cat.png")
	if err := os.WriteFile(img, []byte("pixels"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	todo := env.decodeTodo(t, "add", "With photo", "--image", img, "--json")
	if !strings.HasPrefix(todo.ImageURL, "http://media.test/media/image/") {
		t.Fatalf("unexpected image url %q", todo.ImageURL)
	}

	out := env.mustRun(t, "show", todo.ID)
	if !strings.Contains(out, "image: "+todo.ImageURL) {
		t.Fatalf("expected image line in detail, got %q", out)
	}
}

func TestCLIListYAML(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun(t, "add", "first")
	time.Sleep(2 * time.Millisecond)
	env.mustRun(t, "add", "second")

	out := env.mustRun(t, "list", "--output", "yaml")
	first := strings.Index(out, "text: first")
	second := strings.Index(out, "text: second")
	if first < 0 || second < 0 || second > first {
		t.Fatalf("expected newest first yaml list, got:\n%s", out)
	}
}

func TestCLIEditRequiresChange(t *testing.T) {
	env := newCLIEnv(t)
	err := env.run(t, "edit", "abc")
	if err == nil || !strings.Contains(err.Error(), "nothing to update") {
		t.Fatalf("expected nothing-to-update error, got %v", err)
	}
}

func TestCLIEditAttachmentOnly(t *testing.T) {
	env := newCLIEnv(t)
	created := env.decodeTodo(t, "add", "Needs a pdf", "--json")
	doc := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(doc, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}

	updated := env.decodeTodo(t, "edit", created.ID, "--pdf", doc, "--json")
	if updated.PDFURL == "" || updated.Text != "Needs a pdf" {
		t.Fatalf("expected pdf attached, got %+v", updated)
	}
}

func TestCLIAddRejectsBadDueDate(t *testing.T) {
	env := newCLIEnv(t)
	err := env.run(t, "add", "x", "--due", "someday")
	if err == nil || !strings.Contains(err.Error(), "invalid due date") {
		t.Fatalf("expected due date error, got %v", err)
	}
}

func TestCLIValidationError(t *testing.T) {
	env := newCLIEnv(t)
	err := env.run(t, "add", " ")
	if !api.IsBadRequest(err) {
		t.Fatalf("expected bad request for blank text, got %v", err)
	}
}

func TestBuildUpdateRequest(t *testing.T) {
	newCmd := func() (*cobra.Command, *editOptions) {
		opts := &editOptions{}
		cmd := &cobra.Command{Use: "edit"}
		cmd.Flags().StringVar(&opts.text, "text", "", "")
		cmd.Flags().StringVar(&opts.due, "due", "", "")
		cmd.Flags().BoolVar(&opts.clearDue, "clear-due", false, "")
		cmd.Flags().BoolVar(&opts.done, "done", false, "")
		return cmd, opts
	}

	cmd, opts := newCmd()
	if err := cmd.Flags().Parse([]string{"--done=false"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	req, err := buildUpdateRequest(cmd, *opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.Completed == nil || *req.Completed || req.Text != nil || req.DueDate != nil {
		t.Fatalf("expected only completed=false, got %+v", req)
	}

	cmd, opts = newCmd()
	if err := cmd.Flags().Parse([]string{"--text", "", "--due", "2024-01-02"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	req, err = buildUpdateRequest(cmd, *opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.Text == nil || *req.Text != "" || req.DueDate == nil || req.Completed != nil {
		t.Fatalf("expected explicit empty text and due date, got %+v", req)
	}
}

func TestFormatTodoLine(t *testing.T) {
	prev := now
	now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })

	due := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	line := formatTodoLine(models.Todo{ID: "abc", Text: "Pay rent", DueDate: &due, PDFURL: "https://x/y.pdf"})
	if line != "○ abc - Pay rent (due 3 days from now) [1 attachment]" {
		t.Fatalf("unexpected line %q", line)
	}

	done := formatTodoLine(models.Todo{ID: "def", Text: "Done", Completed: true})
	if done != "✓ def - Done" {
		t.Fatalf("unexpected line %q", done)
	}
}

func TestServerEnvPinsSettings(t *testing.T) {
	cfg := config.Default()
	cfg.DBURL = "/data/todos.db"
	cfg.Media.Root = "/data/media"
	env := serverEnv(&cfg)
	for _, want := range []string{"TASKLET_DB_URL=/data/todos.db", "TASKLET_MEDIA_ROOT=/data/media", "TASKLET_API_URL=" + config.DefaultAPIURL} {
		found := false
		for _, kv := range env {
			if kv == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %q in %v", want, env)
		}
	}
}

func TestCLIConfigList(t *testing.T) {
	env := newCLIEnv(t)
	env.cfg.Media.APISecret = "shh"

	out := env.mustRun(t, "config", "list")
	if !strings.Contains(out, "api_url = "+env.cfg.APIURL+"\n") {
		t.Fatalf("expected api_url line, got:\n%s", out)
	}
	if strings.Contains(out, "shh") || !strings.Contains(out, "media.api_secret = ********") {
		t.Fatalf("expected masked secret, got:\n%s", out)
	}

	if err := env.run(t, "config", "get", "nope"); err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}
