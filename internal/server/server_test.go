package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestListenAddrRemoteGuard(t *testing.T) {
	t.Run("allows loopback", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		addr, err := ListenAddr("http://127.0.0.1:7420")
		if err != nil {
			t.Fatalf("expected loopback to be allowed, got error: %v", err)
		}
		if addr != "127.0.0.1:7420" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})

	t.Run("blocks non-loopback by default", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "")
		_, err := ListenAddr("http://0.0.0.0:7420")
		if err == nil {
			t.Fatal("expected error for non-loopback listen host")
		}
	})

	t.Run("allows non-loopback when explicitly enabled", func(t *testing.T) {
		t.Setenv(allowRemoteEnvKey, "true")
		addr, err := ListenAddr("http://0.0.0.0:7420")
		if err != nil {
			t.Fatalf("expected allow-remote to permit host, got error: %v", err)
		}
		if addr != "0.0.0.0:7420" {
			t.Fatalf("unexpected addr: %s", addr)
		}
	})

	t.Run("requires url", func(t *testing.T) {
		if _, err := ListenAddr(""); err == nil {
			t.Fatal("expected error for empty api url")
		}
	})
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	if opts.MaxUploadBytes != defaultMaxUploadBytes || opts.MultipartMaxMemory != defaultMultipartMaxMemory {
		t.Fatalf("unexpected defaults: %+v", opts)
	}

	opts = Options{MaxUploadBytes: 1024, MultipartMaxMemory: 4096}.withDefaults()
	if opts.MultipartMaxMemory != 1024 {
		t.Fatalf("expected memory capped at upload limit, got %d", opts.MultipartMaxMemory)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w := e.serve(httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	st := openTestStore(t)
	srv := New("127.0.0.1:0", st, newRecordingMedia(), discardLogger(), Options{})
	st.Close()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for closed store, got %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	e := newTestEnv(t)
	w := e.serve(httptest.NewRequest(http.MethodGet, "/api/todos", nil))
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header")
	}
	other := e.serve(httptest.NewRequest(http.MethodGet, "/api/todos", nil))
	if other.Header().Get(requestIDHeader) == w.Header().Get(requestIDHeader) {
		t.Fatal("expected unique request ids")
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRequestIDHeaderKeepsClientUUID(t *testing.T) {
	e := newTestEnv(t)
	const id = "5f2b8c1e-3a4d-4e6f-9b0a-1c2d3e4f5a6b"

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set(requestIDHeader, id)
	if got := e.serve(req).Header().Get(requestIDHeader); got != id {
		t.Fatalf("expected %s, got %q", id, got)
	}

	junk := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	junk.Header.Set(requestIDHeader, "not-a-uuid")
	if got := e.serve(junk).Header().Get(requestIDHeader); got == "" || got == "not-a-uuid" {
		t.Fatalf("expected a generated id, got %q", got)
	}
}
