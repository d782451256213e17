package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"tasklet/internal/media"
	"tasklet/internal/store"
)

const (
	allowRemoteEnvKey = "TASKLET_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 60 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second

	defaultMaxUploadBytes     = 25 << 20
	defaultMultipartMaxMemory = 8 << 20
)

// Options tunes request handling.
type Options struct {
	MaxUploadBytes     int64
	MultipartMaxMemory int64
}

func (o Options) withDefaults() Options {
	if o.MaxUploadBytes <= 0 {
		o.MaxUploadBytes = defaultMaxUploadBytes
	}
	if o.MultipartMaxMemory <= 0 {
		o.MultipartMaxMemory = defaultMultipartMaxMemory
	}
	if o.MultipartMaxMemory > o.MaxUploadBytes {
		o.MultipartMaxMemory = o.MaxUploadBytes
	}
	return o
}

// Server wraps HTTP handlers for the tasklet API.
type Server struct {
	addr    string
	store   store.TodoStore
	media   media.Store
	service *TodoService
	logger  *slog.Logger
	opts    Options
}

// New creates a new server instance. The store and media handles are owned
// by the caller.
func New(addr string, todoStore store.TodoStore, mediaStore media.Store, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		addr:    addr,
		store:   todoStore,
		media:   mediaStore,
		service: NewTodoService(todoStore, mediaStore, logger),
		logger:  logger,
		opts:    opts.withDefaults(),
	}
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.routes())
}

// ListenAndServe starts the HTTP server and shuts it down when ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
