package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"tasklet/internal/models"
)

// RoutePrefix is the URL path under which Local content is served.
const RoutePrefix = "/media/"

const maxExtLength = 10

// Local stores attachments in a directory tree and hands out URLs served by
// the API server itself.
type Local struct {
	root      string
	publicURL string
}

var _ Store = (*Local)(nil)

// NewLocal creates a local store rooted at root. publicURL is the externally
// reachable base of the API server.
func NewLocal(root, publicURL string) (*Local, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("media root is required")
	}
	publicURL = strings.TrimRight(strings.TrimSpace(publicURL), "/")
	if publicURL == "" {
		return nil, fmt.Errorf("media public url is required")
	}
	if _, err := url.ParseRequestURI(publicURL); err != nil {
		return nil, fmt.Errorf("invalid media public url: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, "tmp"), 0o755); err != nil {
		return nil, err
	}
	return &Local{root: abs, publicURL: publicURL}, nil
}

// Upload streams the body to disk while hashing it. Every call yields a new
// key, even for identical content, so deleting one todo's file never affects
// another todo.
func (l *Local) Upload(ctx context.Context, f File) (string, error) {
	if f.Body == nil {
		return "", uploadErr(f, fmt.Errorf("file body is required"))
	}
	if !models.IsValidAttachmentKind(f.Kind) {
		return "", uploadErr(f, fmt.Errorf("invalid attachment kind: %q", f.Kind))
	}
	if err := ctx.Err(); err != nil {
		return "", uploadErr(f, err)
	}

	tmp, err := os.CreateTemp(filepath.Join(l.root, "tmp"), "upload-*")
	if err != nil {
		return "", uploadErr(f, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), f.Body); err != nil {
		cleanup()
		return "", uploadErr(f, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", uploadErr(f, err)
	}

	suffix, err := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 10)
	if err != nil {
		cleanup()
		return "", uploadErr(f, err)
	}
	digest := hex.EncodeToString(h.Sum(nil))
	key := fmt.Sprintf("%s/%s/%s-%s%s", f.Kind, digest[0:2], digest, suffix, extension(f.Filename))

	dst := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		cleanup()
		return "", uploadErr(f, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		cleanup()
		return "", uploadErr(f, err)
	}

	return l.publicURL + RoutePrefix + key, nil
}

// Delete removes the file behind url. Missing files are ignored.
func (l *Local) Delete(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return deletionErr(rawURL, err)
	}
	key, err := l.KeyFromURL(rawURL)
	if err != nil {
		return deletionErr(rawURL, err)
	}
	p, err := l.pathFromKey(key)
	if err != nil {
		return deletionErr(rawURL, err)
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return deletionErr(rawURL, err)
	}
	return nil
}

// Open returns the content stored under key.
func (l *Local) Open(ctx context.Context, key string) (*os.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := l.pathFromKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// KeyFromURL maps a URL handed out by Upload back to its storage key.
func (l *Local) KeyFromURL(rawURL string) (string, error) {
	prefix := l.publicURL + RoutePrefix
	if !strings.HasPrefix(rawURL, prefix) {
		return "", fmt.Errorf("url is not served by this media store")
	}
	return strings.TrimPrefix(rawURL, prefix), nil
}

func (l *Local) pathFromKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("media key is required")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("media key must be relative")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.Contains(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid media key")
	}
	if first := strings.SplitN(filepath.ToSlash(clean), "/", 2)[0]; !models.IsValidAttachmentKind(models.AttachmentKind(first)) {
		return "", fmt.Errorf("invalid media key")
	}
	return filepath.Join(l.root, clean), nil
}

func extension(filename string) string {
	ext := strings.ToLower(path.Ext(filepath.Base(filename)))
	if len(ext) < 2 || len(ext) > maxExtLength {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
