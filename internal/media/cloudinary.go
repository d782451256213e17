package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	cldconfig "github.com/cloudinary/cloudinary-go/v2/config"

	"tasklet/internal/models"
)

const (
	defaultCloudinaryBase    = "https://api.cloudinary.com"
	defaultCloudinaryTimeout = 30 * time.Second
)

var versionSegment = regexp.MustCompile(`^v[0-9]+$`)

// CloudinaryOptions configures the remote media host client.
type CloudinaryOptions struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	BaseURL   string
	Timeout   time.Duration
}

// Cloudinary stores attachments on a Cloudinary cloud. Images go to the
// image resource type, PDFs to raw so the host never rasterizes them.
type Cloudinary struct {
	cld     *cloudinary.Cloudinary
	cloud   string
	folder  string
	timeout time.Duration
}

var _ Store = (*Cloudinary)(nil)

// NewCloudinary validates opts and returns a client.
func NewCloudinary(opts CloudinaryOptions) (*Cloudinary, error) {
	cloud := strings.TrimSpace(opts.CloudName)
	key := strings.TrimSpace(opts.APIKey)
	secret := strings.TrimSpace(opts.APISecret)
	if cloud == "" || key == "" || secret == "" {
		return nil, fmt.Errorf("cloudinary cloud name, api key, and api secret are required")
	}

	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = defaultCloudinaryBase
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid cloudinary api base: %w", err)
	}

	conf, err := cldconfig.NewFromParams(cloud, key, secret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config: %w", err)
	}
	conf.API.UploadPrefix = base
	cld, err := cloudinary.NewFromConfiguration(*conf)
	if err != nil {
		return nil, fmt.Errorf("cloudinary client: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultCloudinaryTimeout
	}
	return &Cloudinary{
		cld:     cld,
		cloud:   cloud,
		folder:  strings.Trim(strings.TrimSpace(opts.Folder), "/"),
		timeout: timeout,
	}, nil
}

// Upload sends the file and returns the secure delivery URL.
func (c *Cloudinary) Upload(ctx context.Context, f File) (string, error) {
	if f.Body == nil {
		return "", uploadErr(f, fmt.Errorf("file body is required"))
	}
	resource, err := resourceType(f.Kind)
	if err != nil {
		return "", uploadErr(f, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.cld.Upload.Upload(ctx, f.Body, uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: resource,
	})
	switch {
	case err != nil:
		return "", uploadErr(f, err)
	case res == nil:
		return "", uploadErr(f, errors.New("empty host response"))
	case res.Error.Message != "":
		return "", uploadErr(f, errors.New(res.Error.Message))
	case res.SecureURL == "":
		return "", uploadErr(f, errors.New("host response has no secure_url"))
	}
	return res.SecureURL, nil
}

// Delete destroys the resource behind a URL previously returned by Upload.
// Any result other than "ok" is a failure, including "not found".
func (c *Cloudinary) Delete(ctx context.Context, rawURL string) error {
	resource, publicID, err := c.parseURL(rawURL)
	if err != nil {
		return deletionErr(rawURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resource,
	})
	switch {
	case err != nil:
		return deletionErr(rawURL, err)
	case res == nil:
		return deletionErr(rawURL, errors.New("empty host response"))
	case res.Error.Message != "":
		return deletionErr(rawURL, errors.New(res.Error.Message))
	case res.Result != "ok":
		return deletionErr(rawURL, fmt.Errorf("destroy result %q", res.Result))
	}
	return nil
}

// parseURL extracts resource type and public id from a delivery URL of the
// form /<cloud>/<resource>/upload/[v<digits>/]<public_id>[.<ext>].
func (c *Cloudinary) parseURL(rawURL string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Path == "" {
		return "", "", fmt.Errorf("invalid media url")
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 4 || segments[0] != c.cloud || segments[2] != "upload" {
		return "", "", fmt.Errorf("url does not belong to cloud %q", c.cloud)
	}
	resource := segments[1]
	if resource != "image" && resource != "raw" && resource != "video" {
		return "", "", fmt.Errorf("unsupported resource type %q", resource)
	}

	rest := segments[3:]
	if len(rest) > 1 && versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}
	publicID := strings.Join(rest, "/")
	if resource != "raw" {
		publicID = strings.TrimSuffix(publicID, path.Ext(publicID))
	}
	if publicID == "" {
		return "", "", fmt.Errorf("url has no public id")
	}
	return resource, publicID, nil
}

func resourceType(kind models.AttachmentKind) (string, error) {
	switch kind {
	case models.AttachmentKindImage:
		return "image", nil
	case models.AttachmentKindPDF:
		return "raw", nil
	default:
		return "", fmt.Errorf("invalid attachment kind: %q", kind)
	}
}
