package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/voceapacientilor/vocea/internal/config"
)

// Storage is the object store holding post images.
type Storage interface {
	// Save stores the content of file at path
	Save(ctx context.Context, path string, file io.Reader, contentType string) error

	// Delete removes the object at path
	Delete(ctx context.Context, path string) error

	// URL returns a URL a browser can load the object from
	URL(path string) string

	Close() error
}

// New builds the backend selected by STORAGE_DRIVER.
func New(c *config.Config) (Storage, error) {
	switch c.StorageDriver {
	case "", "s3":
		return newS3FromConfig(c)
	case "gcs":
		return NewGCSStorage(context.Background(), c.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

// Origin is the scheme and host images are served from, for the CSP img-src directive.
func Origin(c *config.Config) string {
	if c.StorageDriver == "gcs" {
		return "https://storage.googleapis.com"
	}

	base := s3BaseURL(S3Config{Bucket: c.S3Bucket, Region: c.S3Region, Endpoint: c.S3Endpoint})
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
