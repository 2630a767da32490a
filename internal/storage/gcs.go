package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	gcs "cloud.google.com/go/storage"
)

// GCSStorage keeps post images in a Google Cloud Storage bucket.
// Objects are served from the public storage.googleapis.com host, so the
// bucket must grant allUsers read access.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

// NewGCSStorage uses Application Default Credentials and checks the bucket is reachable.
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	_, err = client.Bucket(bucket).Attrs(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("bucket %q is not accessible: %w", bucket, err)
	}

	slog.Info("initializing GCS storage", "bucket", bucket)
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) Save(ctx context.Context, path string, file io.Reader, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to upload to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS upload: %w", err)
	}

	return nil
}

func (s *GCSStorage) Delete(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := s.client.Bucket(s.bucket).Object(path).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete from GCS: %w", err)
	}
	return nil
}

func (s *GCSStorage) URL(path string) string {
	return gcsPublicURL(s.bucket, path)
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func gcsPublicURL(bucket, path string) string {
	u := url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + bucket + "/" + path}
	return u.String()
}
