package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voceapacientilor/vocea/internal/config"
)

func TestS3BaseURL(t *testing.T) {
	assert.Equal(t, "https://post-images.s3.eu-central-1.amazonaws.com",
		s3BaseURL(S3Config{Bucket: "post-images", Region: "eu-central-1"}))
	assert.Equal(t, "http://localhost:9000/post-images",
		s3BaseURL(S3Config{Bucket: "post-images", Endpoint: "http://localhost:9000/"}))
}

func TestGCSPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/post-images/posts/abc-1700000000000.png",
		gcsPublicURL("post-images", "posts/abc-1700000000000.png"))
	assert.Equal(t, "https://storage.googleapis.com/b/posts/a%20b.jpg", gcsPublicURL("b", "posts/a b.jpg"))
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(&config.Config{StorageDriver: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp")
}

func TestOrigin(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com", Origin(&config.Config{StorageDriver: "gcs", GCSBucket: "b"}))
	assert.Equal(t, "https://post-images.s3.eu-central-1.amazonaws.com",
		Origin(&config.Config{StorageDriver: "s3", S3Bucket: "post-images", S3Region: "eu-central-1"}))
	assert.Equal(t, "http://localhost:9000",
		Origin(&config.Config{StorageDriver: "s3", S3Bucket: "post-images", S3Endpoint: "http://localhost:9000"}))
}
