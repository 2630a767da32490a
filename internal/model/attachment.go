package model

import "time"

const (
	MaxAttachmentsPerPost = 5
	MaxAttachmentSize     = 5 << 20 // 5MB
)

type Attachment struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	FilePath  string    `db:"file_path"` // object key in the post-images bucket
	FileName  string    `db:"file_name"` // original upload name
	FileSize  int64     `db:"file_size"`
	CreatedAt time.Time `db:"created_at"`

	// Resolved by the storage backend, not stored
	URL string `db:"-"`
}
