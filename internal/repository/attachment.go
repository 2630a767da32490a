package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/voceapacientilor/vocea/internal/model"
)

type AttachmentRepository interface {
	Create(attachment *model.Attachment) error
	ByPostID(postID string) ([]*model.Attachment, error)
}

type attachmentRepository struct {
	db *sqlx.DB
}

func NewAttachmentRepository(db *sqlx.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(attachment *model.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = uuid.New().String()
	}
	if attachment.CreatedAt.IsZero() {
		attachment.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO attachments (id, post_id, file_path, file_name, file_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, attachment.ID, attachment.PostID, attachment.FilePath, attachment.FileName, attachment.FileSize, attachment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (r *attachmentRepository) ByPostID(postID string) ([]*model.Attachment, error) {
	attachments := []*model.Attachment{}
	err := r.db.Select(&attachments, `
		SELECT * FROM attachments
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}
