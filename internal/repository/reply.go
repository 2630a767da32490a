package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/voceapacientilor/vocea/internal/model"
)

type ReplyRepository interface {
	Create(reply *model.Reply) error
	// ByPostID returns a post's replies oldest first.
	ByPostID(postID string) ([]*model.Reply, error)
}

type replyRepository struct {
	db *sqlx.DB
}

func NewReplyRepository(db *sqlx.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(reply *model.Reply) error {
	if reply.ID == "" {
		reply.ID = uuid.New().String()
	}
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO replies (id, post_id, author_id, body, display_name, is_anonymous, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, reply.ID, reply.PostID, reply.AuthorID, reply.Body, reply.DisplayName, reply.IsAnonymous, reply.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reply: %w", err)
	}
	return nil
}

func (r *replyRepository) ByPostID(postID string) ([]*model.Reply, error) {
	replies := []*model.Reply{}
	err := r.db.Select(&replies, `
		SELECT * FROM replies
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	return replies, nil
}
