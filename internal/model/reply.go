package model

import "time"

const ReplyMaxLength = 500

type Reply struct {
	ID          string    `db:"id"`
	PostID      string    `db:"post_id"`
	AuthorID    string    `db:"author_id"`
	Body        string    `db:"body"`
	DisplayName string    `db:"display_name"`
	IsAnonymous bool      `db:"is_anonymous"`
	CreatedAt   time.Time `db:"created_at"`
}
