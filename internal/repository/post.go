package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/voceapacientilor/vocea/internal/db"
	"github.com/voceapacientilor/vocea/internal/model"
)

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrInvalidTransition = errors.New("post is not pending moderation")
)

type PostRepository interface {
	Create(post *model.Post) error
	ByID(id string) (*model.Post, error)
	// Approved lists approved posts newest first, each with its reply count.
	Approved(filter model.PostFilter) ([]*model.Post, error)
	// Pending lists posts awaiting moderation, newest first.
	Pending() ([]*model.Post, error)
	// UpdateStatus moves a pending post to next.
	UpdateStatus(id string, next model.PostStatus) error
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = post.CreatedAt
	if post.Status == "" {
		post.Status = model.PostStatusPending
	}

	_, err := r.db.Exec(`
		INSERT INTO posts (id, author_id, title, body, hospital_name, locality, county, incident_date,
			status, display_name, is_anonymous, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, post.ID, post.AuthorID, post.Title, post.Body, post.HospitalName, post.Locality, post.County,
		post.IncidentDate, post.Status, post.DisplayName, post.IsAnonymous, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postRepository) ByID(id string) (*model.Post, error) {
	var post model.Post
	err := r.db.Get(&post, `SELECT * FROM posts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Approved(filter model.PostFilter) ([]*model.Post, error) {
	var (
		where = []string{"p.status = $1"}
		args  = []any{model.PostStatusApproved}
	)

	if filter.County != "" {
		args = append(args, filter.County)
		where = append(where, fmt.Sprintf("p.county = $%d", len(args)))
	}
	if hospital := strings.TrimSpace(filter.Hospital); hospital != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(hospital))+"%")
		where = append(where, fmt.Sprintf(`%s(p.hospital_name) LIKE $%d ESCAPE '\'`, db.LowerFunc(r.db.DriverName()), len(args)))
	}

	query := `
		SELECT p.*, (SELECT COUNT(*) FROM replies r WHERE r.post_id = p.id) AS reply_count
		FROM posts p
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY p.created_at DESC, p.id DESC
	`

	posts := []*model.Post{}
	err := r.db.Select(&posts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list approved posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Pending() ([]*model.Post, error) {
	posts := []*model.Post{}
	err := r.db.Select(&posts, `
		SELECT * FROM posts
		WHERE status = $1
		ORDER BY created_at DESC, id DESC
	`, model.PostStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) UpdateStatus(id string, next model.PostStatus) error {
	if !model.PostStatusPending.CanTransitionTo(next) {
		return ErrInvalidTransition
	}

	// The status guard makes concurrent decisions on one post resolve to a single winner
	result, err := r.db.Exec(`
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, next, time.Now().UTC(), id, model.PostStatusPending)
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	if _, err := r.ByID(id); err != nil {
		return err
	}
	return ErrInvalidTransition
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
