package model

import (
	"time"
)

type PostStatus string

const (
	PostStatusPending  PostStatus = "pending"
	PostStatusApproved PostStatus = "approved"
	PostStatusRejected PostStatus = "rejected"
)

func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusPending, PostStatusApproved, PostStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether moderation may move a post from s to next.
// Only pending posts move, and only to approved or rejected.
func (s PostStatus) CanTransitionTo(next PostStatus) bool {
	return s == PostStatusPending && (next == PostStatusApproved || next == PostStatusRejected)
}

// Label is the Romanian badge text shown to admins.
func (s PostStatus) Label() string {
	switch s {
	case PostStatusPending:
		return "În așteptare"
	case PostStatusApproved:
		return "Aprobat"
	case PostStatusRejected:
		return "Respins"
	}
	return string(s)
}

type Post struct {
	ID           string     `db:"id"`
	AuthorID     string     `db:"author_id"`
	Title        *string    `db:"title"`
	Body         string     `db:"body"`
	HospitalName string     `db:"hospital_name"`
	Locality     string     `db:"locality"`
	County       string     `db:"county"`
	IncidentDate *string    `db:"incident_date"` // YYYY-MM-DD
	Status       PostStatus `db:"status"`
	DisplayName  string     `db:"display_name"`
	IsAnonymous  bool       `db:"is_anonymous"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`

	// Only populated by listing queries
	ReplyCount int `db:"reply_count"`
}

func (p *Post) TitleText() string {
	if p.Title == nil {
		return ""
	}
	return *p.Title
}

func (p *Post) IsApproved() bool {
	return p.Status == PostStatusApproved
}

func (p *Post) IsPending() bool {
	return p.Status == PostStatusPending
}

// PostFilter narrows the public listing. Empty fields do not filter.
type PostFilter struct {
	County   string // exact match
	Hospital string // case-insensitive substring of hospital_name
}
