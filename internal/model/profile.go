package model

import (
	"strings"
	"time"
)

// UserProfile holds the public-facing identity of a user.
// ID is the owning user's id.
type UserProfile struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	FullName     *string   `db:"full_name"`
	County       *string   `db:"county"`
	ShowRealName bool      `db:"show_real_name"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const (
	AnonymousDisplayName = "Anonim"
	DefaultDisplayName   = "Utilizator"
)

// Name returns the trimmed full name, or "" when none is set.
func (p *UserProfile) Name() string {
	if p == nil || p.FullName == nil {
		return ""
	}
	return strings.TrimSpace(*p.FullName)
}

// CountyName returns the county, or "" when none is set.
func (p *UserProfile) CountyName() string {
	if p == nil || p.County == nil {
		return ""
	}
	return *p.County
}

// DisplayName resolves the name stored on a post or reply at write time.
func DisplayName(profile *UserProfile, anonymous bool) string {
	if anonymous {
		return AnonymousDisplayName
	}
	if name := profile.Name(); name != "" {
		return name
	}
	return DefaultDisplayName
}
