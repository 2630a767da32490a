package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/voceapacientilor/vocea/internal/model"
)

type ProfileRepository interface {
	ByID(userID string) (*model.UserProfile, error)
	Create(profile *model.UserProfile) error
	// Update writes the user-editable fields: full_name, county, show_real_name.
	Update(profile *model.UserProfile) error
	SetAdminByEmail(email string, isAdmin bool) error
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ByID(userID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.db.Get(&profile, `SELECT * FROM user_profiles WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Create(profile *model.UserProfile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}

	_, err := r.db.Exec(`
		INSERT INTO user_profiles (id, email, full_name, county, show_real_name, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, profile.ID, profile.Email, profile.FullName, profile.County, profile.ShowRealName, profile.IsAdmin,
		profile.CreatedAt, profile.UpdatedAt)

	return err
}

func (r *profileRepository) Update(profile *model.UserProfile) error {
	profile.UpdatedAt = time.Now().UTC()

	result, err := r.db.Exec(`
		UPDATE user_profiles
		SET full_name = $1, county = $2, show_real_name = $3, updated_at = $4
		WHERE id = $5
	`, profile.FullName, profile.County, profile.ShowRealName, profile.UpdatedAt, profile.ID)
	if err != nil {
		return err
	}
	return expectRows(result, ErrProfileNotFound)
}

func (r *profileRepository) SetAdminByEmail(email string, isAdmin bool) error {
	result, err := r.db.Exec(`
		UPDATE user_profiles
		SET is_admin = $1, updated_at = $2
		WHERE id = (SELECT id FROM users WHERE email = $3)
	`, isAdmin, time.Now().UTC(), email)
	if err != nil {
		return err
	}
	return expectRows(result, ErrProfileNotFound)
}
