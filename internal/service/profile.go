package service

import (
	"fmt"
	"log/slog"

	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/repository"
	"github.com/voceapacientilor/vocea/internal/validation"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
	}
}

// UpdateProfileInput holds the fields a user may edit on their own profile.
type UpdateProfileInput struct {
	FullName     string
	County       string
	ShowRealName bool
}

func (s *ProfileService) ByUserID(userID string) (*model.UserProfile, error) {
	return s.profileRepo.ByID(userID)
}

// Update writes full name, county and privacy preference. Empty name or
// county clears the stored value.
func (s *ProfileService) Update(userID string, in UpdateProfileInput) (*model.UserProfile, error) {
	name := validation.SanitizeText(in.FullName)

	var errs validation.Errors
	errs.Check("full_name", validation.ValidateFullName(name))
	if in.County != "" {
		errs.Check("county", validation.ValidateCounty(in.County))
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.ByID(userID)
	if err != nil {
		return nil, err
	}

	profile.FullName = nilIfEmpty(name)
	profile.County = nilIfEmpty(in.County)
	profile.ShowRealName = in.ShowRealName

	err = s.profileRepo.Update(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	slog.Info("profile updated", "user_id", userID)
	return profile, nil
}

// SetAdmin grants or revokes moderation rights. Only reachable from the operator CLI.
func (s *ProfileService) SetAdmin(email string, isAdmin bool) error {
	err := s.profileRepo.SetAdminByEmail(validation.NormalizeEmail(email), isAdmin)
	if err != nil {
		return err
	}

	slog.Info("admin flag changed", "email", email, "is_admin", isAdmin)
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
