package service

import (
	"fmt"

	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/repository"
)

// SessionService builds the per-request Session from stored records.
type SessionService struct {
	userRepository    repository.UserRepository
	profileRepository repository.ProfileRepository
}

func NewSessionService(userRepository repository.UserRepository, profileRepository repository.ProfileRepository) *SessionService {
	return &SessionService{
		userRepository:    userRepository,
		profileRepository: profileRepository,
	}
}

// Load returns the session for userID. Both the user and the profile must exist.
func (s *SessionService) Load(userID string) (*model.Session, error) {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}

	profile, err := s.profileRepository.ByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load session profile: %w", err)
	}

	return &model.Session{User: user, Profile: profile}, nil
}

// Refresh reloads a session after its records changed.
func (s *SessionService) Refresh(session *model.Session) (*model.Session, error) {
	if session == nil {
		return nil, fmt.Errorf("refresh: no session")
	}
	return s.Load(session.UserID())
}
