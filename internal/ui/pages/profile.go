package pages

import (
	"github.com/voceapacientilor/vocea/internal/service"
	"github.com/voceapacientilor/vocea/internal/validation"
)

type ProfileData struct {
	Email    string
	Form     service.UpdateProfileInput
	Errors   *validation.Errors
	Counties []string
}
