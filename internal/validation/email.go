package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidateEmail validates email format and length
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("Adresa de email este obligatorie")
	}

	// RFC 5321: total max 254 with @
	if len(email) > 254 {
		return errors.New("Adresa de email este prea lungă")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return errors.New("Adresa de email nu este validă")
	}

	return nil
}

// NormalizeEmail lowercases and trims an email before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
