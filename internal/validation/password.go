package validation

import (
	"errors"
	"strings"
)

// ValidatePassword enforces a minimum of 12 characters and blocks common patterns
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("Parola trebuie să aibă cel puțin 12 caractere")
	}

	// bcrypt silently truncates anything past 72 bytes
	if len(password) > 72 {
		return errors.New("Parola poate avea cel mult 72 de caractere")
	}

	lower := strings.ToLower(password)
	commonPatterns := []string{
		"password", "parola", "123456", "qwerty", "admin", "letmein",
		"welcome", "monkey", "dragon", "master", "sunshine",
	}

	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			return errors.New("Parola este prea comună, alege una mai puternică")
		}
	}

	return nil
}
