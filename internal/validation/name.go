package validation

import (
	"errors"
	"unicode/utf8"
)

const MaxNameLength = 100

// ValidateFullName validates an optional profile name. Blank is allowed.
func ValidateFullName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return errors.New("Numele este prea lung (maxim 100 de caractere)")
	}
	return nil
}
