package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/voceapacientilor/vocea/internal/model"
)

const (
	MinPostBodyLength  = 30
	MaxPostBodyLength  = 10000
	MaxTitleLength     = 200
	MaxPlaceNameLength = 200
)

// ValidatePostBody requires at least 30 characters
func ValidatePostBody(body string) error {
	n := utf8.RuneCountInString(body)
	if n < MinPostBodyLength {
		return fmt.Errorf("Descrierea trebuie să aibă minimum %d de caractere", MinPostBodyLength)
	}
	if n > MaxPostBodyLength {
		return fmt.Errorf("Descrierea poate avea maximum %d de caractere", MaxPostBodyLength)
	}
	return nil
}

func ValidateTitle(title string) error {
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("Titlul poate avea maximum %d de caractere", MaxTitleLength)
	}
	return nil
}

// ValidatePlace checks a required free-text field such as hospital or locality.
func ValidatePlace(value, label string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s este obligatoriu", label)
	}
	if utf8.RuneCountInString(value) > MaxPlaceNameLength {
		return fmt.Errorf("%s este prea lung", label)
	}
	return nil
}

func ValidateCounty(county string) error {
	if county == "" {
		return errors.New("Județul este obligatoriu")
	}
	if !model.IsCounty(county) {
		return errors.New("Județul selectat nu este valid")
	}
	return nil
}

// ValidateIncidentDate accepts an empty value or a YYYY-MM-DD date not in the future.
func ValidateIncidentDate(date string, now time.Time) error {
	if date == "" {
		return nil
	}
	d, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return errors.New("Data incidentului nu este validă")
	}
	if d.After(now) {
		return errors.New("Data incidentului nu poate fi în viitor")
	}
	return nil
}

func ValidateReplyBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return errors.New("Răspunsul nu poate fi gol")
	}
	if utf8.RuneCountInString(body) > model.ReplyMaxLength {
		return fmt.Errorf("Răspunsul poate avea maximum %d de caractere", model.ReplyMaxLength)
	}
	return nil
}
