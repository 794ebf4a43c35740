package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Area is an organizational department scoping users and documents
// within a company. Name is unique per company.
type Area struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AreaSummary is an Area together with the counts the area listing
// shows. Counts are computed at read time, never stored.
type AreaSummary struct {
	Area
	UserCount     int `json:"user_count"`
	DocumentCount int `json:"document_count"`
}

func ValidateArea(name, description string) error {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	if n < 3 {
		return WrapError(ErrValidation, "validate area", errors.New("name must be at least 3 characters"))
	}
	if n > 50 {
		return WrapError(ErrValidation, "validate area", errors.New("name must not exceed 50 characters"))
	}
	for _, r := range trimmed {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
			return WrapError(ErrValidation, "validate area", errors.New("name allows only letters, digits and spaces"))
		}
	}
	if utf8.RuneCountInString(description) > 255 {
		return WrapError(ErrValidation, "validate area", errors.New("description must not exceed 255 characters"))
	}
	return nil
}
