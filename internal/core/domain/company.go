package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Company is the tenant root. Every other entity carries its CompanyID
// and every query is scoped by it.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slugify derives a URL-safe slug from a company name: lowercased,
// spaces collapsed to hyphens, everything outside [a-z0-9-] stripped.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ValidateCompanyName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 2 {
		return WrapError(ErrValidation, "validate company", errors.New("name must be at least 2 characters"))
	}
	if n > 100 {
		return WrapError(ErrValidation, "validate company", errors.New("name must not exceed 100 characters"))
	}
	return nil
}
