package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleUser       Role = "user"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleSupervisor, RoleUser:
		return Role(s), nil
	default:
		return "", WrapError(ErrValidation, "parse role", fmt.Errorf("unknown role %q", s))
	}
}

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
	UserPending  UserStatus = "pending"
)

func ParseUserStatus(s string) (UserStatus, error) {
	switch UserStatus(s) {
	case UserActive, UserInactive, UserPending:
		return UserStatus(s), nil
	default:
		return "", WrapError(ErrValidation, "parse user status", fmt.Errorf("unknown status %q", s))
	}
}

// User is a principal belonging to exactly one company. AreaID is empty
// for unassigned users. Users are never hard-deleted; deactivation flips
// Status to inactive.
type User struct {
	ID        string     `json:"id"`
	CompanyID string     `json:"company_id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	AreaID    string     `json:"area_id,omitempty"`
	Position  string     `json:"position,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CanReceiveDerivation reports whether the user is a valid derivation
// target. Inactive users cannot receive documents.
func (u *User) CanReceiveDerivation() bool {
	return u.Status == UserActive || u.Status == UserPending
}

func ValidateFullName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 2 {
		return WrapError(ErrValidation, "validate user", errors.New("full name must be at least 2 characters"))
	}
	if n > 100 {
		return WrapError(ErrValidation, "validate user", errors.New("full name must not exceed 100 characters"))
	}
	return nil
}

func ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return WrapError(ErrValidation, "validate email", err)
	}
	return nil
}

// ValidatePassword enforces the registration policy: at least 8
// characters with a letter and a digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return WrapError(ErrValidation, "validate password", errors.New("password must be at least 8 characters"))
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter {
		return WrapError(ErrValidation, "validate password", errors.New("password must contain at least one letter"))
	}
	if !hasDigit {
		return WrapError(ErrValidation, "validate password", errors.New("password must contain at least one digit"))
	}
	return nil
}

// ValidateRegistrationPassword is the stricter policy for the tenant's
// first admin: everything ValidatePassword asks plus a symbol. Users
// created afterwards by an admin keep the base policy.
func ValidateRegistrationPassword(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	for _, r := range password {
		isDigit := r >= '0' && r <= '9'
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isDigit && !isLetter {
			return nil
		}
	}
	return WrapError(ErrValidation, "validate password", errors.New("password must contain at least one symbol"))
}
