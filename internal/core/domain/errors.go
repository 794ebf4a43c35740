package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation covers input that violates a documented constraint:
	// field length, enum membership, file size/type, missing required
	// reference. The caller can recover by correcting the input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound means a referenced id does not resolve within the
	// caller's tenant. Permanent for that request.
	ErrNotFound = errors.New("not found")

	// ErrConflict surfaces unique-constraint violations (duplicate area
	// name, duplicate email, slug collision) and referential guards
	// distinctly, so the caller can render a targeted message.
	ErrConflict = errors.New("conflict")

	// ErrStorage means the blob store rejected an upload or download.
	// The underlying message is preserved for operator diagnosis.
	ErrStorage = errors.New("storage failure")

	// ErrPermission means the actor lacks the role the operation
	// requires, or the operation would drop the active-admin count of a
	// company to zero.
	ErrPermission = errors.New("permission denied")

	// ErrUnauthorized means the request carries no valid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTemporary marks transient infrastructure failures that are safe
	// to retry.
	ErrTemporary = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
