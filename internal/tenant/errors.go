package tenant

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ValidationError reports which precondition the caller's input failed.
// These are common, recoverable operator mistakes and the reasons are
// meant to be shown to the user as-is.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Reasons, "; ")
}

func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reasons: []string{fmt.Sprintf(format, args...)}}
}

// NotFoundError reports that a referenced tenant, user or membership
// does not exist. Kept distinct from validation errors so callers can
// choose 404 over 400.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func notFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// isUniqueViolation detects a unique-constraint insert failure. The
// slug retry loop and the membership uniqueness check both have
// check-then-act races, so the storage constraint is the authority and
// conflicts on insert are expected under concurrency.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique")
}
