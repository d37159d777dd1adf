package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced directly to API callers. Everything else is
// absorbed at its originating component and reflected as degraded output.
var (
	// ErrInvalidInput marks malformed or missing required request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a lookup for a record that does not exist or does
	// not belong to the requesting user.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks an insert that would violate a uniqueness rule.
	ErrDuplicate = errors.New("already exists")
)

// InvalidInputf wraps ErrInvalidInput with a formatted reason.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// QuotaExceededError reports a plan-limit violation, carrying the specific
// limit and current usage so callers can show actionable messages.
type QuotaExceededError struct {
	Resource string
	Limit    int
	Current  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %s limit is %d, current usage is %d",
		e.Resource, e.Limit, e.Current)
}

// IsQuotaExceeded reports whether err is a QuotaExceededError.
func IsQuotaExceeded(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}
