package domain

import "errors"

var (
	// ErrUnauthenticated is returned when an operation requires an actor
	// and the caller is anonymous.
	ErrUnauthenticated = errors.New("login required")

	// ErrForbidden covers both ownership mismatches and missing operator
	// roles.
	ErrForbidden = errors.New("forbidden")

	ErrNotFound = errors.New("order not found")

	// ErrInvalidState is returned when a transition is not permitted from
	// the order's current status.
	ErrInvalidState = errors.New("invalid order status")

	// ErrUnavailable signals that the backing store is unreachable. It is
	// consumed by the failover decision in the usecase layer and must never
	// reach an external caller.
	ErrUnavailable = errors.New("order store unavailable")
)

// ValidationError carries a stable machine-readable code for missing or
// unknown field values, e.g. "cart_empty" or "invalid_status".
type ValidationError struct {
	Code string
}

func (e *ValidationError) Error() string {
	return e.Code
}

func NewValidationError(code string) error {
	return &ValidationError{Code: code}
}
