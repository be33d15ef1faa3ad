package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an API-visible failure carrying the HTTP status it maps to.
// The package-level values below form a closed set; wrap them with
// fmt.Errorf("%w: ...") to add context without losing the kind.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrValidation   = &Error{Status: http.StatusBadRequest, Message: "validation failed"}
	ErrUnauthorized = &Error{Status: http.StatusUnauthorized, Message: "unauthorized"}
	ErrNotFound     = &Error{Status: http.StatusNotFound, Message: "not found"}
	ErrConflict     = &Error{Status: http.StatusConflict, Message: "already exists"}
	// ErrTokenReused means the refresh token's signature checked out but it no
	// longer matches the stored one: rotated away, cleared by logout, or never
	// issued. Kept separate from ErrUnauthorized because it signals a replay.
	ErrTokenReused = &Error{Status: http.StatusUnauthorized, Message: "refresh token expired or already used"}
	ErrUpload      = &Error{Status: http.StatusInternalServerError, Message: "upload failed"}
	ErrPersistence = &Error{Status: http.StatusInternalServerError, Message: "internal server error"}
)

// Validation returns ErrValidation wrapped with a caller-facing message.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// StatusOf maps an error to the HTTP status and message to report. Unknown
// errors collapse to a generic 500 so internals never leak to clients.
func StatusOf(err error) (int, string) {
	var ae *Error
	if errors.As(err, &ae) {
		msg := ae.Message
		// prefer the wrapped detail for validation failures
		if errors.Is(err, ErrValidation) && err.Error() != "" {
			msg = err.Error()
		}
		return ae.Status, msg
	}
	return http.StatusInternalServerError, "internal server error"
}
