// Package common defines the error taxonomy shared by stores, services and
// handlers. Callers match kinds with errors.Is.
package common

import "errors"

// Error kinds. Each maps to one HTTP status in utils.RespondWithAppError.
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrTooManyRequests = errors.New("too many requests")
)

// Error carries a client-facing message and unwraps to its kind.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func Validation(msg string) error { return &Error{Kind: ErrValidation, Msg: msg} }

func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Msg: msg} }

func Forbidden(msg string) error { return &Error{Kind: ErrForbidden, Msg: msg} }

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Msg: msg} }

// Token gate failures, one per validation stage.
var (
	ErrMalformedHeader    = Unauthorized("Missing or malformed Authorization header")
	ErrInvalidToken       = Unauthorized("Invalid token")
	ErrExpiredToken       = Unauthorized("Token has expired")
	ErrUnknownUser        = Unauthorized("User no longer exists")
	ErrInvalidCredentials = Unauthorized("Invalid credentials")
)

// Message returns the client-facing text of err, or "" when err carries none.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
