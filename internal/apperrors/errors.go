package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	Internal Kind = iota
	BadRequest
	NotFound
	Forbidden
	Conflict
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad_request"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

var (
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrInvalidDateTime = errors.New("invalid date/time")
	ErrInvalidWindow   = errors.New("end date/time must be after start date/time")
	ErrPastWindow      = errors.New("end date/time cannot be in the past")
	ErrUnauthorized    = errors.New("profile is not a participant of this event")
	ErrNotFound        = errors.New("not found")
	ErrDuplicateName   = errors.New("profile with this name already exists")
)

// Error carries a user facing message together with its Kind.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf resolves the Kind of err, looking through wrapped errors and
// falling back to the domain sentinels.
func KindOf(err error) Kind {
	if err == nil {
		return Internal
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	switch {
	case errors.Is(err, ErrInvalidTimezone),
		errors.Is(err, ErrInvalidDateTime),
		errors.Is(err, ErrInvalidWindow),
		errors.Is(err, ErrPastWindow):
		return BadRequest
	case errors.Is(err, ErrUnauthorized):
		return Forbidden
	case errors.Is(err, ErrNotFound):
		return NotFound
	case errors.Is(err, ErrDuplicateName):
		return Conflict
	}
	return Internal
}

// MessageOf returns the user facing message of err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
