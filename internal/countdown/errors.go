package countdown

import "errors"

// ErrInvalidInput is matched by every error caused by bad user input
var ErrInvalidInput = errors.New("invalid input")

// ErrEngineClosed is returned by Start after Close
var ErrEngineClosed = errors.New("countdown engine closed")

// Input errors shown to the user verbatim
var (
	ErrMissingDateTime = &InputError{msg: "Please select both date and time"}
	ErrNotFuture       = &InputError{msg: "Please select a future date and time"}
)

// InputError is a user-facing validation failure. It leaves the caller's
// state untouched.
type InputError struct {
	msg string
}

// NewInputError creates a user-facing validation error with msg
func NewInputError(msg string) *InputError {
	return &InputError{msg: msg}
}

func (e *InputError) Error() string {
	return e.msg
}

// Is reports InputError as ErrInvalidInput for errors.Is
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}
