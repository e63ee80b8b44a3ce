package quiz

import (
	"errors"
	"fmt"
)

// ParseError indicates the text was not valid JSON.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse quiz: invalid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError indicates well-formed JSON that does not describe a quiz.
type ValidationError struct {
	Raw string

	// Err is the schema validator's error, or the joined invariant
	// violations found on the decoded value.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate quiz: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is a ParseError or a ValidationError.
func IsDecodeError(err error) bool {
	var (
		pe *ParseError
		ve *ValidationError
	)
	return errors.As(err, &pe) || errors.As(err, &ve)
}
