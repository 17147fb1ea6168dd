package errors

import (
	"errors"
)

// New returns an error with the specified text. If the text is empty, nil is
// returned. This is convenient for converting error strings received over the
// wire back into errors.
func New(text string) error {
	if text == "" {
		return nil
	}
	return errors.New(text)
}

// As is a convenience wrapper around the standard library errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is a convenience wrapper around the standard library errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
