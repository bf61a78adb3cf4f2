package content

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// ValidationError reports the first rejected field of an input.
type ValidationError struct {
	Op     string
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Field, e.Reason)
}

func (e ValidationError) Unwrap() error { return ErrInvalidInput }

func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
