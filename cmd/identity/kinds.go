package identity

import "errors"

// Sentinel error kinds (stable for errors.Is and for mapping to API status codes).
var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrWrongPassword      = errors.New("wrong_password")
	ErrNotFound           = errors.New("not_found")
	ErrConflict           = errors.New("conflict")
)
