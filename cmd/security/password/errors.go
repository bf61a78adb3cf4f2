package password

import "errors"

// Policy violations returned by Validate and Hash. Callers map them to the
// localized change-password messages.
var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrWeakPassword     = errors.New("weak password")
)

// ErrInvalidHash is returned by Verify for a stored hash that is neither a
// PHC Argon2id string nor an accepted legacy bcrypt hash.
var ErrInvalidHash = errors.New("invalid password hash")
