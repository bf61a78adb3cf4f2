package session

import "errors"

var (
	// ErrInvalidToken is returned for empty or oversized tokens; the store is not queried.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrSessionNotFound is returned when no row matches the token.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the row exists but expires_at <= now.
	ErrSessionExpired = errors.New("session expired")

	// ErrAdminNotFound is returned when creating a session for an unknown admin.
	ErrAdminNotFound = errors.New("admin not found")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid session config")
)

// IsUnauthorized reports whether err means "no valid session": missing,
// malformed or expired tokens all resolve to the same outcome.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrSessionExpired)
}
