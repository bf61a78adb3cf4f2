package session

import (
	"context"
	"time"
)

// Row mirrors an admin_sessions row joined to its admin.
type Row struct {
	AdminID   string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store abstracts persistence for session state. Rows are keyed by token digest.
type Store interface {
	// Create deletes every session of adminID and inserts the new row atomically.
	// Returns ErrAdminNotFound when adminID does not exist.
	Create(ctx context.Context, now time.Time, adminID string, tokenHash string, expiresAt time.Time) error

	// GetByTokenHash loads the row for tokenHash joined with the admin username.
	// Returns ErrSessionNotFound when absent.
	GetByTokenHash(ctx context.Context, tokenHash string) (Row, error)

	// DeleteByTokenHash removes the row if present. Deleting nothing is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error)

	// DeleteExpired removes rows with expires_at <= now and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)

	// DeleteAllForAdmin removes every session of adminID.
	DeleteAllForAdmin(ctx context.Context, adminID string) (int, error)

	// CountForAdmin returns the number of rows held by adminID.
	CountForAdmin(ctx context.Context, adminID string) (int, error)
}
