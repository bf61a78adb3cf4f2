package identity

import (
	"context"
	"time"
)

// Admin is the identity returned to callers after authentication.
type Admin struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// AdminAuth pairs an Admin with its stored password hash. It stays inside
// this package and the stores.
type AdminAuth struct {
	Admin
	PasswordHash string
	UpdatedAt    time.Time
}

// CreateAdminInput is a pre-hashed admin row.
type CreateAdminInput struct {
	ID           string
	Username     string
	PasswordHash string
	Now          time.Time
}

// Store is the admin persistence boundary.
type Store interface {
	// GetAdminAuthByUsername looks up by exact username. Missing -> NotFoundError.
	GetAdminAuthByUsername(ctx context.Context, username string) (AdminAuth, error)

	// GetAdminAuthByID looks up by id. Missing -> NotFoundError.
	GetAdminAuthByID(ctx context.Context, id string) (AdminAuth, error)

	// CreateAdmin inserts a new admin. Duplicate username -> ConflictError.
	CreateAdmin(ctx context.Context, in CreateAdminInput) (Admin, error)

	// UpdatePasswordHash overwrites the stored hash. Missing -> NotFoundError.
	UpdatePasswordHash(ctx context.Context, id string, hash string, now time.Time) error
}
