package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/dbschema"
)

// PostgresStore implements Store over the admins table.
//
// The pgx pool is owned by the caller; this store never closes it.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

// WithSchema sets the Postgres schema (default "noor").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !dbschema.ValidIdentifier(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: dbschema.DefaultSchema,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) admins() string { return dbschema.Table(s.schema, "admins") }

// GetAdminAuthByUsername loads an admin and its hash by exact username.
func (s *PostgresStore) GetAdminAuthByUsername(ctx context.Context, username string) (AdminAuth, error) {
	const op = "identity.GetAdminAuthByUsername"

	row := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at, updated_at
		   FROM `+s.admins()+`
		  WHERE username = $1`,
		username,
	)
	return scanAdminAuth(op, row)
}

// GetAdminAuthByID loads an admin and its hash by id.
func (s *PostgresStore) GetAdminAuthByID(ctx context.Context, id string) (AdminAuth, error) {
	const op = "identity.GetAdminAuthByID"

	row := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at, updated_at
		   FROM `+s.admins()+`
		  WHERE id = $1`,
		id,
	)
	return scanAdminAuth(op, row)
}

func scanAdminAuth(op string, row pgx.Row) (AdminAuth, error) {
	var a AdminAuth
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return AdminAuth{}, NotFoundError{Op: op, Resource: "admin"}
	}
	if err != nil {
		return AdminAuth{}, err
	}
	return a, nil
}

// CreateAdmin inserts a pre-hashed admin row.
func (s *PostgresStore) CreateAdmin(ctx context.Context, in CreateAdminInput) (Admin, error) {
	const op = "identity.CreateAdmin"

	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.Username) == "" || in.PasswordHash == "" {
		return Admin{}, invalid(op, "id, username and password hash are required")
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.admins()+` (id, username, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)`,
		in.ID, in.Username, in.PasswordHash, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Admin{}, ConflictError{Op: op, Field: "username"}
		}
		return Admin{}, err
	}

	return Admin{ID: in.ID, Username: in.Username, CreatedAt: now}, nil
}

// UpdatePasswordHash overwrites the stored hash for id.
func (s *PostgresStore) UpdatePasswordHash(ctx context.Context, id string, hash string, now time.Time) error {
	const op = "identity.UpdatePasswordHash"

	if hash == "" {
		return invalid(op, "empty hash")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE `+s.admins()+`
		    SET password_hash = $2, updated_at = $3
		  WHERE id = $1`,
		id, hash, now,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "admin"}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" // unique_violation
}
