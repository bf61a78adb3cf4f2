package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/dbschema"
)

// PostgresStore implements Store over admin_sessions.
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
		if !dbschema.ValidIdentifier(schema) {
			return fmt.Errorf("session: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool, schema: dbschema.DefaultSchema}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.pool == nil {
		return nil, fmt.Errorf("session: nil pool")
	}
	return s, nil
}

func (s *PostgresStore) sessions() string { return dbschema.Table(s.schema, "admin_sessions") }
func (s *PostgresStore) admins() string   { return dbschema.Table(s.schema, "admins") }

// Create locks the admin row, deletes its sessions and inserts the new one in
// a single transaction. Concurrent logins for one admin serialize on the lock.
func (s *PostgresStore) Create(ctx context.Context, now time.Time, adminID string, tokenHash string, expiresAt time.Time) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked string
	err = tx.QueryRow(ctx,
		`SELECT id FROM `+s.admins()+` WHERE id = $1 FOR UPDATE`, adminID,
	).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAdminNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM `+s.sessions()+` WHERE admin_id = $1`, adminID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO `+s.sessions()+` (token_hash, admin_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		tokenHash, adminID, now, expiresAt,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByTokenHash loads the session joined to its admin.
func (s *PostgresStore) GetByTokenHash(ctx context.Context, tokenHash string) (Row, error) {
	var row Row

	err := s.pool.QueryRow(ctx, `
		SELECT s.admin_id, a.username, s.created_at, s.expires_at
		  FROM `+s.sessions()+` s
		  JOIN `+s.admins()+` a ON a.id = s.admin_id
		 WHERE s.token_hash = $1
	`, tokenHash).Scan(&row.AdminID, &row.Username, &row.CreatedAt, &row.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Row{}, ErrSessionNotFound
	}
	if err != nil {
		return Row{}, err
	}
	return row, nil
}

// DeleteByTokenHash removes one session (idempotent).
func (s *PostgresStore) DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.sessions()+` WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.sessions()+` WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// DeleteAllForAdmin removes every session of adminID.
func (s *PostgresStore) DeleteAllForAdmin(ctx context.Context, adminID string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.sessions()+` WHERE admin_id = $1`, adminID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// CountForAdmin returns the number of session rows for adminID.
func (s *PostgresStore) CountForAdmin(ctx context.Context, adminID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM `+s.sessions()+` WHERE admin_id = $1`, adminID).Scan(&n)
	return n, err
}
