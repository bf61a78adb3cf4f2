package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/dbschema"
)

// PostgresStore implements Store over admin_settings and announcements.
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
			return fmt.Errorf("content: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
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
		return nil, fmt.Errorf("content: nil pool")
	}
	return s, nil
}

func (s *PostgresStore) settings() string      { return dbschema.Table(s.schema, "admin_settings") }
func (s *PostgresStore) announcements() string { return dbschema.Table(s.schema, "announcements") }

func (s *PostgresStore) GetSettings(ctx context.Context) (Settings, error) {
	var out Settings
	err := s.pool.QueryRow(ctx, `
		SELECT phone, email, jummah_time, updated_at
		  FROM `+s.settings()+`
		 WHERE id = 1
	`).Scan(&out.Phone, &out.Email, &out.JummahTime, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// The migration seeds the row; an empty table means it was deleted by hand.
		return Settings{}, nil
	}
	return out, err
}

func (s *PostgresStore) PutSettings(ctx context.Context, in Settings) (Settings, error) {
	var out Settings
	err := s.pool.QueryRow(ctx, `
		INSERT INTO `+s.settings()+` (id, phone, email, jummah_time, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		   SET phone = EXCLUDED.phone,
		       email = EXCLUDED.email,
		       jummah_time = EXCLUDED.jummah_time,
		       updated_at = EXCLUDED.updated_at
		RETURNING phone, email, jummah_time, updated_at
	`, in.Phone, in.Email, in.JummahTime, in.UpdatedAt).Scan(&out.Phone, &out.Email, &out.JummahTime, &out.UpdatedAt)
	if err != nil {
		return Settings{}, err
	}
	return out, nil
}

func (s *PostgresStore) InsertAnnouncement(ctx context.Context, a Announcement) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+s.announcements()+` (id, title, description, event_date, event_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.Title, a.Description, a.Date, a.Time, a.CreatedAt)
	return err
}

func (s *PostgresStore) DeleteAnnouncement(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+s.announcements()+` WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ListAnnouncements(ctx context.Context, limit int) ([]Announcement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, event_date, event_time, created_at
		  FROM `+s.announcements()+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Announcement, error) {
		var a Announcement
		err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Date, &a.Time, &a.CreatedAt)
		return a, err
	})
}
