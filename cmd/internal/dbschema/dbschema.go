// Package dbschema owns the Postgres schema for admins, sessions and site content.
//
// Migrations are embedded SQL files named NNNN_name.sql. Each file uses the
// {{schema}} placeholder, replaced with the quoted schema identifier before
// execution. Apply records every applied version in schema_migrations.
package dbschema

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSchema is used when no schema is configured.
const DefaultSchema = "noor"

// advisoryLockKey serializes concurrent migrators on the same database.
const advisoryLockKey int64 = 0x6e6f6f72 // "noor"

//go:embed migrations/*.sql
var migrationFiles embed.FS

var (
	identRe    = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	fileNameRe = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.sql$`)

	ErrInvalidSchema = errors.New("dbschema: invalid schema identifier")
)

// Migration is one embedded SQL file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// ValidIdentifier reports whether s is a plain Postgres identifier.
func ValidIdentifier(s string) bool { return identRe.MatchString(s) }

// Table returns the quoted, schema-qualified name "schema"."name".
func Table(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

// Migrations returns the embedded migrations ordered by version.
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("dbschema: read migrations: %w", err)
	}

	out := make([]Migration, 0, len(entries))
	seen := make(map[int]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			return nil, fmt.Errorf("dbschema: unexpected migration file %q", e.Name())
		}
		v, _ := strconv.Atoi(m[1])
		if prev, dup := seen[v]; dup {
			return nil, fmt.Errorf("dbschema: duplicate version %d (%s, %s)", v, prev, e.Name())
		}
		seen[v] = e.Name()

		body, err := migrationFiles.ReadFile(path.Join("migrations", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("dbschema: read %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: v, Name: m[2], SQL: string(body)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Render substitutes the quoted schema into a migration body.
func Render(sql, schema string) (string, error) {
	if !ValidIdentifier(schema) {
		return "", ErrInvalidSchema
	}
	return strings.ReplaceAll(sql, "{{schema}}", pgx.Identifier{schema}.Sanitize()), nil
}

// Apply creates schema if needed and applies every pending migration, each in
// its own transaction. It returns the number of migrations applied.
func Apply(ctx context.Context, pool *pgxpool.Pool, schema string, log *slog.Logger) (int, error) {
	if pool == nil {
		return 0, errors.New("dbschema: nil pool")
	}
	if log == nil {
		log = slog.Default()
	}
	schema = strings.TrimSpace(schema)
	if schema == "" {
		schema = DefaultSchema
	}
	if !ValidIdentifier(schema) {
		return 0, ErrInvalidSchema
	}

	migrations, err := Migrations()
	if err != nil {
		return 0, err
	}

	ledger := Table(schema, "schema_migrations")
	bootstrap := `CREATE SCHEMA IF NOT EXISTS ` + pgx.Identifier{schema}.Sanitize() + `;
CREATE TABLE IF NOT EXISTS ` + ledger + ` (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	if _, err := pool.Exec(ctx, bootstrap); err != nil {
		return 0, fmt.Errorf("dbschema: bootstrap: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		ok, err := applyOne(ctx, pool, schema, ledger, m)
		if err != nil {
			return applied, fmt.Errorf("dbschema: migration %04d_%s: %w", m.Version, m.Name, err)
		}
		if ok {
			applied++
			log.Info("db.migrate.applied", "schema", schema, "version", m.Version, "name", m.Name)
		}
	}
	return applied, nil
}

func applyOne(ctx context.Context, pool *pgxpool.Pool, schema, ledger string, m Migration) (bool, error) {
	body, err := Render(m.SQL, schema)
	if err != nil {
		return false, err
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey); err != nil {
		return false, err
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+ledger+` WHERE version = $1)`, m.Version,
	).Scan(&exists); err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if _, err := tx.Exec(ctx, body); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO `+ledger+` (version, name) VALUES ($1, $2)`, m.Version, m.Name,
	); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
