package dbschema_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/dbschema"
	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/dbtest"
)

func TestApply_Idempotent(t *testing.T) {
	pool := dbtest.OpenPool(t)
	schema := dbtest.MigratedSchema(t, pool)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	n, err := dbschema.Apply(ctx, pool, schema, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if n != 0 {
		t.Fatalf("second Apply applied %d migrations, want 0", n)
	}

	var rows int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM `+dbschema.Table(schema, "admin_settings")).Scan(&rows); err != nil {
		t.Fatalf("count settings: %v", err)
	}
	if rows != 1 {
		t.Fatalf("admin_settings rows = %d, want 1", rows)
	}
}
