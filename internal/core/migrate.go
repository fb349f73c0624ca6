// AngelaMos | 2026
// migrate.go

package core

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
)

const migrationLockKey = "schema_migrations"

// Migrate applies every *.sql file in fsys that is not yet recorded in
// schema_migrations. Each file runs in its own transaction. A session
// advisory lock keeps replicas that boot together from racing.
func Migrate(
	ctx context.Context,
	db *sqlx.DB,
	fsys fs.FS,
	logger *slog.Logger,
) error {
	names, err := migrationFiles(fsys)
	if err != nil {
		return err
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("migrate: acquire connection: %w", err)
	}
	defer conn.Close() //nolint:errcheck // returned to pool

	if _, err := conn.ExecContext(ctx,
		`SELECT pg_advisory_lock(hashtext($1))`, migrationLockKey,
	); err != nil {
		return fmt.Errorf("migrate: lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext( //nolint:errcheck // released with the session anyway
			context.WithoutCancel(ctx),
			`SELECT pg_advisory_unlock(hashtext($1))`, migrationLockKey,
		)
	}()

	if _, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("migrate: create table: %w", err)
	}

	var applied []string
	if err := conn.SelectContext(ctx, &applied,
		`SELECT version FROM schema_migrations`,
	); err != nil {
		return fmt.Errorf("migrate: list applied: %w", err)
	}

	for _, name := range names {
		if slices.Contains(applied, name) {
			continue
		}

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("migrate: read %s: %w", name, err)
		}

		if err := applyMigration(ctx, conn, name, string(body)); err != nil {
			return err
		}

		logger.InfoContext(ctx, "migration applied", "version", name)
	}

	return nil
}

func applyMigration(
	ctx context.Context,
	conn *sqlx.Conn,
	name, body string,
) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate %s: begin: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, body); err != nil {
		_ = tx.Rollback() //nolint:errcheck // original error wins
		return fmt.Errorf("migrate %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version) VALUES ($1)`, name,
	); err != nil {
		_ = tx.Rollback() //nolint:errcheck // original error wins
		return fmt.Errorf("migrate %s: record: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate %s: commit: %w", name, err)
	}
	return nil
}

func migrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("migrate: read dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(path.Ext(e.Name()), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	return names, nil
}
