package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(255) NOT NULL PRIMARY KEY)`

// Migrate applies every migration under <driver>/ in migrations that has not been applied yet, in file name order.
// Each file runs in its own transaction.
func Migrate(ctx context.Context, db *sqlx.DB, migrations fs.FS) error {
	dir := db.DriverName()
	files, err := fs.Glob(migrations, path.Join("migrations", dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("fs.Glob(%s) > %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no migrations for driver %s", dir)
	}
	sort.Strings(files)

	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("db.ExecContext(schema_migrations) > %w", err)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, "SELECT version FROM schema_migrations"); err != nil {
		return fmt.Errorf("db.SelectContext(schema_migrations) > %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, version := range applied {
		done[version] = true
	}

	for _, file := range files {
		version := strings.TrimSuffix(path.Base(file), ".sql")
		if done[version] {
			continue
		}

		content, err := fs.ReadFile(migrations, file)
		if err != nil {
			return fmt.Errorf("fs.ReadFile(%s) > %w", file, err)
		}
		if err := RunInTx(ctx, db, func(ctx context.Context, tx *sqlx.Tx) error {
			for _, statement := range splitStatements(string(content)) {
				if _, err := tx.ExecContext(ctx, statement); err != nil {
					return fmt.Errorf("tx.ExecContext(%s) > %w", version, err)
				}
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
				return fmt.Errorf("tx.ExecContext(record %s) > %w", version, err)
			}
			return nil
		}); err != nil {
			return err
		}
		slog.Default().Debug("applied migration", "version", version, "driver", dir)
	}
	return nil
}

func splitStatements(content string) []string {
	var statements []string
	for _, part := range strings.Split(content, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}
