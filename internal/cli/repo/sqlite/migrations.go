package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

// Встроенные SQL-миграции локального mock-хранилища (SQLite).
// Номер последней применённой хранится в PRAGMA user_version.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

func migrationFiles() ([]string, error) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// applyMigrations выполняет ещё не применённые миграции по порядку.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	names, err := migrationFiles()
	if err != nil {
		return err
	}
	for i := version; i < len(names); i++ {
		ddl, err := migrationsFS.ReadFile(names[i])
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(ddl)); err != nil {
			return fmt.Errorf("%s: %w", names[i], err)
		}
		// PRAGMA не принимает параметры
		if _, err := db.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			return err
		}
	}
	return nil
}
