package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// migrationFiles holds the schema scripts for every supported dialect,
// one directory per driver name, applied in lexical order.
//
//go:embed migrations
var migrationFiles embed.FS

// migrationScripts returns the contents of every schema script for dialect.
func migrationScripts(dialect string) ([]string, error) {
	dir := path.Join("migrations", dialect)
	entries, err := fs.ReadDir(migrationFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: no migrations for %q", ErrUnsupportedDriver, dialect)
	}

	scripts := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := fs.ReadFile(migrationFiles, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		scripts = append(scripts, string(data))
	}
	return scripts, nil
}

// splitStatements breaks a script into individual statements. Scripts must not
// contain semicolons inside literals.
func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if stmt := strings.TrimSpace(p); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// migrateSQL applies the idempotent schema scripts for driver to db.
func migrateSQL(ctx context.Context, db *sql.DB, driver string) error {
	scripts, err := migrationScripts(driver)
	if err != nil {
		return err
	}
	for _, script := range scripts {
		for _, stmt := range splitStatements(script) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return NewDBError(err, "failed to apply schema").WithQuery(stmt)
			}
		}
	}
	return nil
}
