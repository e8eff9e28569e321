// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests and server bootstrap.
// Each database dialect has its own directory of *.sql files.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// FS holds all migration files embedded at compile time.
// Use Postgres or SQLite to get the directory for one dialect.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Postgres returns the Postgres migrations rooted at their directory.
func Postgres() fs.FS { return mustSub("postgres") }

// SQLite returns the SQLite migrations rooted at their directory.
func SQLite() fs.FS { return mustSub("sqlite") }

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(FS, dir)
	if err != nil {
		panic("migrations: " + err.Error())
	}
	return sub
}

// Up applies every pending migration for dialect to db.
func Up(ctx context.Context, dialect goose.Dialect, db *sql.DB) error {
	var fsys fs.FS
	switch dialect {
	case goose.DialectPostgres:
		fsys = Postgres()
	case goose.DialectSQLite3:
		fsys = SQLite()
	default:
		return fmt.Errorf("migrations.Up: unsupported dialect %q", dialect)
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("migrations.Up: create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}
	return nil
}
