package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // register sqlite driver
)

const busyTimeoutMillis = 5000

// Open opens the channel catalog at path, creating the parent directory and
// applying pending migrations.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// The writer queue and the CLI readers share one file; a single
	// connection keeps pragma state consistent.
	db.SetMaxOpenConns(1)

	pragmas := []struct {
		stmt string
		desc string
	}{
		{stmt: fmt.Sprintf(`PRAGMA busy_timeout = %d;`, busyTimeoutMillis), desc: "set busy timeout"},
		{stmt: `PRAGMA foreign_keys = ON;`, desc: "enable foreign keys"},
		{stmt: `PRAGMA journal_mode = WAL;`, desc: "set wal mode"},
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p.stmt); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("%s: %w", p.desc, err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()

		return nil, err
	}

	return db, nil
}
