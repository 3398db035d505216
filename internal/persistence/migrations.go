package persistence

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaMigrations are applied in order; PRAGMA user_version records how many
// have run.
var schemaMigrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS channel_observations (
			hash INTEGER NOT NULL,
			name TEXT NOT NULL,
			psk_label TEXT NOT NULL,
			source TEXT NOT NULL,
			first_seen INTEGER NOT NULL,
			last_seen INTEGER NOT NULL,
			hits INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (hash, name, psk_label)
		);`,
	},
	{
		`CREATE INDEX IF NOT EXISTS channel_observations_last_seen_idx ON channel_observations(last_seen DESC);`,
	},
}

// SchemaVersion is the user_version of a fully migrated database.
func SchemaVersion() int {
	return len(schemaMigrations)
}

func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > len(schemaMigrations) {
		return fmt.Errorf("schema version %d is newer than supported %d", version, len(schemaMigrations))
	}

	for i := version; i < len(schemaMigrations); i++ {
		if err := applyMigration(ctx, db, i+1, schemaMigrations[i]); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, target int, stmts []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", target, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", target, err)
		}
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, target)); err != nil {
		return fmt.Errorf("set schema version %d: %w", target, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", target, err)
	}

	return nil
}
