package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsTable = `CREATE TABLE IF NOT EXISTS kv_migrations (
    name       TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// migration pairs an up script with its down script by shared name prefix,
// e.g. 0002_kv_snapshots.
type migration struct {
	name string
	up   string
	down string
}

func loadMigrations() ([]migration, error) {
	ups, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	slices.Sort(ups)
	out := make([]migration, 0, len(ups))
	for _, up := range ups {
		name := strings.TrimSuffix(strings.TrimPrefix(up, "migrations/"), ".up.sql")
		upSQL, err := migrationFiles.ReadFile(up)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", up, err)
		}
		downSQL, err := migrationFiles.ReadFile("migrations/" + name + ".down.sql")
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, migration{name: name, up: string(upSQL), down: string(downSQL)})
	}
	return out, nil
}

// AppliedMigrations lists recorded migration names in apply order.
func AppliedMigrations(db *sql.DB) ([]string, error) {
	if _, err := db.Exec(migrationsTable); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}
	rows, err := db.Query(`SELECT name FROM kv_migrations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// MigrateUp applies every migration not yet recorded.
func MigrateUp(db *sql.DB) error {
	all, err := loadMigrations()
	if err != nil {
		return err
	}
	applied, err := AppliedMigrations(db)
	if err != nil {
		return err
	}
	for _, m := range all {
		if slices.Contains(applied, m.name) {
			continue
		}
		if err := runMigration(db, m.name, m.up, `INSERT INTO kv_migrations (name) VALUES (?)`); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown reverts every recorded migration, newest first.
func MigrateDown(db *sql.DB) error {
	all, err := loadMigrations()
	if err != nil {
		return err
	}
	applied, err := AppliedMigrations(db)
	if err != nil {
		return err
	}
	for _, m := range slices.Backward(all) {
		if !slices.Contains(applied, m.name) {
			continue
		}
		if err := runMigration(db, m.name, m.down, `DELETE FROM kv_migrations WHERE name = ?`); err != nil {
			return err
		}
	}
	return nil
}

func runMigration(db *sql.DB, name, script, record string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(script); err != nil {
		return fmt.Errorf("apply migration %s: %w", name, err)
	}
	if _, err := tx.Exec(record, name); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	return tx.Commit()
}
