package db

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	directionUp   = "up"
	directionDown = "down"
)

const schemaTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`

// Migration is one numbered schema change, stored as
// migrations/NNNN_name.up.sql and migrations/NNNN_name.down.sql.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

type migrationFile struct {
	version   int
	name      string
	direction string
}

// parseFilename splits "0002_kv_revision.up.sql" into its parts.
func parseFilename(filename string) (migrationFile, error) {
	base, direction, ok := strings.Cut(strings.TrimSuffix(filename, ".sql"), ".")
	if !ok || !strings.HasSuffix(filename, ".sql") || (direction != directionUp && direction != directionDown) {
		return migrationFile{}, fmt.Errorf("expected NNNN_name.up.sql or NNNN_name.down.sql, got %q", filename)
	}

	num, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return migrationFile{}, fmt.Errorf("missing name in %q", filename)
	}

	version, err := strconv.Atoi(num)
	if err != nil {
		return migrationFile{}, fmt.Errorf("version %q is not a number", num)
	}
	if version < 1 {
		return migrationFile{}, fmt.Errorf("version must be positive, got %d", version)
	}

	return migrationFile{version: version, name: name, direction: direction}, nil
}

// loadMigrations reads the embedded files, sorted by version. Every version
// needs exactly one up and one down file with the same name.
func loadMigrations() ([]Migration, error) {
	type pair struct {
		Migration
		up, down bool
	}
	byVersion := make(map[int]*pair)

	err := fs.WalkDir(migrationFiles, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		f, err := parseFilename(d.Name())
		if err != nil {
			return err
		}
		body, err := migrationFiles.ReadFile(path)
		if err != nil {
			return err
		}

		p, ok := byVersion[f.version]
		if !ok {
			p = &pair{Migration: Migration{Version: f.version, Name: f.name}}
			byVersion[f.version] = p
		}
		if p.Name != f.name {
			return fmt.Errorf("migration %04d is named both %q and %q", f.version, p.Name, f.name)
		}

		switch {
		case f.direction == directionUp && !p.up:
			p.UpSQL, p.up = string(body), true
		case f.direction == directionDown && !p.down:
			p.DownSQL, p.down = string(body), true
		default:
			return fmt.Errorf("duplicate %s file for migration %04d", f.direction, f.version)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	out := make([]Migration, 0, len(byVersion))
	for _, p := range byVersion {
		if !p.up || !p.down {
			return nil, fmt.Errorf("migration %04d (%s) needs both an up and a down file", p.Version, p.Name)
		}
		out = append(out, p.Migration)
	}
	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })

	return out, nil
}

type migrator struct {
	conn       *sql.DB
	migrations []Migration
	log        zerolog.Logger
}

func newMigrator(ctx context.Context, conn *sql.DB) (*migrator, error) {
	migrations, err := loadMigrations()
	if err != nil {
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, schemaTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	return &migrator{
		conn:       conn,
		migrations: migrations,
		log:        log.With().Str("component", "db").Logger(),
	}, nil
}

func (m *migrator) latest() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

func (m *migrator) current(ctx context.Context) (int, error) {
	var v int
	err := m.conn.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// up applies every migration not yet recorded, in version order.
func (m *migrator) up(ctx context.Context) error {
	applied, err := appliedVersions(ctx, m.conn)
	if err != nil {
		return err
	}

	from := len(applied)
	for _, mig := range m.migrations {
		if applied[mig.Version] {
			continue
		}
		err := m.step(ctx, mig.UpSQL,
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			mig.Version, mig.Name, time.Now().UnixNano())
		if err != nil {
			return fmt.Errorf("migration %04d (%s): %w", mig.Version, mig.Name, err)
		}
		applied[mig.Version] = true
	}

	if len(applied) > from {
		m.log.Info().Int("applied", len(applied)-from).Int("version", m.latest()).Msg("database schema upgraded")
	}
	return nil
}

// down reverts the n most recent applied migrations.
func (m *migrator) down(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("n must be positive, got %d", n)
	}

	applied, err := appliedVersions(ctx, m.conn)
	if err != nil {
		return err
	}

	var revert []Migration
	for _, mig := range slices.Backward(m.migrations) {
		if applied[mig.Version] {
			revert = append(revert, mig)
		}
	}
	if n > len(revert) {
		return fmt.Errorf("cannot revert %d migrations, only %d applied", n, len(revert))
	}

	for _, mig := range revert[:n] {
		m.log.Debug().Int("version", mig.Version).Str("name", mig.Name).Msg("reverting migration")
		err := m.step(ctx, mig.DownSQL, "DELETE FROM schema_migrations WHERE version = ?", mig.Version)
		if err != nil {
			return fmt.Errorf("revert migration %04d (%s): %w", mig.Version, mig.Name, err)
		}
	}
	return nil
}

// step runs a migration body and its bookkeeping statement in one transaction.
func (m *migrator) step(ctx context.Context, body, record string, args ...any) (err error) {
	tx, err := m.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, ignoreDone(tx.Rollback()))
		}
	}()

	if _, err = tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func appliedVersions(ctx context.Context, conn *sql.DB) (map[int]bool, error) {
	rows, err := conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read applied migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func migrateUp(ctx context.Context, conn *sql.DB) error {
	m, err := newMigrator(ctx, conn)
	if err != nil {
		return err
	}
	return m.up(ctx)
}

// MigrateDown reverts the last n applied migrations, newest first.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	m, err := newMigrator(ctx, conn)
	if err != nil {
		return err
	}
	return m.down(ctx, n)
}

// SchemaVersion reports the newest applied migration and the newest one
// this build ships. current > latest means a newer nudge wrote the file.
func (db *DB) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	m, err := newMigrator(ctx, db.conn)
	if err != nil {
		return 0, 0, err
	}
	current, err = m.current(ctx)
	return current, m.latest(), err
}
