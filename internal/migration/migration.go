package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Dialect selects the placeholder style of the bookkeeping statements.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

var (
	// ErrSchemaBehind means the database needs 'habitlit migrate'.
	ErrSchemaBehind = errors.New("database schema is behind the application")
	// ErrSchemaAhead means the database was migrated by a newer release.
	ErrSchemaAhead = errors.New("database schema is newer than the application")
)

// Migration is one NNN_name.sql file.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Status compares the applied history with the embedded files.
type Status struct {
	Current int
	Latest  int
	Pending []Migration
}

func (s Status) UpToDate() bool { return len(s.Pending) == 0 && s.Current == s.Latest }

// Runner applies embedded SQL files in version order. Every applied file is
// recorded in schema_migrations together with the time it was applied.
type Runner struct {
	db      *sql.DB
	fs      fs.FS
	dialect Dialect
}

// NewRunner reads *.sql files from the root of migrationFS.
func NewRunner(db *sql.DB, migrationFS fs.FS, dialect Dialect) *Runner {
	return &Runner{db: db, fs: migrationFS, dialect: dialect}
}

func (r *Runner) placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		if r.dialect == Postgres {
			ph[i] = "$" + strconv.Itoa(i+1)
		} else {
			ph[i] = "?"
		}
	}
	return strings.Join(ph, ", ")
}

func (r *Runner) ensureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

// CurrentVersion returns the highest applied version, 0 for a fresh database.
func (r *Runner) CurrentVersion(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}
	var version sql.NullInt64
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(version.Int64), nil
}

func parseFileName(name string) (int, string, error) {
	prefix, rest, ok := strings.Cut(name, "_")
	if !ok {
		return 0, "", fmt.Errorf("invalid migration filename %s (expected NNN_name.sql)", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, "", fmt.Errorf("invalid version number in filename %s: %w", name, err)
	}
	if version < 1 {
		return 0, "", fmt.Errorf("invalid version number in filename %s: version must be at least 1", name)
	}
	return version, strings.TrimSuffix(rest, ".sql"), nil
}

// Files returns the embedded migrations sorted by version.
func (r *Runner) Files() ([]Migration, error) {
	entries, err := fs.ReadDir(r.fs, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		version, name, err := parseFileName(e.Name())
		if err != nil {
			return nil, err
		}
		content, err := fs.ReadFile(r.fs, e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", e.Name(), err)
		}
		out = append(out, Migration{Version: version, Name: name, SQL: string(content)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	for i := 1; i < len(out); i++ {
		if out[i].Version == out[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", out[i].Version)
		}
	}
	return out, nil
}

// Status reports the applied version, the newest embedded version and the
// files still to apply.
func (r *Runner) Status(ctx context.Context) (Status, error) {
	current, err := r.CurrentVersion(ctx)
	if err != nil {
		return Status{}, err
	}
	files, err := r.Files()
	if err != nil {
		return Status{}, err
	}

	st := Status{Current: current}
	if len(files) > 0 {
		st.Latest = files[len(files)-1].Version
	}
	for _, m := range files {
		if m.Version > current {
			st.Pending = append(st.Pending, m)
		}
	}
	return st, nil
}

// Check returns ErrSchemaBehind or ErrSchemaAhead unless the database is at
// the latest embedded version.
func (r *Runner) Check(ctx context.Context) error {
	st, err := r.Status(ctx)
	if err != nil {
		return err
	}
	switch {
	case st.Current > st.Latest:
		return fmt.Errorf("%w (%d > %d), please upgrade habitlit", ErrSchemaAhead, st.Current, st.Latest)
	case st.Current < st.Latest:
		return fmt.Errorf("%w (%d < %d), run 'habitlit migrate'", ErrSchemaBehind, st.Current, st.Latest)
	}
	return nil
}

// Apply runs every pending migration in its own transaction and returns how
// many were applied. logFn may be nil.
func (r *Runner) Apply(ctx context.Context, logFn func(string)) (int, error) {
	if logFn == nil {
		logFn = func(string) {}
	}

	st, err := r.Status(ctx)
	if err != nil {
		return 0, err
	}
	if st.Current > st.Latest {
		return 0, fmt.Errorf("%w (%d > %d), please upgrade habitlit", ErrSchemaAhead, st.Current, st.Latest)
	}
	if len(st.Pending) == 0 {
		logFn(fmt.Sprintf("Database schema is up to date (version %d)", st.Current))
		return 0, nil
	}

	logFn(fmt.Sprintf("Applying %d migration(s): version %d -> %d", len(st.Pending), st.Current, st.Latest))
	start := time.Now()
	for i, m := range st.Pending {
		if err := r.apply(ctx, m); err != nil {
			return i, err
		}
		logFn(fmt.Sprintf("  ✓ %03d_%s", m.Version, m.Name))
	}
	logFn(fmt.Sprintf("Applied %d migration(s) in %v", len(st.Pending), time.Since(start).Round(time.Millisecond)))
	return len(st.Pending), nil
}

func (r *Runner) apply(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}
	record := "INSERT INTO schema_migrations (version, name, applied_at) VALUES (" + r.placeholders(3) + ")"
	if _, err := tx.ExecContext(ctx, record, m.Version, m.Name, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}
