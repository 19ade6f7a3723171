// Package migrator applies the embedded schema migrations for the service
// tables and the built-in reference tables.
package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Migration holds migration data for one version.
type Migration struct {
	Version int
	SemVer  string
	UpSQL   string
	DownSQL string
}

// Migrator applies migrations using embedded SQL.
type Migrator struct {
	migrations  []Migration
	TablePrefix string
	Driver      string
}

// ErrNoVersionTable indicates the schema version table is missing.
var ErrNoVersionTable = errors.New("schema version table not found")

// NewWithDriver returns a Migrator for the specified driver.
func NewWithDriver(driver string) *Migrator {
	return NewWithDriverAndPrefix(driver, "")
}

// NewWithDriverAndPrefix returns a Migrator for the driver with table prefix.
func NewWithDriverAndPrefix(driver, prefix string) *Migrator {
	var migs []Migration
	if driver == "postgres" {
		migs = postgresMigrations
	} else {
		migs = defaultMigrations
	}
	if prefix != "" {
		migs = withPrefix(migs, prefix)
	}
	return &Migrator{migrations: migs, TablePrefix: prefix, Driver: driver}
}

// withPrefix rewrites the default reftab_ prefix of the service tables. The
// reference tables themselves are never prefixed.
func withPrefix(migs []Migration, prefix string) []Migration {
	res := make([]Migration, len(migs))
	for i, m := range migs {
		m.UpSQL = strings.ReplaceAll(m.UpSQL, "reftab_", prefix)
		m.DownSQL = strings.ReplaceAll(m.DownSQL, "reftab_", prefix)
		res[i] = m
	}
	return res
}

func (m *Migrator) versionTable() string {
	prefix := m.TablePrefix
	if prefix == "" {
		prefix = "reftab_"
	}
	return prefix + "schema_version"
}

// ensureVersionTable creates the version table if it doesn't exist and inserts
// an initial row with version=0. It is safe to call multiple times.
func (m *Migrator) ensureVersionTable(ctx context.Context, db *sql.DB) error {
	tbl := m.versionTable()
	_, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
        version INT PRIMARY KEY,
        semver VARCHAR(32),
        applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`, tbl))
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s(version) VALUES(0)`, tbl)); err != nil {
		msg := strings.ToLower(err.Error())
		if !strings.Contains(msg, "duplicate") && !strings.Contains(msg, "conflict") {
			return err
		}
	}
	return nil
}

// Current returns the current schema version.
func (m *Migrator) Current(ctx context.Context, db *sql.DB) (int, error) {
	if err := m.ensureVersionTable(ctx, db); err != nil {
		return 0, err
	}
	row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT MAX(version) FROM %s", m.versionTable()))
	var v sql.NullInt64
	if err := row.Scan(&v); err != nil {
		if isTableMissing(err) {
			return 0, ErrNoVersionTable
		}
		return 0, err
	}
	if !v.Valid {
		return 0, nil
	}
	return int(v.Int64), nil
}

func splitSQL(src string) []string {
	stmts := strings.Split(src, ";")
	var res []string
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s != "" {
			res = append(res, s)
		}
	}
	return res
}

func execAll(ctx context.Context, tx *sql.Tx, src string) error {
	for _, stmt := range splitSQL(src) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

// Up migrates the schema up to target. target=0 means latest.
func (m *Migrator) Up(ctx context.Context, db *sql.DB, target int) error {
	if target == 0 {
		target = len(m.migrations)
	}
	cur, err := m.Current(ctx, db)
	if err != nil {
		return err
	}
	if cur >= target {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i := cur; i < target; i++ {
		if err := execAll(ctx, tx, m.migrations[i].UpSQL); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Down migrates the schema down to target version.
func (m *Migrator) Down(ctx context.Context, db *sql.DB, target int) error {
	cur, err := m.Current(ctx, db)
	if err != nil {
		return err
	}
	if target >= cur {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for i := cur - 1; i >= target; i-- {
		if err := execAll(ctx, tx, m.migrations[i].DownSQL); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SQLForRange returns the SQL statements needed to migrate from->to.
func (m *Migrator) SQLForRange(from, to int) []string {
	var res []string
	if to > from {
		for i := from; i < to; i++ {
			res = append(res, splitSQL(m.migrations[i].UpSQL)...)
		}
	} else if to < from {
		for i := from - 1; i >= to; i-- {
			res = append(res, splitSQL(m.migrations[i].DownSQL)...)
		}
	}
	return res
}

// Len returns the number of known migrations.
func (m *Migrator) Len() int { return len(m.migrations) }

func isTableMissing(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "doesn't exist") || strings.Contains(msg, "no such table") || strings.Contains(msg, "undefined table")
}
