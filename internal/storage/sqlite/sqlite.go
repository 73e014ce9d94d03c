// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. It gives the snapshot transactional writes for free: Save
// replaces every row inside one transaction, so a crash mid-save leaves
// the previous snapshot intact.
//
// The blank import below registers the sqlite3 driver with database/sql.
// The driver's init() function does this automatically when the package
// is loaded — we never call anything from it directly.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/samber/oops"

	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db   *sql.DB
	path string
}

// schema is idempotent, so it runs before every Load and Save.
//
//	id            — normalised student ID (the directory key)
//	position      — insertion order; listings are ORDER BY position
//	last_login_at — NULL until the first successful login
const schema = `
	CREATE TABLE IF NOT EXISTS students (
		id            TEXT    PRIMARY KEY,
		position      INTEGER NOT NULL,
		name          TEXT    NOT NULL,
		email         TEXT    NOT NULL,
		password_hash TEXT    NOT NULL,
		registered_at TEXT    NOT NULL,
		login_count   INTEGER NOT NULL,
		last_login_at TEXT
	)`

// New prepares a connection pool for the SQLite database at path.
//
// Nothing touches the file yet: a file that is not a database surfaces
// from Load as storage.ErrCorruptData, the same as a damaged JSON
// snapshot, instead of stopping the program here.
func New(path string) (*SQLite, error) {
	// sql.Open does NOT open a real connection yet — it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	return &SQLite{Db: db, path: path}, nil
}

// Location returns the database path.
func (s *SQLite) Location() string {
	return s.path
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// Load reads every row, in insertion order, into a Directory.
func (s *SQLite) Load() (*types.Directory, error) {
	if _, err := s.Db.Exec(schema); err != nil {
		return types.NewDirectory(), s.corrupt(fmt.Errorf("sqlite.Load: create table: %w", err))
	}

	rows, err := s.Db.Query(`
		SELECT id, name, email, password_hash, registered_at, login_count, last_login_at
		FROM students
		ORDER BY position`)
	if err != nil {
		return types.NewDirectory(), s.corrupt(fmt.Errorf("sqlite.Load: query: %w", err))
	}
	defer rows.Close()

	dir := types.NewDirectory()
	for rows.Next() {
		var (
			student      types.Student
			registeredAt string
			lastLoginAt  sql.NullString
		)
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.PasswordHash,
			&registeredAt,
			&student.LoginCount,
			&lastLoginAt,
		); err != nil {
			return types.NewDirectory(), s.corrupt(fmt.Errorf("sqlite.Load: scan row: %w", err))
		}

		if err := student.RegisteredAt.UnmarshalText([]byte(registeredAt)); err != nil {
			return types.NewDirectory(), s.corrupt(fmt.Errorf("sqlite.Load: registered_at: %w", err))
		}
		if lastLoginAt.Valid {
			var ts types.Timestamp
			if err := ts.UnmarshalText([]byte(lastLoginAt.String)); err != nil {
				return types.NewDirectory(), s.corrupt(fmt.Errorf("sqlite.Load: last_login_at: %w", err))
			}
			student.LastLoginAt = &ts
		}

		dir.Put(student)
	}

	// rows.Err() captures any error that occurred during iteration.
	if err := rows.Err(); err != nil {
		return types.NewDirectory(), s.corrupt(fmt.Errorf("sqlite.Load: rows iteration: %w", err))
	}
	if err := storage.CheckRecords(dir); err != nil {
		return types.NewDirectory(), s.corrupt(fmt.Errorf("sqlite.Load: check: %w", err))
	}

	return dir, nil
}

// Save replaces the table contents with dir inside one transaction.
func (s *SQLite) Save(dir *types.Directory) (err error) {
	tx, err := s.Db.Begin()
	if err != nil {
		return s.persistence(fmt.Errorf("sqlite.Save: begin: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec(schema); err != nil {
		return s.persistence(fmt.Errorf("sqlite.Save: create table: %w", err))
	}
	if _, err = tx.Exec("DELETE FROM students"); err != nil {
		return s.persistence(fmt.Errorf("sqlite.Save: clear: %w", err))
	}

	// Prepared statements use placeholders (?). The driver sends the query
	// and the values separately, so record fields are never parsed as SQL.
	stmt, err := tx.Prepare(`
		INSERT INTO students
			(id, position, name, email, password_hash, registered_at, login_count, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return s.persistence(fmt.Errorf("sqlite.Save: prepare: %w", err))
	}
	defer stmt.Close()

	for position, student := range dir.Students() {
		var lastLogin sql.NullString
		if student.LastLoginAt != nil {
			lastLogin = sql.NullString{String: student.LastLoginAt.String(), Valid: true}
		}

		if _, err = stmt.Exec(
			student.ID,
			position,
			student.Name,
			student.Email,
			student.PasswordHash,
			student.RegisteredAt.String(),
			student.LoginCount,
			lastLogin,
		); err != nil {
			return s.persistence(fmt.Errorf("sqlite.Save: insert %s: %w", student.ID, err))
		}
	}

	if err = tx.Commit(); err != nil {
		return s.persistence(fmt.Errorf("sqlite.Save: commit: %w", err))
	}
	return nil
}

func (s *SQLite) corrupt(err error) error {
	return oops.Code("SNAPSHOT_CORRUPT").
		With("path", s.path).
		Wrap(errors.Join(storage.ErrCorruptData, err))
}

func (s *SQLite) persistence(err error) error {
	return oops.Code("SNAPSHOT_SAVE_FAILED").
		With("path", s.path).
		Wrap(errors.Join(storage.ErrPersistence, err))
}
