// Package sqlite is a SQLite-backed sink.Sink and delivery.CodeStore.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	sqlite3 "github.com/mattn/go-sqlite3"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/delivery"
	"github.com/reoring/goform/sink"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store persists submissions, unique values and confirmation codes.
type Store struct {
	db *sql.DB
}

// Open migrates the database at path and opens it.
func Open(path string) (*Store, error) {
	if err := Migrate(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Migrate applies all embedded up migrations to the database at path.
func Migrate(path string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path)
	if err != nil {
		return fmt.Errorf("sqlite: migrate %s: %w", path, err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func (s *Store) Close() error { return s.db.Close() }

// withTx runs fn in a transaction.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isConstraint(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
}

// Save implements sink.Sink.
func (s *Store) Save(ctx context.Context, sub sink.Submission) error {
	raw, err := goform.MarshalValues(sub.Values)
	if err != nil {
		return err
	}
	at := sub.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO submissions(id, form, values_json, created_at) VALUES (?, ?, ?, ?)`,
			sub.ID, sub.Form, string(raw), at.Truncate(time.Second)); err != nil {
			return err
		}
		for _, f := range sub.Unique {
			v, ok := sub.Values[f]
			if !ok || v.IsAbsent() {
				continue
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO unique_values(form, field, value, submission_id) VALUES (?, ?, ?, ?)`,
				sub.Form, f, v.String(), sub.ID)
			if isConstraint(err) {
				return &sink.ConflictError{Field: f, Value: v.String()}
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Submissions lists stored submissions for form, oldest first.
func (s *Store) Submissions(ctx context.Context, form string) ([]sink.Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, values_json, created_at FROM submissions WHERE form = ? ORDER BY created_at, rowid`, form)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []sink.Submission
	for rows.Next() {
		var (
			sub sink.Submission
			raw string
		)
		if err := rows.Scan(&sub.ID, &raw, &sub.At); err != nil {
			return nil, err
		}
		if sub.Values, err = goform.UnmarshalValues([]byte(raw)); err != nil {
			return nil, fmt.Errorf("sqlite: submission %s: %w", sub.ID, err)
		}
		sub.Form = form
		out = append(out, sub)
	}
	return out, rows.Err()
}

// PutCode implements delivery.CodeStore.
func (s *Store) PutCode(ctx context.Context, address, code string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO codes(address, code, expires_at) VALUES (?, ?, ?)
	ON CONFLICT(address) DO UPDATE SET
	 code=excluded.code,
	 expires_at=excluded.expires_at;
	`, address, code, expiresAt.UTC())
	return err
}

// GetCode implements delivery.CodeStore.
func (s *Store) GetCode(ctx context.Context, address string) (string, time.Time, error) {
	var (
		code string
		exp  time.Time
	)
	err := s.db.QueryRowContext(ctx, `SELECT code, expires_at FROM codes WHERE address = ?`, address).Scan(&code, &exp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, delivery.ErrNoCode
	}
	return code, exp, err
}

// DeleteCode implements delivery.CodeStore.
func (s *Store) DeleteCode(ctx context.Context, address string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM codes WHERE address = ?`, address)
	return err
}

var (
	_ sink.Sink          = (*Store)(nil)
	_ delivery.CodeStore = (*Store)(nil)
)
