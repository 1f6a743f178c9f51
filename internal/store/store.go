// Package store keeps a searchable SQLite index of parsed bibliographies.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/drgo/bibdoc"
)

// ErrNotFound is returned when no entry has the requested key.
var ErrNotFound = errors.New("entry not found")

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	key    TEXT PRIMARY KEY,
	kind   TEXT NOT NULL,
	source TEXT NOT NULL,
	line   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS fields (
	entry_key TEXT NOT NULL REFERENCES entries(key) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	name      TEXT NOT NULL,
	value     TEXT NOT NULL,
	inherited INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (entry_key, name)
);
CREATE TABLE IF NOT EXISTS names (
	entry_key TEXT NOT NULL REFERENCES entries(key) ON DELETE CASCADE,
	role      TEXT NOT NULL,
	position  INTEGER NOT NULL,
	family    TEXT NOT NULL,
	given     TEXT NOT NULL,
	PRIMARY KEY (entry_key, role, position)
);
CREATE INDEX IF NOT EXISTS names_family ON names(family);
`

// roles are the name-list fields indexed into the names table.
var roles = []string{"author", "editor", "translator"}

type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// Record is an entry as stored: its effective fields in order.
type Record struct {
	Key    string
	Kind   string
	Source string
	Line   int
	Fields []bibdoc.Field
}

// Open opens or creates the index at path.
func Open(ctx context.Context, path string, log logrus.FieldLogger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// PRAGMA foreign_keys is per connection
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set PRAGMA: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveBibliography replaces the stored copy of every entry in bib. Entries
// whose inheritance or names cannot be resolved are stored with their own
// fields and without names; a warning is logged for each.
func (s *Store) SaveBibliography(ctx context.Context, bib *bibdoc.Bibliography) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	n := 0
	for e := range bib.All() {
		if err := s.saveEntry(ctx, tx, bib, e); err != nil {
			return 0, err
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return n, nil
}

func (s *Store) saveEntry(ctx context.Context, tx *sql.Tx, bib *bibdoc.Bibliography, e *bibdoc.Entry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, e.Key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", e.Key, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entries (key, kind, source, line) VALUES (?, ?, ?, ?)`,
		e.Key, e.Kind, bib.Name(), e.Line); err != nil {
		return fmt.Errorf("failed to insert %s: %w", e.Key, err)
	}

	fields, err := bib.ResolvedFields(e)
	if err != nil {
		s.log.WithError(err).WithField("key", e.Key).Warn("storing own fields only")
		fields = e.Fields()
	}
	for i, f := range fields {
		_, own := e.Field(f.Name)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fields (entry_key, position, name, value, inherited) VALUES (?, ?, ?, ?, ?)`,
			e.Key, i, f.Name, f.Value, !own); err != nil {
			return fmt.Errorf("failed to insert %s.%s: %w", e.Key, f.Name, err)
		}
	}

	for _, role := range roles {
		names, _, err := e.Names(role)
		if err != nil {
			s.log.WithError(err).WithField("key", e.Key).Warn("names not indexed")
			continue
		}
		for i, name := range names {
			if name.IsOthers() {
				continue
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO names (entry_key, role, position, family, given) VALUES (?, ?, ?, ?, ?)`,
				e.Key, role, i, name.Family(), name.Given()); err != nil {
				return fmt.Errorf("failed to insert name of %s: %w", e.Key, err)
			}
		}
	}
	return nil
}

// Entry returns the stored record for key.
func (s *Store) Entry(ctx context.Context, key string) (*Record, error) {
	r := Record{Key: key}
	err := s.db.QueryRowContext(ctx,
		`SELECT kind, source, line FROM entries WHERE key = ?`, key,
	).Scan(&r.Kind, &r.Source, &r.Line)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query entry: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, value FROM fields WHERE entry_key = ? ORDER BY position`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query fields: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var f bibdoc.Field
		if err := rows.Scan(&f.Name, &f.Value); err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}
		r.Fields = append(r.Fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fields: %w", err)
	}
	return &r, nil
}

// Search returns the keys of entries whose field contains substr, ignoring
// ASCII case.
func (s *Store) Search(ctx context.Context, field, substr string) ([]string, error) {
	return s.keys(ctx,
		`SELECT DISTINCT entry_key FROM fields
		 WHERE name = ? AND instr(lower(value), lower(?)) > 0
		 ORDER BY entry_key`, field, substr)
}

// ByName returns the keys of entries with a person of the given family name
// in any role.
func (s *Store) ByName(ctx context.Context, family string) ([]string, error) {
	return s.keys(ctx,
		`SELECT DISTINCT entry_key FROM names WHERE family = ? ORDER BY entry_key`, family)
}

func (s *Store) keys(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keys: %w", err)
	}
	return keys, nil
}
