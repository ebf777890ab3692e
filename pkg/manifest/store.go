// Package manifest keeps a SQLite history of the documents written by each
// build. It is a record only: nothing reads it back to decide what to build.
package manifest

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at TEXT NOT NULL,
	root       TEXT NOT NULL,
	out_dir    TEXT NOT NULL,
	mode       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS outputs (
	build_id INTEGER NOT NULL REFERENCES builds(id),
	output   TEXT NOT NULL,
	source   TEXT NOT NULL,
	size     INTEGER NOT NULL,
	sha256   TEXT NOT NULL,
	title    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS outputs_build_id ON outputs(build_id);
`

// Entry is one written document.
type Entry struct {
	BuildID int64     `json:"buildId"`
	BuiltAt time.Time `json:"builtAt"`
	Output  string    `json:"output"`
	Source  string    `json:"source"`
	Size    int64     `json:"size"`
	SHA256  string    `json:"sha256"`
	Title   string    `json:"title,omitempty"`
}

// Store is an open manifest database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the manifest at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init manifest %s: %w", path, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// BeginBuild records the start of a build and returns its id.
func (s *Store) BeginBuild(root, outDir, mode string) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO builds (started_at, root, out_dir, mode) VALUES (?, ?, ?, ?)",
		s.now().UTC().Format(time.RFC3339Nano), root, outDir, mode,
	)
	if err != nil {
		return 0, fmt.Errorf("begin build: %w", err)
	}
	return res.LastInsertId()
}

// BuildCount returns the number of recorded builds.
func (s *Store) BuildCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM builds").Scan(&n); err != nil {
		return 0, fmt.Errorf("count builds: %w", err)
	}
	return n, nil
}

// RecordOutput stores doc as written to output from source.
func (s *Store) RecordOutput(buildID int64, output, source, title string, doc []byte) error {
	sum := sha256.Sum256(doc)
	_, err := s.db.Exec(
		"INSERT INTO outputs (build_id, output, source, size, sha256, title) VALUES (?, ?, ?, ?, ?, ?)",
		buildID, output, source, len(doc), hex.EncodeToString(sum[:]), title,
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", output, err)
	}
	return nil
}

// Entries returns up to limit recorded outputs, newest build first. A limit
// of zero or less returns everything.
func (s *Store) Entries(limit int) ([]Entry, error) {
	query := `SELECT o.build_id, b.started_at, o.output, o.source, o.size, o.sha256, o.title
		FROM outputs o JOIN builds b ON b.id = o.build_id
		ORDER BY o.build_id DESC, o.rowid ASC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query manifest: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var builtAt string
		if err := rows.Scan(&e.BuildID, &builtAt, &e.Output, &e.Source, &e.Size, &e.SHA256, &e.Title); err != nil {
			return nil, err
		}
		e.BuiltAt, err = time.Parse(time.RFC3339Nano, builtAt)
		if err != nil {
			return nil, fmt.Errorf("build %d: bad timestamp %q: %w", e.BuildID, builtAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// DumpJSON writes Entries(limit) to w as indented JSON.
func (s *Store) DumpJSON(w io.Writer, limit int) error {
	entries, err := s.Entries(limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []Entry{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}
