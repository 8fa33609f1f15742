// Package store provides the SQLite side of sticky: durable note records, their
// attachments, and an FTS5 shadow index used for search.
//
// The database is an embedded SQLite file opened through ncruces/go-sqlite3
// (a pure-Go WASM build that ships FTS5), in WAL mode.
//
// Schema:
//   - notes:       one row per note, keyed by a case-insensitive ID
//   - attachments: bundle sibling files, cascading with their note
//   - notes_fts:   FTS5 table (id UNINDEXED, plain_text)
//
// Invariant: after every write, notes_fts holds exactly one row per note and
// its text equals notes.plain_text. Upsert maintains this inside a single
// transaction.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/sticky-situation/sticky/internal/sticky"
)

// DB wraps the SQLite connection holding the note records.
type DB struct {
	conn *sql.DB
	path string
}

// noteColumns is the column list shared by every note query.
const noteColumns = `id, plain_text, rich_text, metadata, color, modified_at, created_at, origin_host`

// Open opens the database file at path.
//
// The parent directory must already exist; Open does not create it. Failures
// wrap sticky.ErrStorage.
//
// The caller MUST call Close() when done.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, storageErr("open database", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, storageErr("open database "+path, err)
	}

	// One reconciliation pass owns the store; a single connection keeps
	// transactions and reads on the same session.
	conn.SetMaxOpenConns(1)

	return &DB{
		conn: conn,
		path: path,
	}, nil
}

// Create opens the database at path and ensures the schema exists.
func Create(path string) (*DB, error) {
	return CreateContext(context.Background(), path)
}

// CreateContext is Create with context support.
func CreateContext(ctx context.Context, path string) (*DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchemaContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the database file location.
func (db *DB) Path() string {
	return db.path
}

// RawDB returns the underlying sql.DB connection.
func (db *DB) RawDB() *sql.DB {
	return db.conn
}

// Close closes the database connection.
// Performs a WAL checkpoint to ensure all changes are persisted.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := db.conn.Close(); err != nil {
		return storageErr("close database", err)
	}

	db.conn = nil
	return nil
}

// InitSchema creates the tables and the search index if they don't exist.
// This is idempotent - safe to call multiple times.
func (db *DB) InitSchema() error {
	return db.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the database schema with context support.
func (db *DB) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY COLLATE NOCASE,
		plain_text TEXT NOT NULL DEFAULT '',
		rich_text BLOB,
		metadata BLOB,
		color TEXT NOT NULL DEFAULT 'yellow',
		modified_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		origin_host TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS attachments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		note_id TEXT NOT NULL COLLATE NOCASE,
		filename TEXT NOT NULL,
		content BLOB,
		UNIQUE (note_id, filename),
		FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_notes_color ON notes(color);
	CREATE INDEX IF NOT EXISTS idx_notes_modified ON notes(modified_at);
	CREATE INDEX IF NOT EXISTS idx_attachments_note ON attachments(note_id);

	-- Shadow index; kept in lockstep with notes by Upsert and Delete
	CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
		id UNINDEXED,
		plain_text
	);
	`

	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return storageErr("initialize schema", err)
	}

	return nil
}

// Upsert inserts or replaces a note, its attachments and its index entry.
//
// Within one transaction the old index row is removed first, then the note
// is written, its attachment rows replaced, and a fresh index row is copied
// from the stored note. No two index rows ever reference the same ID, and
// stale search terms are unreachable as soon as the transaction commits.
func (db *DB) Upsert(note *sticky.Note) error {
	return db.UpsertContext(context.Background(), note)
}

// UpsertContext inserts or replaces a note with context support.
func (db *DB) UpsertContext(ctx context.Context, note *sticky.Note) error {
	if note == nil || note.ID == "" {
		return fmt.Errorf("invalid note: id is required")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes_fts WHERE id = ? COLLATE NOCASE`, note.ID); err != nil {
		return storageErr("clear index for "+note.ID, err)
	}

	query := `
	INSERT INTO notes (` + noteColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		plain_text = excluded.plain_text,
		rich_text = excluded.rich_text,
		metadata = excluded.metadata,
		color = excluded.color,
		modified_at = excluded.modified_at,
		created_at = excluded.created_at,
		origin_host = excluded.origin_host
	`
	_, err = tx.ExecContext(ctx, query,
		note.ID,
		note.PlainText,
		note.RichText,
		note.Metadata,
		colorOrDefault(note.Color),
		note.ModifiedAt,
		note.CreatedAt,
		note.OriginHost,
	)
	if err != nil {
		return storageErr("upsert note "+note.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE note_id = ?`, note.ID); err != nil {
		return storageErr("clear attachments for "+note.ID, err)
	}
	for _, a := range note.Attachments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO attachments (note_id, filename, content) VALUES (?, ?, ?)`,
			note.ID, a.Name, a.Content)
		if err != nil {
			return storageErr(fmt.Sprintf("store attachment %s of %s", a.Name, note.ID), err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO notes_fts (id, plain_text) SELECT id, plain_text FROM notes WHERE id = ?`,
		note.ID); err != nil {
		return storageErr("index note "+note.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}

	return nil
}

// Delete removes a note, its attachments and its index entry.
// Returns nil if the note doesn't exist (idempotent).
func (db *DB) Delete(id string) error {
	return db.DeleteContext(context.Background(), id)
}

// DeleteContext removes a note with context support.
func (db *DB) DeleteContext(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM notes_fts WHERE id = ? COLLATE NOCASE`,
		`DELETE FROM attachments WHERE note_id = ?`,
		`DELETE FROM notes WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return storageErr("delete note "+id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

// Get retrieves a note and its attachments by ID.
// Returns nil, nil when the note does not exist.
func (db *DB) Get(id string) (*sticky.Note, error) {
	return db.GetContext(context.Background(), id)
}

// GetContext retrieves a note by ID with context support.
func (db *DB) GetContext(ctx context.Context, id string) (*sticky.Note, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)

	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get note "+id, err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT filename, content FROM attachments WHERE note_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, storageErr("query attachments of "+id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a sticky.Attachment
		if err := rows.Scan(&a.Name, &a.Content); err != nil {
			return nil, storageErr("scan attachment", err)
		}
		note.Attachments = append(note.Attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate attachments", err)
	}

	return note, nil
}

// AllIDs returns the ID of every stored note, in no particular order.
func (db *DB) AllIDs() ([]string, error) {
	return db.AllIDsContext(context.Background())
}

// AllIDsContext returns every note ID with context support.
func (db *DB) AllIDsContext(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM notes`)
	if err != nil {
		return nil, storageErr("query note ids", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("scan note id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate note ids", err)
	}
	return ids, nil
}

// ModifiedTimes returns the modification time of every stored note, keyed by ID.
func (db *DB) ModifiedTimes() (map[string]int64, error) {
	return db.ModifiedTimesContext(context.Background())
}

// ModifiedTimesContext returns modification times with context support.
func (db *DB) ModifiedTimesContext(ctx context.Context) (map[string]int64, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, modified_at FROM notes`)
	if err != nil {
		return nil, storageErr("query modification times", err)
	}
	defer rows.Close()

	times := make(map[string]int64)
	for rows.Next() {
		var id string
		var ts int64
		if err := rows.Scan(&id, &ts); err != nil {
			return nil, storageErr("scan modification time", err)
		}
		times[id] = ts
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate modification times", err)
	}
	return times, nil
}

// Count returns the total number of notes in the database.
func (db *DB) Count() (int, error) {
	return db.CountContext(context.Background())
}

// CountContext returns the total number of notes with context support.
func (db *DB) CountContext(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&count); err != nil {
		return 0, storageErr("count notes", err)
	}
	return count, nil
}

// Search returns the notes whose indexed text matches query, best match first.
//
// Matching is FTS5 token matching, not substring matching. Each whitespace
// separated term is quoted so punctuation cannot break the query syntax; a
// trailing * on a term keeps its prefix meaning. A query with no searchable
// terms returns no notes. Attachments are not loaded; use Get for those.
func (db *DB) Search(query string) ([]*sticky.Note, error) {
	return db.SearchContext(context.Background(), query)
}

// SearchContext searches notes with context support.
func (db *DB) SearchContext(ctx context.Context, query string) ([]*sticky.Note, error) {
	match := sanitizeQuery(query)
	if match == "" {
		return []*sticky.Note{}, nil
	}

	rows, err := db.conn.QueryContext(ctx, `
	SELECT n.id, n.plain_text, n.rich_text, n.metadata, n.color,
	       n.modified_at, n.created_at, n.origin_host
	FROM notes_fts
	JOIN notes n ON n.id = notes_fts.id
	WHERE notes_fts MATCH ?
	ORDER BY notes_fts.rank
	`, match)
	if err != nil {
		return nil, storageErr("search notes", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// ListFilter configures the List query.
type ListFilter struct {
	// Color filters by appearance tag (empty = all colors)
	Color string
	// Since keeps notes modified at or after this time (zero = no limit)
	Since time.Time
	// Limit restricts the number of results (0 = no limit)
	Limit int
}

// List returns notes matching filter, most recently modified first.
// Attachments are not loaded.
func (db *DB) List(filter ListFilter) ([]*sticky.Note, error) {
	return db.ListContext(context.Background(), filter)
}

// ListContext lists notes with context support.
func (db *DB) ListContext(ctx context.Context, filter ListFilter) ([]*sticky.Note, error) {
	var conditions []string
	var args []interface{}

	if filter.Color != "" {
		conditions = append(conditions, "color = ? COLLATE NOCASE")
		args = append(args, filter.Color)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "modified_at >= ?")
		args = append(args, filter.Since.Unix())
	}

	query := `SELECT ` + noteColumns + ` FROM notes`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY modified_at DESC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list notes", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// connPragmas are applied by the driver to every new connection.
const connPragmas = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_txlock=immediate"

// dsn builds the file: URI for path. The path is percent-escaped so that
// '?', '#' and '%' in a directory or file name are not read as URI syntax.
func dsn(path string) string {
	u := url.URL{Scheme: "file", OmitHost: true, Path: filepath.ToSlash(path), RawQuery: connPragmas}
	return u.String()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (*sticky.Note, error) {
	var note sticky.Note
	err := row.Scan(
		&note.ID,
		&note.PlainText,
		&note.RichText,
		&note.Metadata,
		&note.Color,
		&note.ModifiedAt,
		&note.CreatedAt,
		&note.OriginHost,
	)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// scanNotes is a helper function to scan multiple notes from query results.
func scanNotes(rows *sql.Rows) ([]*sticky.Note, error) {
	notes := []*sticky.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, storageErr("scan note", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate notes", err)
	}
	return notes, nil
}

// sanitizeQuery quotes each term of a user query for FTS5.
// "fix auth* bug!" → `"fix" "auth"* "bug!"`
func sanitizeQuery(query string) string {
	var terms []string
	for _, w := range strings.Fields(query) {
		prefix := strings.HasSuffix(w, "*")
		w = strings.Trim(w, `"*`)
		if !strings.ContainsFunc(w, isSearchable) {
			continue
		}
		term := `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
		if prefix {
			term += "*"
		}
		terms = append(terms, term)
	}
	return strings.Join(terms, " ")
}

func isSearchable(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func colorOrDefault(c string) string {
	if c == "" {
		return sticky.DefaultColor
	}
	return c
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", sticky.ErrStorage, op, err)
}
