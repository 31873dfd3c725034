// Package sqlite persists per-user vector indexes as SQLite files.
//
// Layout: one directory per user under a shared index root, each
// holding a single index.db with the serialized vectors and chunk
// metadata. Saving builds the database in a temporary directory and
// renames it into place, so a reader that opens the location after a
// save sees only the new content.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/retolabs/docqa/internal/core/domain"
	"github.com/retolabs/docqa/internal/core/ports/driven"
	"github.com/retolabs/docqa/internal/index"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// indexFileName is the database file inside each user directory.
const indexFileName = "index.db"

// schema is applied to every freshly written index database.
const schema = `
CREATE TABLE index_meta (
	dimensions INTEGER NOT NULL,
	document   TEXT    NOT NULL,
	created_at TEXT    NOT NULL
);
CREATE TABLE chunks (
	id        TEXT    PRIMARY KEY,
	document  TEXT    NOT NULL,
	page      INTEGER NOT NULL,
	position  INTEGER NOT NULL,
	content   TEXT    NOT NULL,
	embedding BLOB    NOT NULL
);
`

// Store is a filesystem-backed index store.
type Store struct {
	root string
}

// NewStore creates an index store rooted at the given directory,
// creating it if necessary. If root is empty, defaults to
// ~/.docqa/index.
func NewStore(root string) (*Store, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		root = filepath.Join(home, ".docqa", "index")
	}

	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("creating index root: %w", pathless(err))
	}

	return &Store{root: root}, nil
}

// pathless strips the path from filesystem errors so callers can
// surface them without leaking the server's storage layout.
func pathless(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	var le *os.LinkError
	if errors.As(err, &le) {
		return le.Err
	}
	return err
}

// Root returns the shared index root directory.
func (s *Store) Root() string {
	return s.root
}

// userDir derives the storage location for a user. The identity has
// already been validated as a single path component.
func (s *Store) userDir(user domain.UserID) string {
	return filepath.Join(s.root, string(user))
}

// Save atomically replaces the user's persisted index.
func (s *Store) Save(ctx context.Context, user domain.UserID, idx *index.Index) error {
	// The root may have been removed by a clear-all since startup.
	if err := os.MkdirAll(s.root, 0o700); err != nil {
		return fmt.Errorf("creating index root: %w", pathless(err))
	}

	tmp, err := os.MkdirTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", pathless(err))
	}
	defer os.RemoveAll(tmp)

	if err := writeIndexDB(ctx, filepath.Join(tmp, indexFileName), idx); err != nil {
		return fmt.Errorf("writing index for user %q: %w", user, err)
	}

	target := s.userDir(user)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("replacing index for user %q: %w", user, pathless(err))
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("installing index for user %q: %w", user, pathless(err))
	}
	return nil
}

// Load reads the user's persisted index back into memory.
func (s *Store) Load(ctx context.Context, user domain.UserID) (*index.Index, error) {
	dbPath := filepath.Join(s.userDir(user), indexFileName)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("%w: no index for user %q", domain.ErrIndexNotFound, user)
	}

	idx, err := readIndexDB(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: index for user %q is invalid: %v", domain.ErrIndexNotFound, user, err)
	}
	return idx, nil
}

// DeleteUser removes the user's storage location recursively.
func (s *Store) DeleteUser(_ context.Context, user domain.UserID) error {
	dir := s.userDir(user)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%w: no cache for user %q", domain.ErrCacheNotFound, user)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing cache for user %q: %w", user, pathless(err))
	}
	return nil
}

// DeleteAll removes the shared index root for all users.
func (s *Store) DeleteAll(_ context.Context) error {
	if _, err := os.Stat(s.root); err != nil {
		return fmt.Errorf("%w: index root does not exist", domain.ErrCacheNotFound)
	}
	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("removing index root: %w", pathless(err))
	}
	return nil
}

// writeIndexDB serializes an index into a fresh database file.
func writeIndexDB(ctx context.Context, path string, idx *index.Index) error {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	chunks := idx.Chunks()
	document := ""
	if len(chunks) > 0 {
		document = chunks[0].Document
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO index_meta (dimensions, document, created_at) VALUES (?, ?, ?)",
		idx.Dimensions(), document, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (id, document, page, position, content, embedding) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, ch := range chunks {
		_, err := stmt.ExecContext(ctx,
			ch.ID, ch.Document, ch.Page, ch.Position, ch.Content,
			float32SliceToBytes(ch.Embedding),
		)
		if err != nil {
			return fmt.Errorf("writing chunk %s: %w", ch.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// readIndexDB deserializes an index database into memory.
func readIndexDB(ctx context.Context, path string) (*index.Index, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var dimensions int
	row := db.QueryRowContext(ctx, "SELECT dimensions FROM index_meta")
	if err := row.Scan(&dimensions); err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		"SELECT id, document, page, position, content, embedding FROM chunks ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("reading chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var ch domain.Chunk
		var embedding []byte
		if err := rows.Scan(&ch.ID, &ch.Document, &ch.Page, &ch.Position, &ch.Content, &embedding); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		ch.Embedding = bytesToFloat32Slice(embedding)
		chunks = append(chunks, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return index.Build(dimensions, chunks)
}

// float32SliceToBytes encodes embeddings as little-endian float32.
func float32SliceToBytes(floats []float32) []byte {
	out := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// bytesToFloat32Slice decodes little-endian float32 embeddings.
func bytesToFloat32Slice(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
