// Package index stores scanned file metadata in a throwaway SQLite
// database so candidate selection can pull oldest-access-time batches
// without holding the whole inventory in memory. The database lives for
// one run and is removed on Close.
package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/p4ops/p4prune/internal/inventory"
)

// commitEvery bounds how many inserts ride in one transaction.
const commitEvery = 1000

const schema = `
CREATE TABLE files (
	atime INTEGER NOT NULL,
	size  INTEGER NOT NULL,
	path  TEXT    NOT NULL
);
CREATE INDEX files_atime ON files (atime, path);
`

// Index is a single-run metadata store ordered by last access time.
type Index struct {
	db      *sql.DB
	file    string
	tx      *sql.Tx
	ins     *sql.Stmt
	pending int
	count   int64

	// Pagination cursor for NextBatch: strictly-greater-than the last
	// (atime, path) pair handed out. Deterministic because (atime, path)
	// is unique per scanned file.
	lastAtime int64
	lastPath  string
	started   bool
}

// Open creates a fresh index database under dir, replacing any leftover
// from a crashed run.
func Open(dir string) (*Index, error) {
	file := filepath.Join(dir, "p4prune-index.db")
	if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale index: %w", err)
	}

	db, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		os.Remove(file)
		return nil, fmt.Errorf("create index schema: %w", err)
	}

	return &Index{db: db, file: file}, nil
}

// Add inserts one record. Inserts are batched into transactions of
// commitEvery rows; call Flush once the scan is done.
func (ix *Index) Add(rec inventory.FileRecord) error {
	if ix.tx == nil {
		tx, err := ix.db.Begin()
		if err != nil {
			return fmt.Errorf("begin index batch: %w", err)
		}
		ins, err := tx.Prepare("INSERT INTO files (atime, size, path) VALUES (?, ?, ?)")
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("prepare index insert: %w", err)
		}
		ix.tx, ix.ins = tx, ins
	}

	if _, err := ix.ins.Exec(rec.AccessTime.UnixNano(), rec.Size, rec.Path); err != nil {
		return fmt.Errorf("index %s: %w", rec.Path, err)
	}
	ix.count++
	ix.pending++
	if ix.pending >= commitEvery {
		return ix.Flush()
	}
	return nil
}

// Flush commits any pending inserts.
func (ix *Index) Flush() error {
	if ix.tx == nil {
		return nil
	}
	ix.ins.Close()
	err := ix.tx.Commit()
	ix.tx, ix.ins, ix.pending = nil, nil, 0
	if err != nil {
		return fmt.Errorf("commit index batch: %w", err)
	}
	return nil
}

// Count returns the number of records added.
func (ix *Index) Count() int64 {
	return ix.count
}

// NextBatch returns up to n records in ascending access-time order, ties
// broken by path, resuming where the previous call left off. An empty
// slice means the index is exhausted.
func (ix *Index) NextBatch(n int) ([]inventory.FileRecord, error) {
	if err := ix.Flush(); err != nil {
		return nil, err
	}

	var rows *sql.Rows
	var err error
	if !ix.started {
		rows, err = ix.db.Query(
			"SELECT atime, size, path FROM files ORDER BY atime, path LIMIT ?", n)
	} else {
		rows, err = ix.db.Query(
			`SELECT atime, size, path FROM files
			 WHERE atime > ? OR (atime = ? AND path > ?)
			 ORDER BY atime, path LIMIT ?`,
			ix.lastAtime, ix.lastAtime, ix.lastPath, n)
	}
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	defer rows.Close()

	var batch []inventory.FileRecord
	for rows.Next() {
		var atime, size int64
		var path string
		if err := rows.Scan(&atime, &size, &path); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		batch = append(batch, inventory.FileRecord{
			Path:       path,
			Size:       size,
			AccessTime: time.Unix(0, atime),
		})
		ix.lastAtime, ix.lastPath = atime, path
		ix.started = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index: %w", err)
	}
	return batch, nil
}

// Close releases the database and removes its file.
func (ix *Index) Close() error {
	flushErr := ix.Flush()
	closeErr := ix.db.Close()
	rmErr := os.Remove(ix.file)
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return closeErr
	}
	if rmErr != nil && !os.IsNotExist(rmErr) {
		return rmErr
	}
	return nil
}
