package inventory

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/p4ops/p4prune/internal/exclude"
)

// Scanner walks a cache tree and produces one FileRecord per regular file.
// A scan is a single pass: nothing is persisted between invocations.
type Scanner struct {
	// Exclude filters files that must never be selected for deletion.
	Exclude *exclude.List

	// OnError, if set, is called for each entry that could not be read.
	// Scan errors are non-fatal; the walk continues.
	OnError func(path string, err error)

	mu       sync.Mutex
	warnings []string
	scanned  int64
	total    int64
}

// Scanned returns the number of files emitted so far.
func (s *Scanner) Scanned() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanned
}

// TotalBytes returns the cumulative size of all files emitted so far.
// Folder mode uses this as the current cache size.
func (s *Scanner) TotalBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Warnings returns the paths that could not be read during the scan.
func (s *Scanner) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.warnings...)
}

func (s *Scanner) warn(path string, err error) {
	s.mu.Lock()
	if len(s.warnings) < 500 {
		s.warnings = append(s.warnings, path+": "+err.Error())
	}
	s.mu.Unlock()
	if s.OnError != nil {
		s.OnError(path, err)
	}
}

// Scan walks all regular files under root and calls emit for each one that
// is not excluded. Directories are never emitted and never deleted.
// Symlinks and junctions are treated as opaque leaves — NEVER followed.
// Unreadable entries are recorded as warnings, not failures.
// Cancellation is checked between entries; a cancelled scan returns ctx.Err().
func (s *Scanner) Scan(ctx context.Context, root string, emit func(FileRecord) error) error {
	root = filepath.Clean(root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		if err != nil {
			// Permission denied or vanished entry — skip, don't fail.
			s.warn(path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		// Symlinks, devices, pipes: leave them alone.
		if !d.Type().IsRegular() {
			return nil
		}

		if s.Exclude != nil && s.Exclude.Match(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			s.warn(path, err)
			return nil
		}

		rec := FileRecord{
			Path:       path,
			Size:       info.Size(),
			AccessTime: accessTime(info),
		}

		s.mu.Lock()
		s.scanned++
		s.total += rec.Size
		s.mu.Unlock()

		return emit(rec)
	})
}
