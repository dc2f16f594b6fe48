package inventory

import "time"

// FileRecord is the metadata the cleaner needs about one cache file.
// Records are immutable once scanned; they go stale if the filesystem
// changes underneath a run, which is not guarded against.
type FileRecord struct {
	Path       string
	Size       int64
	AccessTime time.Time
}
