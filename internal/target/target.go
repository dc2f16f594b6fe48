// Package target computes how many bytes a run must free, in one of two
// modes: drive (reach a free-space percentage of the whole volume) or
// folder (keep a percentage of the cache folder's own size).
package target

import (
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
)

// ErrConfig marks invalid threshold configuration. A run reporting it
// never starts scanning or deleting.
var ErrConfig = errors.New("configuration error")

// Mode selects how the freed-byte target is derived.
type Mode int

const (
	// ModeDrive frees space until the volume's free percentage reaches the
	// high threshold. Used when the cache owns an entire drive.
	ModeDrive Mode = iota
	// ModeFolder trims the cache folder down to a percentage of its
	// current size. Used when the cache shares a drive.
	ModeFolder
)

func (m Mode) String() string {
	if m == ModeFolder {
		return "folder"
	}
	return "drive"
}

// DiskUsage reports usage of the volume containing path.
func DiskUsage(path string) (*disk.UsageStat, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return nil, fmt.Errorf("query disk usage for %s: %w", path, err)
	}
	return usage, nil
}

// ValidateDrive checks drive-mode thresholds: 0 <= low < high <= 100.
func ValidateDrive(low, high int) error {
	if low < 0 || high > 100 || low >= high {
		return fmt.Errorf("%w: low threshold %d%% must be below high threshold %d%% (0-100)",
			ErrConfig, low, high)
	}
	return nil
}

// ValidateFolder checks the folder-mode keep percentage: 0 <= keep <= 100.
func ValidateFolder(keep int) error {
	if keep < 0 || keep > 100 {
		return fmt.Errorf("%w: keep percentage %d%% must be within 0-100", ErrConfig, keep)
	}
	return nil
}

// DriveTarget returns the bytes to free so that free space reaches high%
// of total capacity. Zero when free space is already at or above low%.
// Requires 0 <= low < high <= 100.
func DriveTarget(total, free uint64, low, high int) (int64, error) {
	if err := ValidateDrive(low, high); err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, fmt.Errorf("%w: volume reports zero capacity", ErrConfig)
	}

	freePct := float64(free) / float64(total) * 100
	if freePct >= float64(low) {
		return 0, nil
	}

	// Ceiling of total*high/100: the high-watermark free-byte count.
	want := (total*uint64(high) + 99) / 100
	if want <= free {
		return 0, nil
	}
	return int64(want - free), nil
}

// FolderTarget returns the bytes to free so the cache shrinks to keep% of
// its current size. Zero when the cache is already within the percentage.
// Requires 0 <= keep <= 100.
func FolderTarget(cacheSize int64, keep int) (int64, error) {
	if err := ValidateFolder(keep); err != nil {
		return 0, err
	}
	if cacheSize <= 0 {
		return 0, nil
	}
	toRemove := cacheSize - cacheSize*int64(keep)/100
	if toRemove < 0 {
		return 0, nil
	}
	return toRemove, nil
}
