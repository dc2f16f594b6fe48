//go:build !linux && !darwin && !windows

package inventory

import (
	"io/fs"
	"time"
)

// Platforms without a portable atime fall back to the modification time.
func accessTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
