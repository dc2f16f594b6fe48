//go:build linux

package inventory

import (
	"io/fs"
	"syscall"
	"time"
)

// accessTime extracts the last-access timestamp from stat data.
// noatime/relatime mounts update atime lazily, so the value is best-effort.
func accessTime(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Atim.Sec, st.Atim.Nsec)
	}
	return info.ModTime()
}
