// Package logging sets up the rotating run log. One line per significant
// event: run start, per-file deletion or error, run summary.
package logging

import (
	"io"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup returns a logger appending to the given file, rotated by size so a
// busy proxy host never fills its own disk with cleaner logs.
func Setup(path string) *log.Logger {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	return log.New(lj, "", log.LstdFlags)
}

// Discard returns a logger that drops everything. Used in tests and when
// no log path could be resolved.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}
