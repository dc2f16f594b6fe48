// Package engine runs the cleanup pipeline: scan the cache into the
// scratch index, compute the freed-byte target, select oldest-first
// candidates, and execute the deletions. The pipeline runs in one
// goroutine and reports through an event channel so any presentation
// layer (TUI, plain CLI) stays responsive. Cancellation is cooperative
// via the caller's context; a cancelled run yields a valid partial result.
package engine

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/p4ops/p4prune/internal/exclude"
	"github.com/p4ops/p4prune/internal/index"
	"github.com/p4ops/p4prune/internal/inventory"
	"github.com/p4ops/p4prune/internal/plan"
	"github.com/p4ops/p4prune/internal/target"
	"github.com/p4ops/p4prune/internal/ui"
)

// scanProgressEvery throttles scan progress events.
const scanProgressEvery = 256

// Config carries everything one run needs. No process-wide state.
type Config struct {
	// Path is the cache directory to trim.
	Path string

	// Mode selects drive or folder targeting.
	Mode target.Mode

	// Low and High are the drive-mode free-space thresholds in percent.
	Low, High int

	// Keep is the folder-mode percentage of cache size to retain.
	Keep int

	// DryRun computes and reports without deleting.
	DryRun bool

	// Exclude filters files that must never be deleted. Nil means no
	// exclusions.
	Exclude *exclude.List

	// Logger receives one line per significant event. Required.
	Logger *log.Logger

	// IndexDir holds the per-run scratch index database.
	IndexDir string

	// Deleter overrides the filesystem delete. Nil uses os.Remove.
	Deleter Deleter
}

// Validate reports a configuration error before any work starts.
func (c *Config) Validate() error {
	info, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%w: invalid cache path %q: %v", target.ErrConfig, c.Path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: cache path %q is not a directory", target.ErrConfig, c.Path)
	}

	switch c.Mode {
	case target.ModeDrive:
		return target.ValidateDrive(c.Low, c.High)
	case target.ModeFolder:
		return target.ValidateFolder(c.Keep)
	default:
		return fmt.Errorf("%w: unknown mode %d", target.ErrConfig, c.Mode)
	}
}

// Run is a started cleanup. Consume Events until it closes, then (or
// concurrently) call Wait for the final result.
type Run struct {
	events chan Event
	done   chan struct{}
	result *RunResult
}

// Start validates cfg and launches the pipeline. The returned Run emits
// progress on Events; cancel through ctx.
func Start(ctx context.Context, cfg Config) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required", target.ErrConfig)
	}
	if cfg.Deleter == nil {
		cfg.Deleter = osDeleter{}
	}

	r := &Run{
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	go r.run(ctx, cfg)
	return r, nil
}

// Events returns the progress stream. It is closed after EventDone.
func (r *Run) Events() <-chan Event {
	return r.events
}

// Wait blocks until the run finishes and returns its result.
func (r *Run) Wait() *RunResult {
	<-r.done
	return r.result
}

// emit delivers an event unless the consumer is gone and the run is
// being cancelled anyway.
func (r *Run) emit(ctx context.Context, ev Event) {
	select {
	case r.events <- ev:
	case <-ctx.Done():
	}
}

func (r *Run) finish(ctx context.Context, res *RunResult) {
	r.result = res
	r.emit(ctx, Event{Kind: EventDone, Result: res})
	close(r.events)
	close(r.done)
}

func (r *Run) run(ctx context.Context, cfg Config) {
	res := &RunResult{DryRun: cfg.DryRun}

	mode := "ACTUAL DELETION"
	if cfg.DryRun {
		mode = "DRY RUN"
	}
	cfg.Logger.Printf("starting cache clean (%s): path=%s mode=%s", mode, cfg.Path, cfg.Mode)
	r.emit(ctx, Event{Kind: EventRunStart, Path: cfg.Path, Note: mode})

	// Drive mode can decide "nothing to do" from disk usage alone,
	// before paying for a scan.
	var usage *targetUsage
	if cfg.Mode == target.ModeDrive {
		u, err := target.DiskUsage(cfg.Path)
		if err != nil {
			cfg.Logger.Printf("ERROR %v", err)
			res.Errors = append(res.Errors, FileError{Path: cfg.Path, Msg: err.Error()})
			r.finish(ctx, res)
			return
		}
		usage = &targetUsage{total: u.Total, free: u.Free}
		freePct := float64(u.Free) / float64(u.Total) * 100
		cfg.Logger.Printf("disk total=%s free=%s free%%=%.2f",
			ui.FormatSize(int64(u.Total)), ui.FormatSize(int64(u.Free)), freePct)
		if freePct >= float64(cfg.Low) {
			cfg.Logger.Printf("disk space above threshold, no action taken")
			r.finish(ctx, res)
			return
		}
	}

	ix, err := index.Open(cfg.IndexDir)
	if err != nil {
		cfg.Logger.Printf("ERROR %v", err)
		res.Errors = append(res.Errors, FileError{Path: cfg.IndexDir, Msg: err.Error()})
		r.finish(ctx, res)
		return
	}
	defer func() {
		if cerr := ix.Close(); cerr != nil {
			cfg.Logger.Printf("WARN close index: %v", cerr)
		}
	}()

	scanner := &inventory.Scanner{
		Exclude: cfg.Exclude,
		OnError: func(path string, err error) {
			res.Errors = append(res.Errors, FileError{Path: path, Msg: err.Error()})
			cfg.Logger.Printf("error accessing %s: %v", path, err)
			r.emit(ctx, Event{Kind: EventScanError, Path: path, Err: err})
		},
	}

	err = scanner.Scan(ctx, cfg.Path, func(rec inventory.FileRecord) error {
		if aerr := ix.Add(rec); aerr != nil {
			res.Errors = append(res.Errors, FileError{Path: rec.Path, Msg: aerr.Error()})
			cfg.Logger.Printf("error indexing %s: %v", rec.Path, aerr)
			return nil
		}
		if n := scanner.Scanned(); n%scanProgressEvery == 0 {
			r.emit(ctx, Event{Kind: EventScanProgress, Scanned: n, Bytes: scanner.TotalBytes()})
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			res.Cancelled = true
			cfg.Logger.Printf("run cancelled during scan after %d files", scanner.Scanned())
			r.finish(ctx, res)
			return
		}
		cfg.Logger.Printf("ERROR scanning %s: %v", cfg.Path, err)
		res.Errors = append(res.Errors, FileError{Path: cfg.Path, Msg: err.Error()})
		r.finish(ctx, res)
		return
	}
	cfg.Logger.Printf("indexed %d files (%s)", ix.Count(), ui.FormatSize(scanner.TotalBytes()))
	r.emit(ctx, Event{Kind: EventScanProgress, Scanned: scanner.Scanned(), Bytes: scanner.TotalBytes()})

	var targetBytes int64
	switch cfg.Mode {
	case target.ModeDrive:
		targetBytes, err = target.DriveTarget(usage.total, usage.free, cfg.Low, cfg.High)
	case target.ModeFolder:
		targetBytes, err = target.FolderTarget(scanner.TotalBytes(), cfg.Keep)
	}
	if err != nil {
		// Thresholds were validated in Start; this is unreachable in
		// practice but kept as a guard.
		cfg.Logger.Printf("ERROR %v", err)
		res.Errors = append(res.Errors, FileError{Path: cfg.Path, Msg: err.Error()})
		r.finish(ctx, res)
		return
	}
	if targetBytes <= 0 {
		cfg.Logger.Printf("cache size is within the configured limits, no action taken")
		r.finish(ctx, res)
		return
	}
	cfg.Logger.Printf("need to remove %s", ui.FormatSize(targetBytes))

	p, err := plan.Build(ctx, ix, targetBytes)
	if err != nil {
		if ctx.Err() != nil {
			res.Cancelled = true
			cfg.Logger.Printf("run cancelled during planning")
			r.finish(ctx, res)
			return
		}
		cfg.Logger.Printf("ERROR planning: %v", err)
		res.Errors = append(res.Errors, FileError{Path: cfg.Path, Msg: err.Error()})
		r.finish(ctx, res)
		return
	}
	res.TargetUnreached = p.TargetUnreached
	if p.TargetUnreached {
		cfg.Logger.Printf("WARN inventory exhausted: only %s of %s target available",
			ui.FormatSize(p.EstimatedBytes), ui.FormatSize(p.TargetBytes))
	}
	cfg.Logger.Printf("selected %d files, estimated %s to free",
		len(p.Files), ui.FormatSize(p.EstimatedBytes))
	r.emit(ctx, Event{Kind: EventPlanReady, Plan: p})

	r.execute(ctx, cfg, p, res)

	action := "removed"
	if cfg.DryRun {
		action = "would be removed"
	}
	cfg.Logger.Printf("total of %s %s to meet target. deleted %d files, %d errors.",
		ui.FormatSize(res.BytesFreed), action, res.FilesDeleted, len(res.Errors))
	r.finish(ctx, res)
}

// targetUsage is the slice of disk.UsageStat the pipeline actually needs.
type targetUsage struct {
	total, free uint64
}
