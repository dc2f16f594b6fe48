package engine

import (
	"context"

	"github.com/p4ops/p4prune/internal/plan"
)

// execute processes the plan in order. One file's failure never aborts the
// run: it is recorded and the next file is tried. In dry-run mode sizes
// are totalled without touching the filesystem. Cancellation is checked
// before each file; a cancelled execute leaves res describing the work
// completed so far.
func (r *Run) execute(ctx context.Context, cfg Config, p *plan.CleanupPlan, res *RunResult) {
	for _, rec := range p.Files {
		if ctx.Err() != nil {
			res.Cancelled = true
			cfg.Logger.Printf("run cancelled during deletion after %d files", res.FilesDeleted)
			return
		}

		if cfg.DryRun {
			res.BytesFreed += rec.Size
			cfg.Logger.Printf("would delete: %s", rec.Path)
			r.emit(ctx, Event{Kind: EventFileProcessed, Path: rec.Path, Bytes: rec.Size})
			continue
		}

		if err := cfg.Deleter.Remove(rec.Path); err != nil {
			res.Errors = append(res.Errors, FileError{Path: rec.Path, Msg: err.Error()})
			cfg.Logger.Printf("failed to delete: %s - %v", rec.Path, err)
			r.emit(ctx, Event{Kind: EventFileProcessed, Path: rec.Path, Bytes: rec.Size, Err: err})
			continue
		}

		res.FilesDeleted++
		res.BytesFreed += rec.Size
		cfg.Logger.Printf("deleted: %s", rec.Path)
		r.emit(ctx, Event{Kind: EventFileProcessed, Path: rec.Path, Bytes: rec.Size})
	}
}
