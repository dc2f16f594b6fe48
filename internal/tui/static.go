package tui

import (
	"fmt"
	"io"

	"github.com/p4ops/p4prune/internal/engine"
	"github.com/p4ops/p4prune/internal/ui"
)

// RunPlain drains a run's events as one line each. Used when stdout is not
// a terminal (cron jobs, redirects) or when the TUI is disabled.
func RunPlain(w io.Writer, run *engine.Run, dryRun bool) *engine.RunResult {
	for ev := range run.Events() {
		switch ev.Kind {

		case engine.EventRunStart:
			fmt.Fprintf(w, "cleaning %s (%s)\n", ev.Path, ev.Note)

		case engine.EventScanProgress:
			fmt.Fprintf(w, "scanned %d files (%s)\n", ev.Scanned, ui.FormatSize(ev.Bytes))

		case engine.EventScanError:
			fmt.Fprintf(w, "error accessing %s: %v\n", ev.Path, ev.Err)

		case engine.EventPlanReady:
			fmt.Fprintf(w, "selected %d files, estimated %s to free\n",
				len(ev.Plan.Files), ui.FormatSize(ev.Plan.EstimatedBytes))

		case engine.EventFileProcessed:
			switch {
			case ev.Err != nil:
				fmt.Fprintf(w, "failed to delete: %s - %v\n", ev.Path, ev.Err)
			case dryRun:
				fmt.Fprintf(w, "would delete: %s\n", ev.Path)
			default:
				fmt.Fprintf(w, "deleted: %s\n", ev.Path)
			}

		case engine.EventDone:
			res := ev.Result
			verb := "removed"
			if res.DryRun {
				verb = "would be removed"
			}
			fmt.Fprintf(w, "total of %s %s. deleted %d files, %d errors.\n",
				ui.FormatSize(res.BytesFreed), verb, res.FilesDeleted, len(res.Errors))
			if res.TargetUnreached {
				fmt.Fprintln(w, "warning: inventory exhausted before the space target was met")
			}
		}
	}
	return run.Wait()
}
