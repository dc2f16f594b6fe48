package engine

import "github.com/p4ops/p4prune/internal/plan"

// EventKind identifies one progress notification from a running cleanup.
type EventKind int

const (
	// EventRunStart is emitted once, before scanning begins.
	EventRunStart EventKind = iota
	// EventScanProgress is emitted periodically while the cache is walked.
	EventScanProgress
	// EventScanError reports a file that could not be read. Non-fatal.
	EventScanError
	// EventPlanReady carries the selection the executor is about to process.
	EventPlanReady
	// EventFileProcessed is emitted once per planned file: deleted,
	// would-be-deleted (dry run), or failed (Err set).
	EventFileProcessed
	// EventDone is the final event; Result is always set.
	EventDone
)

// Event is one progress notification. Which fields are set depends on Kind.
type Event struct {
	Kind    EventKind
	Path    string
	Bytes   int64 // size of Path, or cumulative scanned bytes for scan progress
	Scanned int64 // files scanned so far
	Err     error
	Note    string
	Plan    *plan.CleanupPlan
	Result  *RunResult
}
