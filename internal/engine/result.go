package engine

// FileError records one per-file failure. Failures never abort a run.
type FileError struct {
	Path string
	Msg  string
}

// RunResult is the outcome of one cleanup invocation, handed to the
// presentation layer and summarized in the log.
type RunResult struct {
	// FilesDeleted counts actual deletions. Always zero in a dry run.
	FilesDeleted int

	// BytesFreed is the space reclaimed, or in a dry run the space that
	// would be reclaimed.
	BytesFreed int64

	// Errors lists every scan or deletion failure encountered.
	Errors []FileError

	// TargetUnreached is set when the inventory was exhausted before the
	// freed-byte target was met.
	TargetUnreached bool

	// DryRun records the mode the run executed in.
	DryRun bool

	// Cancelled is set when the run stopped early on request. The counts
	// above still describe the work completed before the stop.
	Cancelled bool
}
