// Package plan selects which cache files to delete. Selection is greedy
// oldest-access-first: the chosen files are always a prefix of the
// atime-ascending ordering (ties broken by path), and the cumulative size
// never overshoots the target by more than the last file added.
package plan

import (
	"context"

	"github.com/p4ops/p4prune/internal/inventory"
)

// batchSize bounds one candidate query against the index.
const batchSize = 100

// Source yields inventory records in ascending access-time order, ties
// broken by path. An empty batch means the source is exhausted.
type Source interface {
	NextBatch(n int) ([]inventory.FileRecord, error)
}

// CleanupPlan is the outcome of candidate selection for one run.
type CleanupPlan struct {
	// TargetBytes is the amount the run was asked to free.
	TargetBytes int64

	// Files are the selected deletion candidates, oldest access first.
	Files []inventory.FileRecord

	// EstimatedBytes is the cumulative size of Files.
	EstimatedBytes int64

	// TargetUnreached is set when the source ran out of files before
	// EstimatedBytes reached TargetBytes. Callers must surface it.
	TargetUnreached bool
}

// Build pulls batches from src until the cumulative selected size meets
// targetBytes or the source is exhausted. A non-positive target selects
// nothing. Cancellation is checked between batches; a cancelled build
// returns ctx.Err().
func Build(ctx context.Context, src Source, targetBytes int64) (*CleanupPlan, error) {
	p := &CleanupPlan{TargetBytes: targetBytes}
	if targetBytes <= 0 {
		return p, nil
	}

	for p.EstimatedBytes < targetBytes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch, err := src.NextBatch(batchSize)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			p.TargetUnreached = true
			return p, nil
		}

		for _, rec := range batch {
			if p.EstimatedBytes >= targetBytes {
				return p, nil
			}
			p.Files = append(p.Files, rec)
			p.EstimatedBytes += rec.Size
		}
	}

	return p, nil
}
