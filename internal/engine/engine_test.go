package engine

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/p4ops/p4prune/internal/exclude"
	"github.com/p4ops/p4prune/internal/target"
)

// recordingDeleter tracks deletions and can fail or react per path.
type recordingDeleter struct {
	removed  []string
	fail     map[string]error
	onRemove func(path string)
}

func (d *recordingDeleter) Remove(path string) error {
	if d.onRemove != nil {
		d.onRemove(path)
	}
	if err, ok := d.fail[filepath.Base(path)]; ok {
		return err
	}
	d.removed = append(d.removed, filepath.Base(path))
	return os.Remove(path)
}

func discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// newCache creates a cache directory with files a (100 B, oldest),
// b (200 B), c (50 B, newest).
func newCache(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	base := time.Now().Add(-72 * time.Hour)
	for i, f := range []struct {
		name string
		size int
	}{
		{"a", 100}, {"b", 200}, {"c", 50},
	} {
		path := filepath.Join(root, f.name)
		if err := os.WriteFile(path, make([]byte, f.size), 0o644); err != nil {
			t.Fatal(err)
		}
		at := base.Add(time.Duration(i) * time.Hour)
		if err := os.Chtimes(path, at, at); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func folderConfig(t *testing.T, root string, keep int) Config {
	t.Helper()
	return Config{
		Path:     root,
		Mode:     target.ModeFolder,
		Keep:     keep,
		Logger:   discard(),
		IndexDir: t.TempDir(),
	}
}

func runAndDrain(t *testing.T, ctx context.Context, cfg Config) (*RunResult, []Event) {
	t.Helper()
	run, err := Start(ctx, cfg)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	var events []Event
	for ev := range run.Events() {
		events = append(events, ev)
	}
	return run.Wait(), events
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestFolderModeDeletesOldestFirst(t *testing.T) {
	root := newCache(t)

	// Total 350 B, keep 57% → target 151 B → a and b must go, c stays.
	cfg := folderConfig(t, root, 57)
	del := &recordingDeleter{}
	cfg.Deleter = del

	res, _ := runAndDrain(t, context.Background(), cfg)

	if got, want := del.removed, []string{"a", "b"}; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("removed %v, want %v (oldest access first)", got, want)
	}
	if res.FilesDeleted != 2 {
		t.Errorf("FilesDeleted = %d, want 2", res.FilesDeleted)
	}
	if res.BytesFreed != 300 {
		t.Errorf("BytesFreed = %d, want 300", res.BytesFreed)
	}
	if res.TargetUnreached {
		t.Error("target was met; TargetUnreached must be false")
	}
	if !exists(filepath.Join(root, "c")) {
		t.Error("newest file should survive")
	}
	if exists(filepath.Join(root, "a")) || exists(filepath.Join(root, "b")) {
		t.Error("selected files should be gone")
	}
}

func TestDryRunNeverDeletes(t *testing.T) {
	root := newCache(t)

	cfg := folderConfig(t, root, 57)
	cfg.DryRun = true
	cfg.Deleter = &recordingDeleter{onRemove: func(path string) {
		t.Errorf("dry run called Remove(%s)", path)
	}}

	res, _ := runAndDrain(t, context.Background(), cfg)

	if res.FilesDeleted != 0 {
		t.Errorf("FilesDeleted = %d, want 0 in dry run", res.FilesDeleted)
	}
	if res.BytesFreed != 300 {
		t.Errorf("BytesFreed = %d, want 300 (the would-be amount)", res.BytesFreed)
	}
	for _, f := range []string{"a", "b", "c"} {
		if !exists(filepath.Join(root, f)) {
			t.Errorf("dry run removed %s", f)
		}
	}
}

func TestDryRunIsIdempotent(t *testing.T) {
	root := newCache(t)

	var results []*RunResult
	for i := 0; i < 2; i++ {
		cfg := folderConfig(t, root, 57)
		cfg.DryRun = true
		res, _ := runAndDrain(t, context.Background(), cfg)
		results = append(results, res)
	}

	if results[0].BytesFreed != results[1].BytesFreed {
		t.Errorf("dry runs disagree: %d vs %d bytes", results[0].BytesFreed, results[1].BytesFreed)
	}
	if results[0].FilesDeleted != 0 || results[1].FilesDeleted != 0 {
		t.Error("dry runs must not delete")
	}
}

func TestDeletionFailureDoesNotAbortRun(t *testing.T) {
	root := newCache(t)

	// Keep 0% → everything selected; b is locked.
	cfg := folderConfig(t, root, 0)
	locked := errors.New("file in use")
	del := &recordingDeleter{fail: map[string]error{"b": locked}}
	cfg.Deleter = del

	res, events := runAndDrain(t, context.Background(), cfg)

	if res.FilesDeleted != 2 {
		t.Errorf("FilesDeleted = %d, want 2 (a and c)", res.FilesDeleted)
	}
	if res.BytesFreed != 150 {
		t.Errorf("BytesFreed = %d, want 150", res.BytesFreed)
	}
	if len(res.Errors) != 1 || filepath.Base(res.Errors[0].Path) != "b" {
		t.Fatalf("Errors = %v, want one entry for b", res.Errors)
	}

	var failedEvents int
	for _, ev := range events {
		if ev.Kind == EventFileProcessed && ev.Err != nil {
			failedEvents++
		}
	}
	if failedEvents != 1 {
		t.Errorf("emitted %d failure events, want 1", failedEvents)
	}
}

func TestExclusionsNeverSelected(t *testing.T) {
	root := newCache(t)
	protected := filepath.Join(root, "p4p.conf")
	if err := os.WriteFile(protected, make([]byte, 500), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-30 * 24 * time.Hour)
	if err := os.Chtimes(protected, old, old); err != nil {
		t.Fatal(err)
	}

	// Keep 0% deletes the entire eligible cache.
	cfg := folderConfig(t, root, 0)
	cfg.Exclude = exclude.Default()
	res, _ := runAndDrain(t, context.Background(), cfg)

	if !exists(protected) {
		t.Fatal("excluded file was deleted")
	}
	if res.FilesDeleted != 3 {
		t.Errorf("FilesDeleted = %d, want 3", res.FilesDeleted)
	}
}

func TestCancellationYieldsPartialResult(t *testing.T) {
	root := newCache(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := folderConfig(t, root, 0)
	cfg.Deleter = &recordingDeleter{onRemove: func(string) { cancel() }}

	res, _ := runAndDrain(t, ctx, cfg)

	if !res.Cancelled {
		t.Error("Cancelled must be set on a stopped run")
	}
	if res.FilesDeleted != 1 {
		t.Errorf("FilesDeleted = %d, want 1 (stop after first file)", res.FilesDeleted)
	}
	if !exists(filepath.Join(root, "c")) {
		t.Error("files past the cancellation point must survive")
	}
}

func TestFolderModeNoActionWhenWithinLimit(t *testing.T) {
	root := newCache(t)

	cfg := folderConfig(t, root, 100)
	cfg.Deleter = &recordingDeleter{onRemove: func(path string) {
		t.Errorf("no-action run called Remove(%s)", path)
	}}
	res, _ := runAndDrain(t, context.Background(), cfg)

	if res.FilesDeleted != 0 || res.BytesFreed != 0 {
		t.Errorf("result = %+v, want untouched cache", res)
	}
}

func TestStartRejectsBadConfig(t *testing.T) {
	root := newCache(t)

	tests := []struct {
		name string
		mut  func(*Config)
	}{
		{"missing path", func(c *Config) { c.Path = filepath.Join(root, "nope") }},
		{"path is a file", func(c *Config) { c.Path = filepath.Join(root, "a") }},
		{"low at high", func(c *Config) { c.Mode = target.ModeDrive; c.Low = 30; c.High = 30 }},
		{"keep out of range", func(c *Config) { c.Keep = 150 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := folderConfig(t, root, 80)
			tt.mut(&cfg)
			if _, err := Start(context.Background(), cfg); !errors.Is(err, target.ErrConfig) {
				t.Errorf("Start err = %v, want ErrConfig", err)
			}
		})
	}
}

func TestVanishedFileIsPerFileError(t *testing.T) {
	root := newCache(t)

	cfg := folderConfig(t, root, 0)
	// Delete b out from under the executor.
	cfg.Deleter = &recordingDeleter{onRemove: func(path string) {
		if filepath.Base(path) == "b" {
			os.Remove(path)
		}
	}}

	res, _ := runAndDrain(t, context.Background(), cfg)

	// b vanished mid-run: recorded as an error, the run continued.
	if res.FilesDeleted != 2 {
		t.Errorf("FilesDeleted = %d, want 2", res.FilesDeleted)
	}
	found := false
	for _, fe := range res.Errors {
		if filepath.Base(fe.Path) == "b" {
			found = true
		}
	}
	if !found {
		t.Errorf("vanished file should appear in Errors: %+v", res.Errors)
	}
}
