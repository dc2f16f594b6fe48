package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/p4ops/p4prune/internal/inventory"
)

func rec(path string, size int64, at int64) inventory.FileRecord {
	return inventory.FileRecord{Path: path, Size: size, AccessTime: time.Unix(at, 0)}
}

func TestNextBatchOrdersByAccessTimeThenPath(t *testing.T) {
	ix, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ix.Close()

	// Insert out of order, with an atime tie between b and a.
	for _, r := range []inventory.FileRecord{
		rec("z", 10, 5),
		rec("b", 20, 1),
		rec("a", 30, 1),
		rec("m", 40, 3),
	} {
		if err := ix.Add(r); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if ix.Count() != 4 {
		t.Fatalf("Count = %d, want 4", ix.Count())
	}

	batch, err := ix.NextBatch(10)
	if err != nil {
		t.Fatalf("NextBatch: %v", err)
	}
	want := []string{"a", "b", "m", "z"}
	if len(batch) != len(want) {
		t.Fatalf("batch size = %d, want %d", len(batch), len(want))
	}
	for i, w := range want {
		if batch[i].Path != w {
			t.Errorf("batch[%d] = %s, want %s", i, batch[i].Path, w)
		}
	}
}

func TestNextBatchPaginates(t *testing.T) {
	ix, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ix.Close()

	for i := 0; i < 7; i++ {
		if err := ix.Add(rec(string(rune('a'+i)), 1, int64(i))); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	var got []string
	for {
		batch, err := ix.NextBatch(3)
		if err != nil {
			t.Fatalf("NextBatch: %v", err)
		}
		if len(batch) == 0 {
			break
		}
		for _, r := range batch {
			got = append(got, r.Path)
		}
	}

	if len(got) != 7 {
		t.Fatalf("paginated %d records, want 7: %v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("pagination repeated or reordered records: %v", got)
		}
	}
}

func TestBatchedInsertsSurviveFlush(t *testing.T) {
	ix, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ix.Close()

	// More than one transaction's worth.
	n := commitEvery + 50
	for i := 0; i < n; i++ {
		if err := ix.Add(rec(filepath.Join("d", time.Unix(int64(i), 0).String()), 1, int64(i))); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	var total int
	for {
		batch, err := ix.NextBatch(512)
		if err != nil {
			t.Fatalf("NextBatch: %v", err)
		}
		if len(batch) == 0 {
			break
		}
		total += len(batch)
	}
	if total != n {
		t.Errorf("read back %d records, want %d", total, n)
	}
}

func TestCloseRemovesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	ix, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ix.Add(rec("a", 1, 1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "p4prune-index.db")); !os.IsNotExist(err) {
		t.Error("scratch database should be removed on Close")
	}
}

func TestOpenReplacesStaleIndex(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "p4prune-index.db")
	if err := os.WriteFile(stale, []byte("leftover"), 0o644); err != nil {
		t.Fatal(err)
	}

	ix, err := Open(dir)
	if err != nil {
		t.Fatalf("Open over stale file: %v", err)
	}
	defer ix.Close()

	if err := ix.Add(rec("a", 1, 1)); err != nil {
		t.Fatalf("Add after replacing stale index: %v", err)
	}
}
