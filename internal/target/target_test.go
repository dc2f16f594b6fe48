package target

import (
	"errors"
	"testing"
)

const (
	gib = uint64(1) << 30
	tib = uint64(1) << 40
)

func TestDriveTarget(t *testing.T) {
	tests := []struct {
		name      string
		total     uint64
		free      uint64
		low, high int
		want      int64
	}{
		// 10% free, thresholds 20/30 on a 1 TiB volume: free 20% of capacity.
		{"below low frees to high", tib, tib / 10, 20, 30, int64(tib / 5)},
		{"at low threshold no action", tib, tib / 5, 20, 30, 0},
		{"above low threshold no action", tib, tib / 2, 20, 30, 0},
		{"empty volume frees everything needed", 100 * gib, 0, 20, 30, int64(30 * gib)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DriveTarget(tt.total, tt.free, tt.low, tt.high)
			if err != nil {
				t.Fatalf("DriveTarget: %v", err)
			}
			if got != tt.want {
				t.Errorf("DriveTarget = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDriveTargetConfigErrors(t *testing.T) {
	tests := []struct {
		name      string
		low, high int
	}{
		{"low equals high", 30, 30},
		{"low above high", 40, 30},
		{"negative low", -1, 30},
		{"high above 100", 20, 101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DriveTarget(tib, tib/10, tt.low, tt.high)
			if !errors.Is(err, ErrConfig) {
				t.Errorf("DriveTarget(low=%d, high=%d) err = %v, want ErrConfig", tt.low, tt.high, err)
			}
		})
	}

	if _, err := DriveTarget(0, 0, 20, 30); !errors.Is(err, ErrConfig) {
		t.Errorf("zero-capacity volume should be a config error, got %v", err)
	}
}

func TestFolderTarget(t *testing.T) {
	tests := []struct {
		name      string
		cacheSize int64
		keep      int
		want      int64
	}{
		{"keep 80 percent", 1000, 80, 200},
		{"keep everything", 1000, 100, 0},
		{"keep nothing", 1000, 0, 1000},
		{"empty cache", 0, 80, 0},
		{"integer division rounds toward freeing", 999, 80, 200}, // 999 - 999*80/100 = 999-799
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FolderTarget(tt.cacheSize, tt.keep)
			if err != nil {
				t.Fatalf("FolderTarget: %v", err)
			}
			if got != tt.want {
				t.Errorf("FolderTarget = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFolderTargetConfigErrors(t *testing.T) {
	for _, keep := range []int{-1, 101} {
		if _, err := FolderTarget(1000, keep); !errors.Is(err, ErrConfig) {
			t.Errorf("FolderTarget(keep=%d) err = %v, want ErrConfig", keep, err)
		}
	}
}

func TestModeString(t *testing.T) {
	if ModeDrive.String() != "drive" || ModeFolder.String() != "folder" {
		t.Errorf("unexpected mode strings: %q %q", ModeDrive, ModeFolder)
	}
}
