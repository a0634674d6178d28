package simlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRotateRenamesAndReopens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.log")

	if err := SetOutputFile("debug", path); err != nil {
		t.Fatalf("SetOutputFile failed: %s", err)
	}

	Debug("line one")
	if !ShouldRotate(1) {
		t.Fatal("expected ShouldRotate to report true once the file exceeds the threshold")
	}

	if err := Rotate(); err != nil {
		t.Fatalf("Rotate failed: %s", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list log directory: %s", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected the original path plus one rotated file, got %d entries", len(entries))
	}

	Debug("line two")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read the reopened log file: %s", err)
	}
	if len(data) == 0 {
		t.Fatal("expected the reopened log file to receive new writes")
	}
}

func TestShouldRotateFalseWithoutOpenFile(t *testing.T) {
	currentLogFile = nil
	if ShouldRotate(1) {
		t.Fatal("expected ShouldRotate to be false when no log file is open")
	}
}
