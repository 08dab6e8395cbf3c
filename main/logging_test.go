package main

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(filepath.Base(path)), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestShiftLogs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "gyrod.log"))
	touch(t, filepath.Join(dir, "gyrod.log.1"))
	touch(t, filepath.Join(dir, "gyrod.log.9"))
	touch(t, filepath.Join(dir, "other.log"))

	shiftLogs(dir)

	got := getLogFiles(dir)
	want := []string{
		filepath.Join(dir, "gyrod.log.1"),
		filepath.Join(dir, "gyrod.log.2"),
	}
	if len(got) != len(want) {
		t.Fatalf("logs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("logs[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	b, _ := os.ReadFile(filepath.Join(dir, "gyrod.log.2"))
	if string(b) != "gyrod.log.1" {
		t.Errorf("gyrod.log.2 holds %q", b)
	}
	if _, err := os.Stat(filepath.Join(dir, "other.log")); err != nil {
		t.Errorf("unrelated file touched: %v", err)
	}
}

func TestDeleteOldestLog(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "gyrod.log.1"))
	touch(t, filepath.Join(dir, "gyrod.log.3"))

	if n := deleteOldestLog(dir); n != int64(len("gyrod.log.3")) {
		t.Errorf("deleted %d bytes", n)
	}
	if _, err := os.Stat(filepath.Join(dir, "gyrod.log.3")); !os.IsNotExist(err) {
		t.Errorf("oldest log still present")
	}
	if n := deleteOldestLog(t.TempDir()); n != 0 {
		t.Errorf("empty dir deleted %d", n)
	}
}
