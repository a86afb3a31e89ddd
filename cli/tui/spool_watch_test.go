package tui

import (
	"testing"
	"time"
)

func TestSpoolWatchModelAppliesSnapshot(t *testing.T) {
	m := NewSpoolWatchModel(func() (SpoolSnapshot, error) {
		return SpoolSnapshot{}, nil
	}, time.Second)

	updated, _ := m.Update(SpoolSnapshot{TotalEntries: 3, TotalBytes: 1024})
	swm, ok := updated.(spoolWatchModel)
	if !ok {
		t.Fatalf("Update returned %T, want spoolWatchModel", updated)
	}
	if swm.snapshot.TotalEntries != 3 {
		t.Fatalf("snapshot.TotalEntries = %d, want 3", swm.snapshot.TotalEntries)
	}
	if swm.View() == "" {
		t.Fatal("expected non-empty view for a populated snapshot")
	}
}

func TestSpoolWatchModelRecordsPollError(t *testing.T) {
	m := NewSpoolWatchModel(nil, time.Second)
	updated, _ := m.Update(errMsg{errBoom})
	swm := updated.(spoolWatchModel)
	if swm.err == nil {
		t.Fatal("expected err to be recorded")
	}
}

var errBoom = errTest("boom")

type errTest string

func (e errTest) Error() string { return string(e) }
