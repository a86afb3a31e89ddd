package metrics

import "testing"

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.IncSpoolWrite()
	c.IncSpoolEviction()
	c.IncBatchFlushSuccess(5)
	c.IncBlobUploadRetry()

	snap := c.Snapshot()
	if snap.SpoolWrites != 1 || snap.SpoolEvictions != 1 {
		t.Fatalf("unexpected spool counters: %+v", snap)
	}
	if snap.BatchFlushSuccess != 1 || snap.EventsEmitted != 5 {
		t.Fatalf("unexpected batch counters: %+v", snap)
	}
	if snap.BlobUploadRetries != 1 {
		t.Fatalf("unexpected blob counters: %+v", snap)
	}
}

func TestCollectorNilSafe(t *testing.T) {
	var c *Collector
	c.IncSpoolWrite()
	c.IncBatchFlushSuccess(1)
	if snap := c.Snapshot(); snap != (Snapshot{}) {
		t.Fatalf("expected zero snapshot from nil collector, got %+v", snap)
	}
}
