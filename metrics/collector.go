// Package metrics accumulates process-lifetime counters for a Tracer root.
// It is a leaf package with no internal dependencies: nil-receiver-safe
// increment methods guarded by a single mutex, and an immutable Snapshot
// for host-side exposition.
//
// This is purely additive observability; nothing in the core
// trace-recording path depends on it.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters. Safe to
// read concurrently after it is returned.
type Snapshot struct {
	SpoolWrites     int64
	SpoolEvictions  int64
	SpoolWriteFails int64

	BatchFlushSuccess int64
	BatchFlushFailure int64
	BatchRequeued     int64
	EventsEmitted     int64

	BlobUploadSuccess int64
	BlobUploadFailure int64
	BlobUploadRetries int64
	BlobDropped       int64

	SerializerFailures int64
}

// Collector accumulates metrics for a single Tracer root. Thread-safe via
// a mutex; all methods are nil-receiver safe so a *Collector field can be
// left nil in tests without guarding every call site.
type Collector struct {
	mu sync.Mutex
	s  Snapshot
}

// New creates an empty Collector.
func New() *Collector {
	return &Collector{}
}

func (c *Collector) IncSpoolWrite() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.s.SpoolWrites++
	c.mu.Unlock()
}

func (c *Collector) IncSpoolEviction() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.s.SpoolEvictions++
	c.mu.Unlock()
}

func (c *Collector) IncSpoolWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.s.SpoolWriteFails++
	c.mu.Unlock()
}

func (c *Collector) IncBatchFlushSuccess(events int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.s.BatchFlushSuccess++
	c.s.EventsEmitted += events
	c.mu.Unlock()
}

func (c *Collector) IncBatchFlushFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.s.BatchFlushFailure++
	c.mu.Unlock()
}

func (c *Collector) IncBatchRequeued(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.s.BatchRequeued += n
	c.mu.Unlock()
}

func (c *Collector) IncBlobUploadSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.s.BlobUploadSuccess++
	c.mu.Unlock()
}

func (c *Collector) IncBlobUploadFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.s.BlobUploadFailure++
	c.mu.Unlock()
}

func (c *Collector) IncBlobUploadRetry() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.s.BlobUploadRetries++
	c.mu.Unlock()
}

func (c *Collector) IncBlobDropped() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.s.BlobDropped++
	c.mu.Unlock()
}

func (c *Collector) IncSerializerFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.s.SerializerFailures++
	c.mu.Unlock()
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}
