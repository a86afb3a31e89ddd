package spool

import (
	"context"
	"sync"
	"time"

	"github.com/mhetreayush/xray-sdk/metrics"
)

// MemorySpool is the in-process fallback used when the disk backend fails
// to initialize: a warning is logged regardless of debug level when this
// happens. Entries do not survive process exit.
type MemorySpool struct {
	mu      sync.Mutex
	quota   int64
	reg     *registry
	data    map[string][]byte
	metrics *metrics.Collector
}

// NewMemorySpool creates an empty in-memory spool bounded by quota.
func NewMemorySpool(quota int64, collector *metrics.Collector) *MemorySpool {
	return &MemorySpool{
		quota:   quota,
		reg:     newRegistry(),
		data:    make(map[string][]byte),
		metrics: collector,
	}
}

func (m *MemorySpool) Write(ctx context.Context, id string, data []byte, kind Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[id] = cp
	m.reg.upsert(&Entry{ID: id, Kind: kind, Size: int64(len(data)), CreatedAt: time.Now()})
	m.metrics.IncSpoolWrite()

	if m.quota > 0 && m.reg.size > m.quota {
		m.evictLocked(m.quota)
	}
	return nil
}

func (m *MemorySpool) evictLocked(quota int64) {
	evictOldestLocked(m.reg, quota, func(id string) error {
		delete(m.data, id)
		return nil
	}, m.metrics.IncSpoolEviction)
}

func (m *MemorySpool) Read(ctx context.Context, id string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[id]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (m *MemorySpool) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reg.remove(id); !ok {
		return nil
	}
	delete(m.data, id)
	return nil
}

func (m *MemorySpool) List(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.list(), nil
}

func (m *MemorySpool) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.size
}

func (m *MemorySpool) EvictToFit(ctx context.Context, quota int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked(quota)
	return nil
}

var _ StorageAdapter = (*MemorySpool)(nil)
var _ StorageAdapter = (*DiskSpool)(nil)
