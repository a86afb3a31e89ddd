package spool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mhetreayush/xray-sdk/log"
	"github.com/mhetreayush/xray-sdk/metrics"
)

// DiskSpool persists entries under two subdirectories, data/ and events/,
// named {id}.data.bin and {id}.events.json respectively. A startup scan of
// both directories seeds the in-memory registry so restart resumes FIFO
// ordering without a sidecar index.
type DiskSpool struct {
	mu       sync.Mutex
	root     string
	dataDir  string
	eventDir string
	quota    int64
	reg      *registry
	logger   *log.Logger
	metrics  *metrics.Collector
}

// NewDiskSpool opens (and if necessary creates) the spool rooted at dir,
// scanning existing entries into the registry before returning.
func NewDiskSpool(dir string, quota int64, logger *log.Logger, collector *metrics.Collector) (*DiskSpool, error) {
	dataDir := filepath.Join(dir, "data")
	eventDir := filepath.Join(dir, "events")

	for _, d := range []string{dataDir, eventDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, WrapInitError(err, d)
		}
	}

	ds := &DiskSpool{
		root:     dir,
		dataDir:  dataDir,
		eventDir: eventDir,
		quota:    quota,
		reg:      newRegistry(),
		logger:   logger,
		metrics:  collector,
	}

	entries, err := ds.scan()
	if err != nil {
		return nil, WrapInitError(err, dir)
	}
	ds.reg.loadSorted(entries)
	return ds, nil
}

func (d *DiskSpool) dirFor(kind Kind) string {
	if kind == KindEvents {
		return d.eventDir
	}
	return d.dataDir
}

func (d *DiskSpool) pathFor(id string, kind Kind) string {
	ext := "data.bin"
	if kind == KindEvents {
		ext = "events.json"
	}
	return filepath.Join(d.dirFor(kind), fmt.Sprintf("%s.%s", id, ext))
}

// scan walks both subdirectories and reconstructs Entry metadata from file
// stat info, sorted ascending by ModTime (our birth-time proxy).
func (d *DiskSpool) scan() ([]Entry, error) {
	var out []Entry
	for _, kind := range []Kind{KindData, KindEvents} {
		dir := d.dirFor(kind)
		infos, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			if info.IsDir() {
				continue
			}
			id, ok := idFromFilename(info.Name(), kind)
			if !ok {
				continue
			}
			fi, err := info.Info()
			if err != nil {
				continue
			}
			out = append(out, Entry{
				ID:        id,
				Kind:      kind,
				Size:      fi.Size(),
				CreatedAt: fi.ModTime(),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func idFromFilename(name string, kind Kind) (string, bool) {
	suffix := ".data.bin"
	if kind == KindEvents {
		suffix = ".events.json"
	}
	if !strings.HasSuffix(name, suffix) {
		return "", false
	}
	return strings.TrimSuffix(name, suffix), true
}

// Write persists data under id, evicting the oldest entries first if the
// write would otherwise exceed quota.
func (d *DiskSpool) Write(ctx context.Context, id string, data []byte, kind Kind) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	path := d.pathFor(id, kind)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		d.metrics.IncSpoolWriteFailure()
		return WrapWriteError(err, path)
	}
	if err := os.Rename(tmp, path); err != nil {
		d.metrics.IncSpoolWriteFailure()
		return WrapWriteError(err, path)
	}

	d.reg.upsert(&Entry{ID: id, Kind: kind, Size: int64(len(data)), CreatedAt: time.Now()})
	d.metrics.IncSpoolWrite()

	if d.quota > 0 && d.reg.size > d.quota {
		d.evictLocked(ctx, d.quota)
	}
	return nil
}

func (d *DiskSpool) evictLocked(_ context.Context, quota int64) {
	evictOldestLocked(d.reg, quota, func(id string) error {
		entry, ok := d.reg.get(id)
		if !ok {
			return nil
		}
		return os.Remove(d.pathFor(id, entry.Kind))
	}, d.metrics.IncSpoolEviction)
}

// Read returns the bytes for id, or ok=false if no such entry exists.
func (d *DiskSpool) Read(ctx context.Context, id string) ([]byte, bool, error) {
	d.mu.Lock()
	entry, ok := d.reg.get(id)
	d.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	data, err := os.ReadFile(d.pathFor(id, entry.Kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, WrapReadError(err, d.pathFor(id, entry.Kind))
	}
	return data, true, nil
}

// Delete removes id from disk and the registry. Missing files are not an
// error — delete is idempotent so callers can retry freely.
func (d *DiskSpool) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.reg.remove(id)
	if !ok {
		return nil
	}
	if err := os.Remove(d.pathFor(id, entry.Kind)); err != nil && !os.IsNotExist(err) {
		return WrapWriteError(err, d.pathFor(id, entry.Kind))
	}
	return nil
}

// List returns every known entry, oldest first.
func (d *DiskSpool) List(ctx context.Context) ([]Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reg.list(), nil
}

// Size returns the total bytes currently spooled.
func (d *DiskSpool) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reg.size
}

// EvictToFit forces eviction down to quota, independent of the spool's
// configured quota.
func (d *DiskSpool) EvictToFit(ctx context.Context, quota int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.evictLocked(ctx, quota)
	return nil
}
