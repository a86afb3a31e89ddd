// Package blobuploader implements the per-blob upload state machine:
// serializing -> spooled -> presigned -> uploading -> done, with a bounded
// exponential-backoff retry loop on the presign and upload steps.
//
// The retry loop follows the same exponential-backoff idiom as the
// webhook adapter (time.Duration(1<<uint(i-1))*base, context-aware sleep
// via select on ctx.Done()/time.After); pending work is tracked with one
// independent goroutine per task.
package blobuploader

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mhetreayush/xray-sdk/internal/ingestclient"
	"github.com/mhetreayush/xray-sdk/internal/serializer"
	"github.com/mhetreayush/xray-sdk/internal/spool"
	"github.com/mhetreayush/xray-sdk/log"
	"github.com/mhetreayush/xray-sdk/metrics"
	"github.com/mhetreayush/xray-sdk/types"
)

const (
	backoffBase        = 1 * time.Second
	backoffCap         = 10 * time.Second
	maxAttempts        = 5
	backoffJitterFrac  = 0.2 // +/- up to 20% jitter
	uploadContentType  = "application/json"
)

// Task describes one blob pending upload.
type Task struct {
	DataID   string
	TraceID  string
	Key      string
	Metadata types.Metadata
	Value    any // the raw host value to serialize; nil when resuming from recovery
}

// Uploader drives Task values through the per-blob state machine.
type Uploader struct {
	serializer *serializer.Pool
	spool      spool.StorageAdapter
	ingest     *ingestclient.Client
	httpClient *http.Client
	logger     *log.Logger
	metrics    *metrics.Collector

	mu      sync.Mutex
	pending map[string]struct{}
	wg      sync.WaitGroup
}

// New creates an Uploader.
func New(ser *serializer.Pool, sp spool.StorageAdapter, ing *ingestclient.Client, logger *log.Logger, collector *metrics.Collector) *Uploader {
	return &Uploader{
		serializer: ser,
		spool:      sp,
		ingest:     ing,
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    collector,
		pending:    make(map[string]struct{}),
	}
}

// Submit starts an independent goroutine driving task through the full
// state machine starting at "serializing". Never blocks the caller.
func (u *Uploader) Submit(ctx context.Context, task Task) {
	u.trackPending(task.DataID)
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		defer u.untrackPending(task.DataID)
		u.runSerializing(ctx, task)
	}()
}

// ResumeFromSpool starts a task at the "presigned" step for a blob the
// startup recovery scan found already spooled under a previous process.
func (u *Uploader) ResumeFromSpool(ctx context.Context, dataID, traceID, key string, metadata types.Metadata) {
	u.trackPending(dataID)
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		defer u.untrackPending(dataID)
		u.runPresignLoop(ctx, Task{DataID: dataID, TraceID: traceID, Key: key, Metadata: metadata}, 0)
	}()
}

func (u *Uploader) trackPending(id string) {
	u.mu.Lock()
	u.pending[id] = struct{}{}
	u.mu.Unlock()
}

func (u *Uploader) untrackPending(id string) {
	u.mu.Lock()
	delete(u.pending, id)
	u.mu.Unlock()
}

// PendingCount returns the number of blob tasks currently in flight.
func (u *Uploader) PendingCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}

// Await blocks until every in-flight task finishes, or ctx is canceled.
func (u *Uploader) Await(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		u.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (u *Uploader) runSerializing(ctx context.Context, task Task) {
	bytes, err := u.serializer.Serialize(ctx, task.Value)
	if err != nil {
		u.metrics.IncBlobDropped()
		if u.logger != nil {
			u.logger.Debug("blob upload dropped: unserializable value", map[string]any{
				"dataId": task.DataID,
				"error":  err.Error(),
			})
		}
		return
	}
	u.runSpooled(ctx, task, bytes)
}

func (u *Uploader) runSpooled(ctx context.Context, task Task, data []byte) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if !u.sleepBackoff(ctx, attempt) {
				return
			}
		}
		if err := u.spool.Write(ctx, task.DataID, data, spool.KindData); err != nil {
			if u.logger != nil {
				u.logger.Debug("blob spool write failed, retrying", map[string]any{
					"dataId": task.DataID, "attempt": attempt, "error": err.Error(),
				})
			}
			continue
		}
		u.runPresignLoop(ctx, task, 0)
		return
	}
	u.metrics.IncBlobDropped()
	if u.logger != nil {
		u.logger.Debug("blob upload dropped: spool write exhausted retries", map[string]any{"dataId": task.DataID})
	}
}

// runPresignLoop drives presign -> upload -> done, retrying from presign on
// any failure in either step.
func (u *Uploader) runPresignLoop(ctx context.Context, task Task, startAttempt int) {
	for attempt := startAttempt; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if !u.sleepBackoff(ctx, attempt) {
				return
			}
		}

		data, ok, err := u.spool.Read(ctx, task.DataID)
		if err != nil || !ok {
			if u.logger != nil {
				u.logger.Debug("blob upload: spool entry missing on presign attempt", map[string]any{
					"dataId": task.DataID, "attempt": attempt,
				})
			}
			continue
		}

		presignResp, err := u.ingest.Presign(ctx, types.PresignRequest{
			DataID: task.DataID, TraceID: task.TraceID, Key: task.Key, Metadata: task.Metadata,
		})
		if err != nil {
			u.metrics.IncBlobUploadRetry()
			if u.logger != nil {
				u.logger.Debug("blob presign failed, retrying", map[string]any{
					"dataId": task.DataID, "attempt": attempt, "error": err.Error(),
				})
			}
			continue
		}

		if err := u.putObject(ctx, presignResp.PresignedURL, data); err != nil {
			u.metrics.IncBlobUploadRetry()
			if u.logger != nil {
				u.logger.Debug("blob upload PUT failed, retrying", map[string]any{
					"dataId": task.DataID, "attempt": attempt, "error": err.Error(),
				})
			}
			continue
		}

		u.metrics.IncBlobUploadSuccess()
		if err := u.spool.Delete(ctx, task.DataID); err != nil && u.logger != nil {
			u.logger.Warn("failed to delete spooled blob after successful upload", map[string]any{
				"dataId": task.DataID, "error": err.Error(),
			})
		}
		return
	}

	u.metrics.IncBlobUploadFailure()
	if u.logger != nil {
		u.logger.Debug("blob upload exhausted retries, leaving spool entry for FIFO eviction", map[string]any{
			"dataId": task.DataID,
		})
	}
}

func (u *Uploader) putObject(ctx context.Context, url string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("blobuploader: build PUT request: %w", err)
	}
	req.Header.Set("Content-Type", uploadContentType)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("blobuploader: PUT failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("blobuploader: PUT unexpected status %d", resp.StatusCode)
	}
	return nil
}

// sleepBackoff sleeps for min(cap, base*2^(attempt-1)) plus jitter. Returns
// false if ctx was canceled during the sleep.
func (u *Uploader) sleepBackoff(ctx context.Context, attempt int) bool {
	backoff := time.Duration(1<<uint(attempt-1)) * backoffBase
	if backoff > backoffCap {
		backoff = backoffCap
	}
	backoff += jitter(backoff)

	select {
	case <-time.After(backoff):
		return true
	case <-ctx.Done():
		return false
	}
}

// jitter returns an offset in [-spread, +spread), where spread is
// backoffJitterFrac of base. The offset is taken from the wall clock's
// nanoseconds at call time rather than from a random source, so retries
// started at different moments get different offsets.
func jitter(base time.Duration) time.Duration {
	spread := time.Duration(float64(base) * backoffJitterFrac)
	if spread <= 0 {
		return 0
	}
	return time.Duration(time.Now().UnixNano()) % (2*spread) - spread
}
