// Package batcher implements a time-or-size-triggered event accumulator:
// synchronous, cheap add(); a background timer flushes on interval or
// count threshold; failed flushes are prepended back into the buffer,
// preserving age order, for the next trigger to retry.
//
// Uses a dual-mutex discipline (mu guards buffer state, flushMu serializes
// flush operations) with a swap-under-lock/write-outside-lock/restore-on-
// failure strategy. The timer starts lazily on the first add after Idle
// rather than running for the process lifetime, and stops itself once a
// flush leaves the buffer empty, so a quiescent process does not tick
// forever.
package batcher

import (
	"context"
	"sync"
	"time"

	"github.com/mhetreayush/xray-sdk/log"
	"github.com/mhetreayush/xray-sdk/metrics"
	"github.com/mhetreayush/xray-sdk/types"
)

// FlushFunc is supplied by the owner and may itself be asynchronous with
// respect to the caller of add — the Batcher only requires that it
// eventually returns with a success/failure verdict for the given batch.
type FlushFunc func(ctx context.Context, batch []*types.Event) error

// Batcher accumulates events and flushes them to a FlushFunc either when
// maxBatchSize is reached or every interval, whichever comes first.
type Batcher struct {
	interval     time.Duration
	maxBatchSize int
	onFlush      FlushFunc
	logger       *log.Logger
	metrics      *metrics.Collector

	mu           sync.Mutex
	buffer       []*types.Event
	timer        *time.Timer
	isProcessing bool
	addedDuring  bool // an add() landed while a flush was in progress
	closed       bool

	flushMu sync.Mutex // serializes triggerFlush calls
}

// New creates a Batcher. interval and maxBatchSize must both be positive;
// the owner is expected to have applied config defaults already.
func New(interval time.Duration, maxBatchSize int, onFlush FlushFunc, logger *log.Logger, collector *metrics.Collector) *Batcher {
	return &Batcher{
		interval:     interval,
		maxBatchSize: maxBatchSize,
		onFlush:      onFlush,
		logger:       logger,
		metrics:      collector,
	}
}

// Add appends event to the buffer. Synchronous and cheap: at most it
// starts a timer and, when the buffer reaches maxBatchSize, starts the
// size-triggered flush on its own goroutine, so Add never waits for the
// flush handler.
func (b *Batcher) Add(ctx context.Context, event *types.Event) {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return
	}

	wasEmpty := len(b.buffer) == 0
	b.buffer = append(b.buffer, event)

	if wasEmpty && b.timer == nil {
		// Idle -> Accumulating: start the timer only now.
		b.timer = time.AfterFunc(b.interval, b.onTimerFire)
	}

	shouldFlush := b.maxBatchSize > 0 && len(b.buffer) >= b.maxBatchSize

	if b.isProcessing {
		b.addedDuring = true
	}

	b.mu.Unlock()

	if shouldFlush {
		// Run off the caller's goroutine: add() must stay cheap even when
		// it happens to cross maxBatchSize.
		go b.triggerFlush(ctx)
	}
}

func (b *Batcher) onTimerFire() {
	b.triggerFlush(context.Background())
}

// triggerFlush performs one flush cycle: Accumulating -> Flushing -> (Idle
// | Accumulating). Serialized by flushMu so a count-triggered flush and an
// interval-triggered flush never race each other.
func (b *Batcher) triggerFlush(ctx context.Context) {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if len(b.buffer) == 0 {
		b.isProcessing = false
		b.mu.Unlock()
		return
	}

	batch := b.buffer
	b.buffer = nil
	b.isProcessing = true
	b.addedDuring = false
	b.mu.Unlock()

	err := b.onFlush(ctx, batch)

	b.mu.Lock()
	b.isProcessing = false

	if err != nil {
		// Prepend the failed batch back, preserving age order.
		b.buffer = append(batch, b.buffer...)
		b.metrics.IncBatchFlushFailure()
		b.metrics.IncBatchRequeued(int64(len(batch)))
		if b.logger != nil {
			b.logger.Warn("batch flush failed, requeued", map[string]any{
				"batchSize": len(batch),
				"error":     err.Error(),
			})
		}
	} else {
		b.metrics.IncBatchFlushSuccess(int64(len(batch)))
	}

	if len(b.buffer) > 0 && b.timer == nil && !b.closed {
		b.timer = time.AfterFunc(b.interval, b.onTimerFire)
	}
	b.mu.Unlock()
}

// Drain forces a synchronous flush of whatever is currently buffered and
// marks the Batcher closed, so further Add calls are no-ops. Used on
// Tracer shutdown.
func (b *Batcher) Drain(ctx context.Context) {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	b.triggerFlush(ctx)
}

// Len returns the current buffer length, for tests and diagnostics.
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffer)
}
