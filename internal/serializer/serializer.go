// Package serializer implements the off-main-thread JSON encoding pool: a
// fixed-size pool of workers that encode arbitrary host values to bytes
// without blocking the caller.
//
// Go has no single-threaded scheduler to protect, so "asynchronous" here
// means "runs on a goroutine the caller doesn't own" rather than
// message-passing across an event loop boundary: a buffered task channel
// plus a fixed worker count takes the place of explicit queue-plus-busy-flag
// bookkeeping, since a blocked channel send already gives "queue full,
// dispatch to the next free worker" for free.
package serializer

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mhetreayush/xray-sdk/metrics"
)

type task struct {
	value  any
	result chan taskResult
}

type taskResult struct {
	bytes []byte
	err   error
}

// Pool is a fixed-size JSON-encoding worker pool.
type Pool struct {
	tasks       chan task
	workerCount int
	wg          sync.WaitGroup
	metrics     *metrics.Collector

	closeOnce sync.Once
	closed    chan struct{}
}

// New starts size workers. size == 0 is valid and means every Serialize
// call falls back to synchronous in-caller encoding.
func New(size int, collector *metrics.Collector) *Pool {
	p := &Pool{
		tasks:       make(chan task, size*4+1),
		workerCount: size,
		metrics:     collector,
		closed:      make(chan struct{}),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		bytes, err := json.Marshal(t.value)
		t.result <- taskResult{bytes: bytes, err: err}
	}
}

// Serialize encodes value to JSON on a pool worker, or synchronously if
// the pool has no workers. Blocks the calling goroutine only — never any
// shared scheduler — until the encode completes or ctx is canceled.
func (p *Pool) Serialize(ctx context.Context, value any) ([]byte, error) {
	if p == nil || p.workerCount == 0 {
		return p.serializeInline(value)
	}

	select {
	case <-p.closed:
		return p.serializeInline(value)
	default:
	}

	t := task{value: value, result: make(chan taskResult, 1)}

	select {
	case p.tasks <- t:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.closed:
		return p.serializeInline(value)
	}

	select {
	case r := <-t.result:
		if r.err != nil {
			p.metrics.IncSerializerFailure()
		}
		return r.bytes, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Pool) serializeInline(value any) ([]byte, error) {
	bytes, err := json.Marshal(value)
	if err != nil {
		p.metrics.IncSerializerFailure()
	}
	return bytes, err
}

// Drain waits until the task queue is empty and no worker is mid-encode,
// then stops every worker. Safe to call once; subsequent Serialize calls
// fall back to inline encoding.
func (p *Pool) Drain() {
	p.closeOnce.Do(func() {
		close(p.closed)
		close(p.tasks)
	})
	p.wg.Wait()
}
