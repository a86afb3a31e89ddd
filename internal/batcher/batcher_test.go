package batcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mhetreayush/xray-sdk/types"
)

func newTestEvent(id string) *types.Event {
	return &types.Event{Type: types.EventStep, TraceID: id}
}

func TestFlushesOnMaxBatchSize(t *testing.T) {
	flushed := make(chan []*types.Event, 1)

	b := New(time.Hour, 2, func(_ context.Context, batch []*types.Event) error {
		flushed <- batch
		return nil
	}, nil, nil)

	ctx := context.Background()
	b.Add(ctx, newTestEvent("a"))
	b.Add(ctx, newTestEvent("b"))

	select {
	case batch := <-flushed:
		if len(batch) != 2 {
			t.Fatalf("expected one flush of 2 events, got %d", len(batch))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for count-triggered flush")
	}
	if b.Len() != 0 {
		t.Fatalf("expected empty buffer after flush, got %d", b.Len())
	}
}

func TestFlushesOnInterval(t *testing.T) {
	flushed := make(chan []*types.Event, 1)

	b := New(20*time.Millisecond, 1000, func(_ context.Context, batch []*types.Event) error {
		flushed <- batch
		return nil
	}, nil, nil)

	b.Add(context.Background(), newTestEvent("a"))

	select {
	case batch := <-flushed:
		if len(batch) != 1 {
			t.Fatalf("expected 1 event, got %d", len(batch))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for interval flush")
	}
}

func TestRequeuesOnFailure(t *testing.T) {
	var attempts int
	done := make(chan struct{})

	b := New(15*time.Millisecond, 1000, func(_ context.Context, batch []*types.Event) error {
		attempts++
		if attempts == 1 {
			return errors.New("ingest unavailable")
		}
		close(done)
		return nil
	}, nil, nil)

	b.Add(context.Background(), newTestEvent("a"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for retried flush to succeed")
	}

	if attempts < 2 {
		t.Fatalf("expected at least 2 attempts, got %d", attempts)
	}
}

func TestDrainFlushesImmediatelyAndStopsAccepting(t *testing.T) {
	flushed := make(chan []*types.Event, 1)
	b := New(time.Hour, 1000, func(_ context.Context, batch []*types.Event) error {
		flushed <- batch
		return nil
	}, nil, nil)

	ctx := context.Background()
	b.Add(ctx, newTestEvent("a"))
	b.Drain(ctx)

	select {
	case batch := <-flushed:
		if len(batch) != 1 {
			t.Fatalf("expected 1 event, got %d", len(batch))
		}
	case <-time.After(time.Second):
		t.Fatal("drain did not flush")
	}

	b.Add(ctx, newTestEvent("b"))
	if b.Len() != 0 {
		t.Fatal("expected Add to be a no-op after Drain")
	}
}

func TestIdleBatcherNeverFlushes(t *testing.T) {
	flushed := false
	b := New(10*time.Millisecond, 1000, func(_ context.Context, batch []*types.Event) error {
		flushed = true
		return nil
	}, nil, nil)

	time.Sleep(50 * time.Millisecond)
	if flushed {
		t.Fatal("expected no flush for an idle batcher with no timer started")
	}
	_ = b
}
