package serializer

import (
	"context"
	"strings"
	"sync"
	"testing"
)

func TestSerializeRoundTrip(t *testing.T) {
	p := New(2, nil)
	defer p.Drain()

	bytes, err := p.Serialize(context.Background(), map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(string(bytes), `"a":1`) {
		t.Fatalf("unexpected output: %s", bytes)
	}
}

func TestSerializeZeroWorkersFallsBackInline(t *testing.T) {
	p := New(0, nil)
	defer p.Drain()

	bytes, err := p.Serialize(context.Background(), map[string]any{"x": "y"})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(string(bytes), `"x":"y"`) {
		t.Fatalf("unexpected output: %s", bytes)
	}
}

func TestSerializeUnencodableValueFails(t *testing.T) {
	p := New(1, nil)
	defer p.Drain()

	_, err := p.Serialize(context.Background(), map[string]any{"fn": func() {}})
	if err == nil {
		t.Fatal("expected marshal error for a function value")
	}
}

func TestSerializeConcurrentCallers(t *testing.T) {
	p := New(4, nil)
	defer p.Drain()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := p.Serialize(context.Background(), map[string]any{"n": n}); err != nil {
				t.Errorf("Serialize: %v", err)
			}
		}(i)
	}
	wg.Wait()
}

func TestDrainStopsWorkers(t *testing.T) {
	p := New(2, nil)
	p.Drain()

	// After Drain, Serialize must still work via the inline fallback path
	// rather than deadlocking on a closed channel.
	_, err := p.Serialize(context.Background(), map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("Serialize after Drain: %v", err)
	}
}
