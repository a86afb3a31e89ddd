package eventuploader

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mhetreayush/xray-sdk/internal/ingestclient"
	"github.com/mhetreayush/xray-sdk/internal/serializer"
	"github.com/mhetreayush/xray-sdk/internal/spool"
	"github.com/mhetreayush/xray-sdk/types"
)

func TestOnFlushDeletesSpoolEntryAfterSuccessfulIngest(t *testing.T) {
	var ingestHits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&ingestHits, 1)
		_ = json.NewEncoder(w).Encode(types.IngestResponse{Success: true})
	}))
	defer srv.Close()

	ms := spool.NewMemorySpool(0, nil)
	ser := serializer.New(1, nil)
	defer ser.Drain()
	ic := ingestclient.New(srv.URL, "key", 5*time.Second)

	u := New(time.Hour, 1000, ser, ms, ic, nil, nil)
	u.Add(t.Context(), &types.Event{Type: types.EventStep, TraceID: "t1"})
	u.Drain(t.Context())

	if ingestHits != 1 {
		t.Fatalf("expected 1 ingest call, got %d", ingestHits)
	}
	entries, _ := ms.List(t.Context())
	if len(entries) != 0 {
		t.Fatalf("expected spool entry deleted after successful ingest, got %+v", entries)
	}
}

func TestOnFlushLeavesSpoolEntryOnIngestFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ms := spool.NewMemorySpool(0, nil)
	ser := serializer.New(1, nil)
	defer ser.Drain()
	ic := ingestclient.New(srv.URL, "key", 5*time.Second)

	u := New(time.Hour, 1000, ser, ms, ic, nil, nil)
	u.Add(t.Context(), &types.Event{Type: types.EventStep, TraceID: "t1"})
	u.Drain(t.Context())

	entries, _ := ms.List(t.Context())
	if len(entries) != 1 {
		t.Fatalf("expected one spool entry to survive failed ingest, got %+v", entries)
	}
	if u.batcher.Len() != 1 {
		t.Fatalf("expected event re-queued into batcher, got len=%d", u.batcher.Len())
	}
}
