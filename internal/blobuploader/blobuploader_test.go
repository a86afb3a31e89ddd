package blobuploader

import (
	"context"
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

func TestSubmitUploadsAndDeletesOnSuccess(t *testing.T) {
	var putHits int32
	uploadSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&putHits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer uploadSrv.Close()

	ingestSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"presignedUrl":"` + uploadSrv.URL + `"}`))
	}))
	defer ingestSrv.Close()

	ms := spool.NewMemorySpool(0, nil)
	ser := serializer.New(1, nil)
	defer ser.Drain()
	ic := ingestclient.New(ingestSrv.URL, "key", 5*time.Second)

	u := New(ser, ms, ic, nil, nil)
	u.Submit(context.Background(), Task{DataID: "d1", TraceID: "t1", Key: "foo", Value: map[string]any{"a": 1}})
	u.Await(context.Background())

	if putHits != 1 {
		t.Fatalf("expected 1 PUT, got %d", putHits)
	}
	if _, ok, _ := ms.Read(context.Background(), "d1"); ok {
		t.Fatal("expected spool entry deleted after successful upload")
	}
	if u.PendingCount() != 0 {
		t.Fatalf("expected no pending tasks after completion, got %d", u.PendingCount())
	}
}

func TestSubmitDropsUnserializableValue(t *testing.T) {
	ms := spool.NewMemorySpool(0, nil)
	ser := serializer.New(1, nil)
	defer ser.Drain()
	ic := ingestclient.New("http://unused.invalid", "key", 5*time.Second)

	u := New(ser, ms, ic, nil, nil)
	u.Submit(context.Background(), Task{DataID: "d1", Value: map[string]any{"fn": func() {}}})
	u.Await(context.Background())

	entries, _ := ms.List(context.Background())
	if len(entries) != 0 {
		t.Fatalf("expected no spool entry for a dropped unserializable blob, got %+v", entries)
	}
}

func TestResumeFromSpoolRetriesPresignAndUploads(t *testing.T) {
	var putHits int32
	uploadSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&putHits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer uploadSrv.Close()

	ingestSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"presignedUrl":"` + uploadSrv.URL + `"}`))
	}))
	defer ingestSrv.Close()

	ms := spool.NewMemorySpool(0, nil)
	ms.Write(context.Background(), "resumed-id", []byte(`{"value":1}`), spool.KindData)

	ser := serializer.New(1, nil)
	defer ser.Drain()
	ic := ingestclient.New(ingestSrv.URL, "key", 5*time.Second)

	u := New(ser, ms, ic, nil, nil)
	u.ResumeFromSpool(context.Background(), "resumed-id", "t1", "foo", types.Metadata{})
	u.Await(context.Background())

	if putHits != 1 {
		t.Fatalf("expected recovered task to upload once, got %d PUTs", putHits)
	}
}
