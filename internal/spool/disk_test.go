package spool

import (
	"context"
	"testing"
)

func TestDiskSpoolWriteReadDelete(t *testing.T) {
	dir := t.TempDir()
	ds, err := NewDiskSpool(dir, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewDiskSpool: %v", err)
	}
	ctx := context.Background()

	if err := ds.Write(ctx, "id1", []byte("hello"), KindData); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, ok, err := ds.Read(ctx, "id1")
	if err != nil || !ok {
		t.Fatalf("Read: ok=%v err=%v", ok, err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q", data)
	}

	if err := ds.Delete(ctx, "id1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := ds.Read(ctx, "id1"); ok {
		t.Fatalf("expected entry gone after delete")
	}
}

func TestDiskSpoolEvictsOldestFirst(t *testing.T) {
	dir := t.TempDir()
	ds, err := NewDiskSpool(dir, 10, nil, nil)
	if err != nil {
		t.Fatalf("NewDiskSpool: %v", err)
	}
	ctx := context.Background()

	if err := ds.Write(ctx, "a", []byte("0123456789"), KindData); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := ds.Write(ctx, "b", []byte("0123456789"), KindData); err != nil {
		t.Fatalf("write b: %v", err)
	}

	if _, ok, _ := ds.Read(ctx, "a"); ok {
		t.Fatalf("expected 'a' evicted once quota exceeded")
	}
	if _, ok, _ := ds.Read(ctx, "b"); !ok {
		t.Fatalf("expected 'b' to survive as most recent entry")
	}
	if ds.Size() > 10 {
		t.Fatalf("size %d exceeds quota", ds.Size())
	}
}

func TestDiskSpoolRecoversOnReopen(t *testing.T) {
	dir := t.TempDir()
	ds, err := NewDiskSpool(dir, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewDiskSpool: %v", err)
	}
	ctx := context.Background()
	if err := ds.Write(ctx, "id1", []byte("payload"), KindEvents); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reopened, err := NewDiskSpool(dir, 0, nil, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	data, ok, err := reopened.Read(ctx, "id1")
	if err != nil || !ok {
		t.Fatalf("expected recovered entry, ok=%v err=%v", ok, err)
	}
	if string(data) != "payload" {
		t.Fatalf("got %q", data)
	}
}
