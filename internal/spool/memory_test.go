package spool

import (
	"context"
	"testing"
)

func TestMemorySpoolWriteReadDelete(t *testing.T) {
	ms := NewMemorySpool(0, nil)
	ctx := context.Background()

	if err := ms.Write(ctx, "id1", []byte("hello"), KindData); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, ok, err := ms.Read(ctx, "id1")
	if err != nil || !ok || string(data) != "hello" {
		t.Fatalf("Read: data=%q ok=%v err=%v", data, ok, err)
	}

	if err := ms.Delete(ctx, "id1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := ms.Read(ctx, "id1"); ok {
		t.Fatalf("expected gone after delete")
	}
}

func TestMemorySpoolEviction(t *testing.T) {
	ms := NewMemorySpool(5, nil)
	ctx := context.Background()
	ms.Write(ctx, "a", []byte("12345"), KindData)
	ms.Write(ctx, "b", []byte("12345"), KindData)

	if _, ok, _ := ms.Read(ctx, "a"); ok {
		t.Fatalf("expected 'a' evicted")
	}
	entries, _ := ms.List(ctx)
	if len(entries) != 1 || entries[0].ID != "b" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestMemorySpoolReturnsCopies(t *testing.T) {
	ms := NewMemorySpool(0, nil)
	ctx := context.Background()
	orig := []byte("hello")
	ms.Write(ctx, "id1", orig, KindData)
	orig[0] = 'X'

	data, _, _ := ms.Read(ctx, "id1")
	if string(data) != "hello" {
		t.Fatalf("memory spool should not alias caller's buffer, got %q", data)
	}
}
