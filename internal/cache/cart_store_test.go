package cache

import (
	"context"
	"testing"
)

func TestRedisCartStoreLifecycle(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisCartStore(client, "t")
	ctx := context.Background()

	if err := store.Set(ctx, 7, 1, true); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Set(ctx, 7, 2, false); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got := mr.HGet("t:cart:7", "1"); got != "1" {
		t.Fatalf("expected selected flag 1, got %q", got)
	}

	exists, err := store.Exists(ctx, 7, 2)
	if err != nil || !exists {
		t.Fatalf("expected entry 2 to exist: %v", err)
	}
	count, err := store.Count(ctx, 7)
	if err != nil || count != 2 {
		t.Fatalf("expected count 2, got %d err=%v", count, err)
	}

	changed, err := store.SetAll(ctx, 7, true)
	if err != nil || changed != 2 {
		t.Fatalf("expected 2 changed, got %d err=%v", changed, err)
	}
	entries, err := store.Entries(ctx, 7)
	if err != nil {
		t.Fatalf("entries failed: %v", err)
	}
	if !entries[1] || !entries[2] {
		t.Fatalf("expected all selected, got %+v", entries)
	}

	if err := store.Remove(ctx, 7, 1); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	entries, _ = store.Entries(ctx, 7)
	if _, ok := entries[1]; ok {
		t.Fatalf("expected entry 1 removed")
	}
}

func TestRedisCartStoreRemoveDropsOnlyGivenFields(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisCartStore(client, "t")
	ctx := context.Background()

	for _, id := range []uint{1, 2, 3} {
		if err := store.Set(ctx, 9, id, id != 3); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}
	if err := store.Remove(ctx, 9, 1, 2); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	keys, err := mr.HKeys("t:cart:9")
	if err != nil {
		t.Fatalf("hkeys failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "3" {
		t.Fatalf("unexpected cart after remove: %v", keys)
	}

	if err := store.Remove(ctx, 9, 3); err != nil {
		t.Fatalf("remove last failed: %v", err)
	}
	if mr.Exists("t:cart:9") {
		t.Fatalf("expected cart key removed")
	}
}

func TestRedisCartStoreSetAllOnEmptyCart(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisCartStore(client, "t")
	changed, err := store.SetAll(context.Background(), 1, true)
	if err != nil || changed != 0 {
		t.Fatalf("expected no-op, got %d err=%v", changed, err)
	}
}

func TestRedisCartStoreSetAllTouchesOnlyExistingFields(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisCartStore(client, "t")
	ctx := context.Background()

	mr.HSet("t:cart:4", "1", "0")
	mr.HSet("t:cart:4", "2", "1")
	changed, err := store.SetAll(ctx, 4, false)
	if err != nil || changed != 2 {
		t.Fatalf("expected 2 changed, got %d err=%v", changed, err)
	}
	mr.HDel("t:cart:4", "1")
	changed, err = store.SetAll(ctx, 4, true)
	if err != nil || changed != 1 {
		t.Fatalf("expected 1 changed after removal, got %d err=%v", changed, err)
	}
	keys, _ := mr.HKeys("t:cart:4")
	if len(keys) != 1 || keys[0] != "2" {
		t.Fatalf("removed field must not be recreated, got %v", keys)
	}
	if got := mr.HGet("t:cart:4", "2"); got != "1" {
		t.Fatalf("expected field 2 selected, got %q", got)
	}
}

func TestRedisCartStoreMergeKeepsOtherFields(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisCartStore(client, "t")
	ctx := context.Background()

	if err := store.Set(ctx, 5, 3, false); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Merge(ctx, 5, map[uint]bool{1: true, 2: true}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if err := store.Merge(ctx, 5, nil); err != nil {
		t.Fatalf("empty merge failed: %v", err)
	}
	entries, err := store.Entries(ctx, 5)
	if err != nil {
		t.Fatalf("entries failed: %v", err)
	}
	if len(entries) != 3 || !entries[1] || !entries[2] || entries[3] {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
