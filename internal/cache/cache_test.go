package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return mr, client
}

func TestUseClientEnablesJSONHelpers(t *testing.T) {
	_, client := newTestRedis(t)
	UseClient(client, "t")
	t.Cleanup(func() {
		UseClient(nil, "")
	})

	ctx := context.Background()
	if err := SetJSON(ctx, "k", map[string]int{"a": 1}, 0); err != nil {
		t.Fatalf("set json failed: %v", err)
	}
	var got map[string]int
	hit, err := GetJSON(ctx, "k", &got)
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if got["a"] != 1 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if err := Del(ctx, "k"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	hit, _ = GetJSON(ctx, "k", &got)
	if hit {
		t.Fatalf("expected miss after delete")
	}
}

func TestDisabledCacheIsNoop(t *testing.T) {
	UseClient(nil, "")
	if Enabled() {
		t.Fatalf("expected cache disabled")
	}
	hit, err := GetJSON(context.Background(), "k", &struct{}{})
	if hit || err != nil {
		t.Fatalf("expected silent miss, got hit=%v err=%v", hit, err)
	}
}
