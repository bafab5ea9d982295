package cache

import (
	"context"
	"sync"
	"testing"
)

func TestOrderCounterConcurrentUnique(t *testing.T) {
	_, client := newTestRedis(t)
	counter := NewOrderCounter(client, "t")

	const workers = 50
	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, workers)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := counter.Next(context.Background())
			if err != nil {
				t.Errorf("next failed: %v", err)
				return
			}
			mu.Lock()
			seen[v] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != workers {
		t.Fatalf("expected %d unique values, got %d", workers, len(seen))
	}
}
