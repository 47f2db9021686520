package postgres

import (
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestULIDGeneratorMonotonicWithinMillisecond(t *testing.T) {
	g := NewULIDGenerator()
	frozen := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return frozen }

	prev := g.Generate()
	for i := 0; i < 1000; i++ {
		next := g.Generate()
		if next <= prev {
			t.Fatalf("ids not increasing: %s then %s", prev, next)
		}
		prev = next
	}

	id, err := ulid.ParseStrict(prev)
	if err != nil {
		t.Fatalf("generated id is not a valid ULID: %v", err)
	}
	if got := ulid.Time(id.Time()); !got.Equal(frozen) {
		t.Fatalf("expected timestamp %s, got %s", frozen, got)
	}
}

func TestULIDGeneratorConcurrentUnique(t *testing.T) {
	g := NewULIDGenerator()

	const workers, perWorker = 8, 200
	ids := make(chan string, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- g.Generate()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, workers*perWorker)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
