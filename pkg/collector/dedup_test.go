package collector

import (
	"fmt"
	"sync"
	"testing"

	"tagsignal/pkg/feed"
)

func TestSeenSetAdmitOnce(t *testing.T) {
	seen := NewSeenSet()
	rec := &feed.Record{ID: "1", Author: "alice", ObservedAt: "t1", Text: "hello"}

	if !seen.Admit(rec) {
		t.Fatal("first admission must succeed")
	}
	if seen.Admit(rec) {
		t.Error("second admission of the same record must fail")
	}
	if seen.Len() != 1 {
		t.Errorf("Len = %d, want 1", seen.Len())
	}
}

func TestSeenSetBlocksByID(t *testing.T) {
	seen := NewSeenSet()
	seen.Admit(&feed.Record{ID: "1", Author: "alice", ObservedAt: "t1", Text: "hello"})

	// Same platform ID, different composite key
	dup := &feed.Record{ID: "1", Author: "bob", ObservedAt: "t2", Text: "other"}
	if seen.Admit(dup) {
		t.Error("a known platform ID must be rejected regardless of the key")
	}
}

func TestSeenSetBlocksByKeyWithoutID(t *testing.T) {
	seen := NewSeenSet()
	seen.Admit(&feed.Record{Author: "alice", ObservedAt: "t1", Text: "hello"})

	dup := &feed.Record{Author: "alice", ObservedAt: "t1", Text: "hello"}
	if seen.Admit(dup) {
		t.Error("a known composite key must be rejected even without an ID")
	}

	other := &feed.Record{Author: "alice", ObservedAt: "t1", Text: "different"}
	if !seen.Admit(other) {
		t.Error("a fresh key must be admitted")
	}
}

func TestSeenSetConcurrentAdmission(t *testing.T) {
	seen := NewSeenSet()

	const workers = 8
	const perWorker = 100
	var admitted int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	// All workers race over the same 100 records
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := 0
			for i := 0; i < perWorker; i++ {
				rec := &feed.Record{
					Author:     "alice",
					ObservedAt: fmt.Sprintf("t%d", i),
					Text:       "body",
				}
				if seen.Admit(rec) {
					local++
				}
			}
			mu.Lock()
			admitted += int64(local)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if admitted != perWorker {
		t.Errorf("admitted %d records, want exactly %d", admitted, perWorker)
	}
	if seen.Len() != perWorker {
		t.Errorf("Len = %d, want %d", seen.Len(), perWorker)
	}
}
