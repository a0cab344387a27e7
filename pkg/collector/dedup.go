package collector

import (
	"sync"

	"tagsignal/pkg/feed"
)

// SeenSet is the run-wide dedup store shared across tag workers. A record
// is admitted at most once, by platform ID when present and by the
// composite author+timestamp+text key always. Admission is atomic, so two
// workers observing the same post race to a single winner.
type SeenSet struct {
	mu   sync.Mutex
	ids  map[string]struct{}
	keys map[string]struct{}
}

// NewSeenSet returns an empty dedup store.
func NewSeenSet() *SeenSet {
	return &SeenSet{
		ids:  make(map[string]struct{}),
		keys: make(map[string]struct{}),
	}
}

// Admit reports whether the record is new and, when it is, marks it seen.
func (s *SeenSet) Admit(rec *feed.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.Key()
	if _, dup := s.keys[key]; dup {
		return false
	}
	if rec.ID != "" {
		if _, dup := s.ids[rec.ID]; dup {
			return false
		}
		s.ids[rec.ID] = struct{}{}
	}
	s.keys[key] = struct{}{}
	return true
}

// Len returns the number of admitted records.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}
