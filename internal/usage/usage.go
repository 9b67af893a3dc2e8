// Package usage tracks command executions and derives the recents ordering.
package usage

import (
	"sort"
	"time"

	"github.com/jamesmacfie/monocle-sub001/internal/store"
)

// DefaultRecentsLimit bounds the recents list when no limit is configured.
const DefaultRecentsLimit = 5

// Tracker counts executions per command ID on top of the persisted store.
type Tracker struct {
	store *store.Store
	limit int
	now   func() time.Time
}

// New creates a Tracker. limit bounds the recents list; values < 1 fall back
// to DefaultRecentsLimit. now may be nil for the wall clock.
func New(s *store.Store, limit int, now func() time.Time) *Tracker {
	if limit < 1 {
		limit = DefaultRecentsLimit
	}
	if now == nil {
		now = time.Now
	}
	return &Tracker{store: s, limit: limit, now: now}
}

// Record increments the counter for id and stamps the current time. The
// persisted document is pruned well above the recents bound so counts keep
// informing ranking without growing unbounded.
func (t *Tracker) Record(id string) error {
	return t.store.RecordUsage(id, t.now(), t.limit*4)
}

// Stats returns the raw usage document.
func (t *Tracker) Stats() (map[string]store.UsageStat, error) {
	return t.store.Usage()
}

// Recents returns command IDs ordered most-recent-first, ties broken by
// count, bounded by the configured limit.
func (t *Tracker) Recents() ([]string, error) {
	usage, err := t.store.Usage()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(usage))
	for id := range usage {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := usage[ids[i]], usage[ids[j]]
		if !a.LastUsedAt.Equal(b.LastUsedAt) {
			return a.LastUsedAt.After(b.LastUsedAt)
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return ids[i] < ids[j]
	})
	if len(ids) > t.limit {
		ids = ids[:t.limit]
	}
	return ids, nil
}
