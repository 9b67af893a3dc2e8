package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesmacfie/monocle-sub001/internal/store"
)

func newTracker(t *testing.T, limit int) (*Tracker, *time.Time) {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := New(s, limit, func() time.Time { return now })
	return tr, &now
}

func TestRecentsMostRecentFirst(t *testing.T) {
	tr, now := newTracker(t, 5)

	require.NoError(t, tr.Record("open-go-docs"))
	*now = now.Add(time.Minute)
	require.NoError(t, tr.Record("open-hn"))
	*now = now.Add(time.Minute)
	require.NoError(t, tr.Record("toggle-theme"))

	ids, err := tr.Recents()
	require.NoError(t, err)
	assert.Equal(t, []string{"toggle-theme", "open-hn", "open-go-docs"}, ids)
}

func TestRecentsTieBreaksOnCountThenID(t *testing.T) {
	tr, now := newTracker(t, 5)

	// Same timestamp for all three; b executed twice.
	require.NoError(t, tr.Record("b"))
	require.NoError(t, tr.Record("b"))
	require.NoError(t, tr.Record("c"))
	require.NoError(t, tr.Record("a"))
	_ = now

	ids, err := tr.Recents()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestRecentsBounded(t *testing.T) {
	tr, now := newTracker(t, 2)

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, tr.Record(id))
		*now = now.Add(time.Minute)
	}

	ids, err := tr.Recents()
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, ids)
}

func TestLimitFallsBackToDefault(t *testing.T) {
	tr, _ := newTracker(t, 0)
	assert.Equal(t, DefaultRecentsLimit, tr.limit)
}
