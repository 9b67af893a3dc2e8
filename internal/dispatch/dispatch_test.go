package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesmacfie/monocle-sub001/internal/command"
	"github.com/jamesmacfie/monocle-sub001/internal/index"
	"github.com/jamesmacfie/monocle-sub001/internal/store"
	"github.com/jamesmacfie/monocle-sub001/internal/suggest"
	"github.com/jamesmacfie/monocle-sub001/internal/usage"
)

func newTracker(t *testing.T) *usage.Tracker {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	return usage.New(s, 5, func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) })
}

func buildSnapshot(t *testing.T, roots []command.Node) *index.Snapshot {
	t.Helper()
	p := &suggest.Projector{Log: logr.Discard()}
	return index.Build(context.Background(), command.Context{}, roots, p, logr.Discard())
}

func TestExecuteRunsAndRecordsUsage(t *testing.T) {
	ran := false
	roots := []command.Node{&command.Action{
		Base: command.Base{ID: "open-hn", Name: command.Literal("Hacker News")},
		Execute: func(_ context.Context, _ command.Context, _ map[string]string) error {
			ran = true
			return nil
		},
	}}
	tracker := newTracker(t)
	d := New(tracker, logr.Discard())

	res := d.Execute(context.Background(), command.Context{}, buildSnapshot(t, roots), roots, "open-hn", nil, nil)
	require.True(t, res.Success)
	require.NoError(t, res.Err)
	assert.True(t, ran)

	recents, err := tracker.Recents()
	require.NoError(t, err)
	assert.Equal(t, []string{"open-hn"}, recents)
}

func TestExecuteUnknownIDLeavesUsageUntouched(t *testing.T) {
	tracker := newTracker(t)
	d := New(tracker, logr.Discard())

	res := d.Execute(context.Background(), command.Context{}, buildSnapshot(t, nil), nil, "missing", nil, nil)
	require.False(t, res.Success)

	var nf *command.NotFoundError
	require.ErrorAs(t, res.Err, &nf)
	assert.Equal(t, "missing", nf.ID)

	recents, err := tracker.Recents()
	require.NoError(t, err)
	assert.Empty(t, recents)
}

func TestExecuteFailureSurfacesAndSkipsUsage(t *testing.T) {
	boom := errors.New("tab refused to close")
	roots := []command.Node{&command.Action{
		Base: command.Base{ID: "close-tab", Name: command.Literal("Close Tab")},
		Execute: func(context.Context, command.Context, map[string]string) error {
			return boom
		},
	}}
	tracker := newTracker(t)
	d := New(tracker, logr.Discard())

	res := d.Execute(context.Background(), command.Context{}, buildSnapshot(t, roots), roots, "close-tab", nil, nil)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, boom)
	assert.Equal(t, "tab refused to close", res.ErrorMessage())

	recents, err := tracker.Recents()
	require.NoError(t, err)
	assert.Empty(t, recents)
}

func TestExecuteRecoversPanic(t *testing.T) {
	roots := []command.Node{&command.Action{
		Base: command.Base{ID: "explode", Name: command.Literal("Explode")},
		Execute: func(context.Context, command.Context, map[string]string) error {
			panic("kaboom")
		},
	}}
	d := New(nil, logr.Discard())

	res := d.Execute(context.Background(), command.Context{}, buildSnapshot(t, roots), roots, "explode", nil, nil)
	require.False(t, res.Success)
	assert.Contains(t, res.Err.Error(), "kaboom")
}

func TestExecuteSkipUsage(t *testing.T) {
	roots := []command.Node{&command.Action{
		Base: command.Base{ID: "palette-help", Name: command.Literal("Help"), SkipUsage: true},
		Execute: func(context.Context, command.Context, map[string]string) error {
			return nil
		},
	}}
	tracker := newTracker(t)
	d := New(tracker, logr.Discard())

	res := d.Execute(context.Background(), command.Context{}, buildSnapshot(t, roots), roots, "palette-help", nil, nil)
	require.True(t, res.Success)

	recents, err := tracker.Recents()
	require.NoError(t, err)
	assert.Empty(t, recents)
}

func TestExecuteGroupIsNotExecutable(t *testing.T) {
	roots := []command.Node{&command.Group{
		Base: command.Base{ID: "bookmarks", Name: command.Literal("Bookmarks")},
	}}
	d := New(nil, logr.Discard())

	res := d.Execute(context.Background(), command.Context{}, buildSnapshot(t, roots), roots, "bookmarks", nil, nil)
	require.False(t, res.Success)
	assert.Contains(t, res.Err.Error(), "not executable")
}

func TestExecutePassesFormValues(t *testing.T) {
	var got map[string]string
	roots := []command.Node{&command.Submit{Action: command.Action{
		Base: command.Base{ID: "open-url:go", Name: command.Literal("Go")},
		Execute: func(_ context.Context, _ command.Context, values map[string]string) error {
			got = values
			return nil
		},
	}}}
	d := New(nil, logr.Discard())

	values := map[string]string{"address": "https://go.dev"}
	res := d.Execute(context.Background(), command.Context{}, buildSnapshot(t, roots), roots, "open-url:go", nil, values)
	require.True(t, res.Success)
	assert.Equal(t, values, got)
}

func TestLocatePrefersPathMatch(t *testing.T) {
	mk := func(folder, label string) command.Node {
		return &command.Group{
			Base: command.Base{ID: folder, Name: command.Literal(folder)},
			Children: func(context.Context, command.Context) ([]command.Node, error) {
				return []command.Node{&command.Action{Base: command.Base{
					ID:   "open",
					Name: command.Literal(label),
				}}}, nil
			},
		}
	}
	roots := []command.Node{mk("left", "Open Left"), mk("right", "Open Right")}
	snap := buildSnapshot(t, roots)

	n, err := Locate(context.Background(), command.Context{}, snap, roots, "open", []string{"right"}, logr.Discard())
	require.NoError(t, err)
	name, err := command.BaseOf(n).Name.Resolve(context.Background(), command.Context{}, "open", "name")
	require.NoError(t, err)
	assert.Equal(t, "Open Right", name)
}

func TestLocateFallsBackToLiveDerivation(t *testing.T) {
	roots := []command.Node{&command.Group{
		Base: command.Base{ID: "tabs", Name: command.Literal("Tabs")},
		Children: func(context.Context, command.Context) ([]command.Node, error) {
			// Children differ per call, as live tab lists do.
			return []command.Node{&command.Action{Base: command.Base{
				ID:   "tab-42",
				Name: command.Literal("Tab 42"),
			}}}, nil
		},
	}}

	// Snapshot built before the tab existed.
	empty := buildSnapshot(t, nil)
	n, err := Locate(context.Background(), command.Context{}, empty, roots, "tab-42", []string{"tabs"}, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, "tab-42", command.BaseOf(n).ID)
}

func TestLocateMissingPath(t *testing.T) {
	empty := buildSnapshot(t, nil)
	_, err := Locate(context.Background(), command.Context{}, empty, nil, "open", []string{"ghost"}, logr.Discard())
	var nf *command.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, []string{"ghost"}, nf.Path)
}
