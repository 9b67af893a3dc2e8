package tui

import (
	"context"
	"testing"

	"charm.land/bubbles/v2/textinput"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesmacfie/monocle-sub001/internal/command"
	"github.com/jamesmacfie/monocle-sub001/internal/dispatch"
	"github.com/jamesmacfie/monocle-sub001/internal/keybind"
	"github.com/jamesmacfie/monocle-sub001/internal/navigator"
	"github.com/jamesmacfie/monocle-sub001/internal/suggest"
)

// stubSource serves one canned child list for navigation tests.
type stubSource struct {
	children []suggest.Suggestion
}

func (s stubSource) Children(context.Context, command.Context, string, []string) ([]suggest.Suggestion, error) {
	return s.children, nil
}

func (s stubSource) Execute(context.Context, command.Context, string, []string, map[string]string) dispatch.Result {
	return dispatch.Result{}
}

func TestMatches(t *testing.T) {
	sug := suggest.Suggestion{
		ID:          "open-react-docs",
		Name:        []string{"React Docs", "dev", "bookmarks"},
		Keywords:    []string{"javascript", "reference"},
		Description: "Open the React documentation",
	}
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"empty query", "", true},
		{"whitespace query", "   ", true},
		{"leaf name", "react", true},
		{"breadcrumb part", "bookmarks", true},
		{"keyword", "javascript", true},
		{"description word", "documentation", true},
		{"all tokens must hit", "react dev", true},
		{"one token misses", "react vue", false},
		{"case insensitive", "REACT", true},
		{"no match", "settings", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matches(sug, tt.query))
		})
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		in   string
		want keybind.Event
		ok   bool
	}{
		{"k", keybind.Event{Key: "k", InTextInput: true}, true},
		{"ctrl+k", keybind.Event{Key: "k", Ctrl: true, InTextInput: true}, true},
		{"alt+shift+k", keybind.Event{Key: "k", Alt: true, Shift: true, InTextInput: true}, true},
		{"meta+enter", keybind.Event{Key: "enter", Meta: true, InTextInput: true}, true},
		{"", keybind.Event{}, false},
		{"hyper+k", keybind.Event{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ev, ok := parseEvent(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, ev)
			}
		})
	}
}

// newRowsModel builds a model around a canned root page, bypassing the
// engine, for exercising row assembly.
func newRowsModel(root navigator.Commands, deep []suggest.Suggestion) *Model {
	return &Model{
		stack:      navigator.New(root, nil, logr.Discard()),
		deepSearch: deep,
		search:     textinput.New(),
	}
}

func rowIDs(rows []row) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.sug.ID)
	}
	return ids
}

func TestRebuildRowsSearchesDeepItemsAtRoot(t *testing.T) {
	root := navigator.Commands{Suggestions: []suggest.Suggestion{
		{ID: "bookmarks", Kind: suggest.KindGroup, Name: []string{"bookmarks"}, HasChildren: true},
	}}
	deep := []suggest.Suggestion{{
		ID:         "open-react-docs",
		Kind:       suggest.KindAction,
		Name:       []string{"React Docs", "dev", "bookmarks"},
		Keywords:   []string{"react", "docs"},
		ParentPath: []string{"bookmarks", "dev"},
	}}
	m := newRowsModel(root, deep)

	m.search.SetValue("react")
	m.rebuildRows()
	require.Equal(t, []string{"open-react-docs"}, rowIDs(m.rows))

	// With no query the deep leaves stay out of the list.
	m.search.SetValue("")
	m.rebuildRows()
	assert.Equal(t, []string{"bookmarks"}, rowIDs(m.rows))
}

func TestRebuildRowsDeduplicatesDeepItemsAgainstTopLevel(t *testing.T) {
	shared := suggest.Suggestion{ID: "open-hn", Kind: suggest.KindAction, Name: []string{"Hacker News"}}
	root := navigator.Commands{Suggestions: []suggest.Suggestion{shared}}
	m := newRowsModel(root, []suggest.Suggestion{shared})

	m.search.SetValue("hacker")
	m.rebuildRows()
	assert.Equal(t, []string{"open-hn"}, rowIDs(m.rows))
}

func TestRebuildRowsSkipsDeepItemsOffRoot(t *testing.T) {
	root := navigator.Commands{Suggestions: []suggest.Suggestion{
		{ID: "bookmarks", Kind: suggest.KindGroup, Name: []string{"bookmarks"}, HasChildren: true},
	}}
	deep := []suggest.Suggestion{{
		ID:       "open-react-docs",
		Kind:     suggest.KindAction,
		Name:     []string{"React Docs", "dev", "bookmarks"},
		Keywords: []string{"react"},
	}}
	m := newRowsModel(root, deep)
	m.stack = navigator.New(root, stubSource{children: []suggest.Suggestion{
		{ID: "dev", Kind: suggest.KindGroup, Name: []string{"dev"}, HasChildren: true},
	}}, logr.Discard())
	require.True(t, m.stack.NavigateTo(t.Context(), m.ec,
		suggest.Suggestion{ID: "bookmarks", Kind: suggest.KindGroup, HasChildren: true}))

	m.search.SetValue("react")
	m.rebuildRows()
	assert.Empty(t, rowIDs(m.rows), "deep leaves only join the root page")
}

func TestAppendSectionHeadersOnlyFirstRow(t *testing.T) {
	sugs := []suggest.Suggestion{
		{ID: "a", Name: []string{"Alpha"}},
		{ID: "b", Name: []string{"Beta"}},
	}
	rows := appendSection(nil, "Commands", sugs, "")
	require.Len(t, rows, 2)
	assert.Equal(t, "Commands", rows[0].header)
	assert.Empty(t, rows[1].header)

	rows = appendSection(nil, "Commands", sugs, "beta")
	require.Len(t, rows, 1)
	assert.Equal(t, "Commands", rows[0].header)
	assert.Equal(t, "b", rows[0].sug.ID)
}
