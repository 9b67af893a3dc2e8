package index

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/jamesmacfie/monocle-sub001/internal/command"
	"github.com/jamesmacfie/monocle-sub001/internal/suggest"
)

// Entry is one cached node with the path that reached it. The same ID may
// appear under several paths; entries are kept per path so branches are
// never conflated.
type Entry struct {
	Node command.Node
	Path []string
	// Crumbs holds the resolved ancestor display names matching Path.
	Crumbs []string
}

// Snapshot is the denormalized result of one full tree walk. It is built
// once per catalog fetch and never mutated afterwards.
type Snapshot struct {
	// Favorites holds breadcrumb-annotated suggestions for every favorited
	// ID found anywhere in the tree, in DFS pre-order.
	Favorites []suggest.Suggestion
	// DeepSearch holds the flattened leaves of every deep-searchable group,
	// in DFS pre-order.
	DeepSearch []suggest.Suggestion
	// Builtins maps command ID to the built-in keybinding declared on it.
	Builtins map[string]string
	// ByID maps command ID to every cached occurrence of that ID.
	ByID map[string][]Entry
}

// Build walks the full tree once, collecting favorites, deep-search items,
// built-in bindings and the node cache in a single pass. The projector's
// favorite set decides which nodes enter the Favorites list.
func Build(ctx context.Context, ec command.Context, roots []command.Node, p *suggest.Projector, log logr.Logger) *Snapshot {
	snap := &Snapshot{
		Builtins: map[string]string{},
		ByID:     map[string][]Entry{},
	}
	Walk(ctx, ec, roots, log, func(v Visit) {
		base := command.BaseOf(v.Node)

		snap.ByID[base.ID] = append(snap.ByID[base.ID], Entry{Node: v.Node, Path: v.Path, Crumbs: v.Crumbs})
		if base.Keybinding != "" {
			if _, taken := snap.Builtins[base.ID]; !taken {
				snap.Builtins[base.ID] = base.Keybinding
			}
		}

		if v.Err != nil {
			// A branch failure is recorded in both lists so neither section
			// silently loses the branch; siblings are unaffected.
			placeholder := p.Project(ctx, ec, v.Node, v.Crumbs, v.Path)
			snap.Favorites = append(snap.Favorites, placeholder)
			if v.InDeepSearch {
				snap.DeepSearch = append(snap.DeepSearch, placeholder)
			}
			return
		}

		if p.Favorites[base.ID] {
			snap.Favorites = append(snap.Favorites, p.Project(ctx, ec, v.Node, v.Crumbs, v.Path))
		}
		if v.InDeepSearch && isLeaf(v.Node) {
			snap.DeepSearch = append(snap.DeepSearch, p.Project(ctx, ec, v.Node, v.Crumbs, v.Path))
		}
	})
	return snap
}

// isLeaf reports whether a node is an interactive leaf for deep-search
// flattening purposes.
func isLeaf(n command.Node) bool {
	switch n.(type) {
	case *command.Action, *command.Submit, *command.Input:
		return true
	default:
		return false
	}
}

// Lookup returns the cached entries for an ID.
func (s *Snapshot) Lookup(id string) []Entry {
	return s.ByID[id]
}

// Unique returns the single cached node for an ID when exactly one exists.
func (s *Snapshot) Unique(id string) (command.Node, bool) {
	entries := s.ByID[id]
	if len(entries) != 1 {
		return nil, false
	}
	return entries[0].Node, true
}

// WithPath returns the cached node whose ancestor path matches exactly.
func (s *Snapshot) WithPath(id string, path []string) (command.Node, bool) {
	for _, entry := range s.ByID[id] {
		if pathsEqual(entry.Path, path) {
			return entry.Node, true
		}
	}
	return nil, false
}

func pathsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
