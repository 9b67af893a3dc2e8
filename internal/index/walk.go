// Package index walks the full command-node tree once per catalog fetch,
// deriving the favorites index, the deep-search flattening, the built-in
// keybinding set, and the node lookup used by the dispatcher.
package index

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/jamesmacfie/monocle-sub001/internal/catalog"
	"github.com/jamesmacfie/monocle-sub001/internal/command"
)

// MaxDepth bounds the traversal. Trees are externally supplied and may be
// arbitrarily deep or effectively cyclic through ID reuse; deeper branches
// are cut and logged, siblings are unaffected.
const MaxDepth = 16

// Visit describes one node reached during the walk.
type Visit struct {
	Node command.Node
	// Crumbs holds the resolved ancestor display names, root-first.
	Crumbs []string
	// Path holds the ancestor IDs, root-first.
	Path []string
	// Depth is len(Path): 0 for root nodes.
	Depth int
	// InDeepSearch is true when some ancestor group enables deep search.
	InDeepSearch bool
	// Err is set on synthetic error visits emitted when a branch failed to
	// resolve; Node is then a Display placeholder for that branch only.
	Err error
}

// VisitFunc receives each node in deterministic DFS pre-order.
type VisitFunc func(v Visit)

type frame struct {
	node         command.Node
	crumbs       []string
	path         []string
	inDeepSearch bool
}

// Walk traverses roots depth-first in pre-order using an explicit worklist.
// Group children are resolved live; a failing branch produces one error
// visit and the walk continues with the siblings. Nested actions are visited
// after their owner with the owner appended to the path.
func Walk(ctx context.Context, ec command.Context, roots []command.Node, log logr.Logger, visit VisitFunc) {
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: roots[i]})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		base := command.BaseOf(f.node)

		visit(Visit{
			Node:         f.node,
			Crumbs:       f.crumbs,
			Path:         f.path,
			Depth:        len(f.path),
			InDeepSearch: f.inDeepSearch,
		})

		childPath := appendCopy(f.path, base.ID)
		for i := len(base.Actions) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				node:         base.Actions[i],
				crumbs:       f.crumbs,
				path:         childPath,
				inDeepSearch: false,
			})
		}

		g, ok := f.node.(*command.Group)
		if !ok {
			continue
		}
		if len(f.path) >= MaxDepth {
			log.Info("group exceeds depth bound, branch cut", "id", base.ID, "depth", len(f.path))
			continue
		}
		children, err := catalog.Children(ctx, ec, g)
		if err != nil {
			log.Error(err, "group children failed to resolve", "id", base.ID)
			visit(Visit{
				Node:         command.NewDisplay(base.ID+"-error", "Failed to load "+displayName(ctx, ec, base)),
				Crumbs:       f.crumbs,
				Path:         childPath,
				Depth:        len(childPath),
				InDeepSearch: f.inDeepSearch || g.DeepSearch,
				Err:          err,
			})
			continue
		}
		crumbs := appendCopy(f.crumbs, displayName(ctx, ec, base))
		deep := f.inDeepSearch || g.DeepSearch
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{
				node:         children[i],
				crumbs:       crumbs,
				path:         childPath,
				inDeepSearch: deep,
			})
		}
	}
}

// displayName resolves a node's name for breadcrumb use, falling back to the
// ID when resolution fails.
func displayName(ctx context.Context, ec command.Context, base *command.Base) string {
	name, err := base.Name.Resolve(ctx, ec, base.ID, "name")
	if err != nil || name == "" {
		return base.ID
	}
	return name
}

func appendCopy(in []string, v string) []string {
	out := make([]string, 0, len(in)+1)
	out = append(out, in...)
	return append(out, v)
}
