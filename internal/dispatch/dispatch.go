// Package dispatch resolves a suggestion ID to an executable node and
// invokes it. Failures come back as structured results; nothing thrown by a
// command escapes this boundary.
package dispatch

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/jamesmacfie/monocle-sub001/internal/catalog"
	"github.com/jamesmacfie/monocle-sub001/internal/command"
	"github.com/jamesmacfie/monocle-sub001/internal/index"
	"github.com/jamesmacfie/monocle-sub001/internal/usage"
)

// Result is the structured outcome of an execution attempt.
type Result struct {
	Success bool
	Err     error
}

// ErrorMessage renders the error for the channel boundary, empty on success.
func (r Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Dispatcher executes commands and records usage.
type Dispatcher struct {
	usage *usage.Tracker
	log   logr.Logger
}

// New creates a Dispatcher. tracker may be nil to disable usage recording.
func New(tracker *usage.Tracker, log logr.Logger) *Dispatcher {
	return &Dispatcher{usage: tracker, log: log}
}

// Execute locates the node for id, preferring the cached snapshot and
// falling back to live re-derivation through parentPath, then invokes it
// with the context and captured form values. Usage stats are updated on
// success unless the node opts out. Unknown IDs yield a NotFoundError and
// leave usage untouched.
func (d *Dispatcher) Execute(ctx context.Context, ec command.Context, snap *index.Snapshot, roots []command.Node, id string, parentPath []string, values map[string]string) Result {
	node, err := Locate(ctx, ec, snap, roots, id, parentPath, d.log)
	if err != nil {
		return Result{Err: err}
	}

	exec, skipUsage, err := executable(node)
	if err != nil {
		return Result{Err: err}
	}

	if err := invoke(ctx, ec, exec, values); err != nil {
		d.log.Error(err, "command failed", "id", id)
		return Result{Err: err}
	}

	if d.usage != nil && !skipUsage {
		if err := d.usage.Record(id); err != nil {
			// Execution already succeeded; a failed stats write is logged,
			// not surfaced.
			d.log.Error(err, "usage update failed", "id", id)
		}
	}
	return Result{Success: true}
}

// Locate finds the node for an ID: first within the cached snapshot, then,
// when an ancestor path was given, by re-deriving live from the roots.
func Locate(ctx context.Context, ec command.Context, snap *index.Snapshot, roots []command.Node, id string, parentPath []string, log logr.Logger) (command.Node, error) {
	if snap != nil {
		if len(parentPath) > 0 {
			if node, ok := snap.WithPath(id, parentPath); ok {
				return node, nil
			}
		} else if entries := snap.Lookup(id); len(entries) > 0 {
			if len(entries) > 1 {
				log.Info("ambiguous command ID, using first occurrence", "id", id, "occurrences", len(entries))
			}
			return entries[0].Node, nil
		}
	}
	if len(parentPath) > 0 {
		return findLive(ctx, ec, roots, id, parentPath)
	}
	return nil, &command.NotFoundError{ID: id}
}

// findLive re-derives the node by following parentPath from the roots,
// resolving group children on the way. IDs are sibling-unique only, so the
// path pins down exactly one branch.
func findLive(ctx context.Context, ec command.Context, roots []command.Node, id string, parentPath []string) (command.Node, error) {
	current := roots
	for _, ancestorID := range parentPath {
		node := findByID(current, ancestorID)
		if node == nil {
			return nil, &command.NotFoundError{ID: id, Path: parentPath}
		}
		if g, ok := node.(*command.Group); ok {
			children, err := catalog.Children(ctx, ec, g)
			if err != nil {
				return nil, err
			}
			current = children
			continue
		}
		// Non-group ancestors only own their nested actions.
		current = command.BaseOf(node).Actions
	}
	if node := findByID(current, id); node != nil {
		return node, nil
	}
	return nil, &command.NotFoundError{ID: id, Path: parentPath}
}

func findByID(nodes []command.Node, id string) command.Node {
	for _, n := range nodes {
		if command.BaseOf(n).ID == id {
			return n
		}
	}
	return nil
}

// executable extracts the execute function from an Action or Submit node.
func executable(node command.Node) (command.ExecuteFunc, bool, error) {
	base := command.BaseOf(node)
	var exec command.ExecuteFunc
	switch v := node.(type) {
	case *command.Submit:
		exec = v.Execute
	case *command.Action:
		exec = v.Execute
	default:
		return nil, false, fmt.Errorf("command %q is not executable", base.ID)
	}
	if exec == nil {
		return nil, false, fmt.Errorf("command %q has no execute handler", base.ID)
	}
	return exec, base.SkipUsage, nil
}

// invoke runs the handler, converting panics into errors so nothing crosses
// the dispatch boundary as a throw.
func invoke(ctx context.Context, ec command.Context, exec command.ExecuteFunc, values map[string]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command panicked: %v", r)
		}
	}()
	return exec(ctx, ec, values)
}
