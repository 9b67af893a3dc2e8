// Package catalog collects root command nodes from registered providers and
// resolves group children on demand. Provider failures are converted into
// Display placeholder rows so one broken provider never blanks a section.
package catalog

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/jamesmacfie/monocle-sub001/internal/command"
)

// Provider enumerates raw command nodes for one section of the catalog.
type Provider struct {
	// Name identifies the provider in logs and error placeholders.
	Name string
	// Platforms lists the platform tags the provider supports. Empty means
	// every platform.
	Platforms []string
	// Permissions lists the permission names that must be granted before the
	// provider's nodes are offered.
	Permissions []string
	// Commands produces the provider's root nodes for the given context.
	Commands func(ctx context.Context, ec command.Context) ([]command.Node, error)
}

// PermissionChecker reports whether all named permissions are currently
// granted. The palette only makes the filtering decision; enforcement lives
// with the platform.
type PermissionChecker func(ctx context.Context, permissions []string) bool

// Loader aggregates providers into the root node list.
type Loader struct {
	providers []Provider
	platform  string
	granted   PermissionChecker
	log       logr.Logger

	// Fetch sequencing: a completed fetch may only be applied if no newer
	// fetch has been applied already. This closes the stale-fetch-overwrite
	// race without cancelling in-flight fetches.
	nextSeq    atomic.Uint64
	appliedSeq atomic.Uint64
}

// NewLoader creates a Loader. granted may be nil, in which case every
// permission is treated as granted.
func NewLoader(platform string, granted PermissionChecker, log logr.Logger, providers ...Provider) *Loader {
	if granted == nil {
		granted = func(context.Context, []string) bool { return true }
	}
	return &Loader{
		providers: providers,
		platform:  platform,
		granted:   granted,
		log:       log,
	}
}

// Register appends a provider. Registration order is the "suggestions"
// display order.
func (l *Loader) Register(p Provider) {
	l.providers = append(l.providers, p)
}

// BeginFetch reserves a sequence number for a catalog fetch.
func (l *Loader) BeginFetch() uint64 {
	return l.nextSeq.Add(1)
}

// CommitFetch marks a fetch as applied. It returns false when a newer fetch
// already committed, in which case the caller must discard its result.
func (l *Loader) CommitFetch(seq uint64) bool {
	for {
		applied := l.appliedSeq.Load()
		if seq <= applied {
			return false
		}
		if l.appliedSeq.CompareAndSwap(applied, seq) {
			return true
		}
	}
}

// Roots returns the current root nodes in provider-registration order,
// filtered by platform tag and granted permissions. A failing provider
// contributes a single Display node describing the failure.
func (l *Loader) Roots(ctx context.Context, ec command.Context) []command.Node {
	var roots []command.Node
	for _, p := range l.providers {
		if !l.platformSupported(p) {
			continue
		}
		if len(p.Permissions) > 0 && !l.granted(ctx, p.Permissions) {
			l.log.V(1).Info("provider skipped, permissions not granted", "provider", p.Name)
			continue
		}
		if p.Commands == nil {
			continue
		}
		nodes, err := p.Commands(ctx, ec)
		if err != nil {
			cerr := &command.CatalogError{Provider: p.Name, Err: err}
			l.log.Error(cerr, "provider failed", "provider", p.Name)
			roots = append(roots, command.NewDisplay(
				"provider-error-"+p.Name,
				fmt.Sprintf("%s is unavailable: %v", p.Name, err),
			))
			continue
		}
		roots = append(roots, nodes...)
	}
	return roots
}

func (l *Loader) platformSupported(p Provider) bool {
	if len(p.Platforms) == 0 {
		return true
	}
	for _, tag := range p.Platforms {
		if tag == l.platform {
			return true
		}
	}
	return false
}

// Children resolves a group's children, wrapping failures in a CatalogError
// keyed by the group's ID.
func Children(ctx context.Context, ec command.Context, g *command.Group) ([]command.Node, error) {
	if g.Children == nil {
		return nil, nil
	}
	children, err := g.Children(ctx, ec)
	if err != nil {
		return nil, &command.CatalogError{NodeID: g.ID, Err: err}
	}
	return children, nil
}
