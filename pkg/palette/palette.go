// Package palette is the public engine behind the command palette: it
// aggregates providers into a catalog snapshot, projects suggestions,
// resolves keybindings, and executes commands while maintaining favorites,
// settings and usage stats.
package palette

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/jamesmacfie/monocle-sub001/internal/catalog"
	"github.com/jamesmacfie/monocle-sub001/internal/command"
	"github.com/jamesmacfie/monocle-sub001/internal/dispatch"
	"github.com/jamesmacfie/monocle-sub001/internal/index"
	"github.com/jamesmacfie/monocle-sub001/internal/keybind"
	"github.com/jamesmacfie/monocle-sub001/internal/navigator"
	"github.com/jamesmacfie/monocle-sub001/internal/store"
	"github.com/jamesmacfie/monocle-sub001/internal/suggest"
	"github.com/jamesmacfie/monocle-sub001/internal/usage"
)

// favoriteActionSuffix marks the synthetic per-command favorite toggle.
const favoriteActionSuffix = ":favorite"

// CommandSet is the full get-commands payload.
type CommandSet struct {
	Favorites       []suggest.Suggestion `json:"favorites"`
	Recents         []suggest.Suggestion `json:"recents"`
	Suggestions     []suggest.Suggestion `json:"suggestions"`
	DeepSearchItems []suggest.Suggestion `json:"deepSearchItems"`
}

// Commands converts the set into the navigation stack's root page sections.
func (c CommandSet) Commands() navigator.Commands {
	return navigator.Commands{
		Favorites:   c.Favorites,
		Recents:     c.Recents,
		Suggestions: c.Suggestions,
	}
}

// snapshot is the immutable result of one applied catalog fetch. Updates
// that outlive a fetch (settings, favorites) swap in a fresh snapshot value
// rather than mutating the applied one, so readers holding a snapshot never
// observe a concurrent write.
type snapshot struct {
	roots     []command.Node
	idx       *index.Snapshot
	keys      *keybind.Registry
	favorites map[string]bool
	overrides map[string]string
	set       CommandSet
}

// Engine wires the palette components together.
type Engine struct {
	loader  *catalog.Loader
	store   *store.Store
	tracker *usage.Tracker
	disp    *dispatch.Dispatcher
	log     logr.Logger

	platform     string
	granted      catalog.PermissionChecker
	providers    []catalog.Provider
	recentsLimit int
	now          func() time.Time

	mu   sync.Mutex
	snap *snapshot
}

// Option configures the Engine.
type Option func(*Engine)

// WithProviders registers catalog providers in display order.
func WithProviders(providers ...catalog.Provider) Option {
	return func(e *Engine) { e.providers = append(e.providers, providers...) }
}

// WithStore sets the persisted document store. Required.
func WithStore(s *store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithPlatform sets the platform tag used to filter providers.
func WithPlatform(tag string) Option {
	return func(e *Engine) { e.platform = tag }
}

// WithPermissionChecker sets the permission filtering decision.
func WithPermissionChecker(granted catalog.PermissionChecker) Option {
	return func(e *Engine) { e.granted = granted }
}

// WithRecentsLimit bounds the recents list.
func WithRecentsLimit(limit int) Option {
	return func(e *Engine) { e.recentsLimit = limit }
}

// WithClock injects a clock for usage stamping, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(log logr.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an Engine with defaults.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		log:          logr.Discard(),
		recentsLimit: usage.DefaultRecentsLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("palette: a store is required")
	}
	e.loader = catalog.NewLoader(e.platform, e.granted, e.log, e.providers...)
	e.tracker = usage.New(e.store, e.recentsLimit, e.now)
	e.disp = dispatch.New(e.tracker, e.log)
	return e, nil
}

// Refresh performs a catalog fetch: collects roots, walks the full tree once
// for favorites/deep-search/bindings/node-cache, and projects the root
// suggestions. A fetch that loses the sequence race is discarded and the
// previously applied snapshot's commands are returned instead.
func (e *Engine) Refresh(ctx context.Context, ec command.Context) (CommandSet, error) {
	seq := e.loader.BeginFetch()

	favIDs, err := e.store.Favorites()
	if err != nil {
		return CommandSet{}, err
	}
	settings, err := e.store.Settings()
	if err != nil {
		return CommandSet{}, err
	}
	favorites := make(map[string]bool, len(favIDs))
	for _, id := range favIDs {
		favorites[id] = true
	}
	overrides := make(map[string]string, len(settings))
	for id, setting := range settings {
		if setting.Keybinding != "" {
			overrides[id] = setting.Keybinding
		}
	}

	projector := &suggest.Projector{
		Favorites: favorites,
		Overrides: overrides,
		Normalize: keybind.Normalize,
		Augment:   e.favoriteAugment(favorites),
		Log:       e.log,
	}

	roots := e.loader.Roots(ctx, ec)
	idx := index.Build(ctx, ec, roots, projector, e.log)
	keys := keybind.NewRegistry(idx.Builtins, overrides, e.log)

	set := CommandSet{
		Favorites:       idx.Favorites,
		DeepSearchItems: idx.DeepSearch,
	}
	for _, n := range roots {
		set.Suggestions = append(set.Suggestions, projector.Project(ctx, ec, n, nil, nil))
	}
	set.Recents, err = e.projectRecents(ctx, ec, idx, projector)
	if err != nil {
		e.log.Error(err, "recents unavailable")
	}

	next := &snapshot{
		roots:     roots,
		idx:       idx,
		keys:      keys,
		favorites: favorites,
		overrides: overrides,
		set:       set,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loader.CommitFetch(seq) {
		// A newer fetch already applied; keep its data.
		e.log.V(1).Info("stale catalog fetch discarded", "seq", seq)
		if e.snap != nil {
			return e.snap.set, nil
		}
		return set, nil
	}
	e.snap = next
	return set, nil
}

// projectRecents maps the recents ordering onto cached nodes. IDs that no
// longer resolve in the current tree are skipped.
func (e *Engine) projectRecents(ctx context.Context, ec command.Context, idx *index.Snapshot, p *suggest.Projector) ([]suggest.Suggestion, error) {
	ids, err := e.tracker.Recents()
	if err != nil {
		return nil, err
	}
	var recents []suggest.Suggestion
	for _, id := range ids {
		entries := idx.Lookup(id)
		if len(entries) == 0 {
			continue
		}
		entry := entries[0]
		recents = append(recents, p.Project(ctx, ec, entry.Node, entry.Crumbs, entry.Path))
	}
	return recents, nil
}

// favoriteAugment attaches the favorite toggle as a nested action on every
// interactive node.
func (e *Engine) favoriteAugment(favorites map[string]bool) func(command.Node) []command.Node {
	return func(n command.Node) []command.Node {
		base := command.BaseOf(n)
		if strings.HasSuffix(base.ID, favoriteActionSuffix) {
			return nil
		}
		label := "Add to favorites"
		if favorites[base.ID] {
			label = "Remove from favorites"
		}
		target := base.ID
		return []command.Node{&command.Action{
			Base: command.Base{
				ID:        target + favoriteActionSuffix,
				Name:      command.Literal(label),
				SkipUsage: true,
			},
			ActionLabel: command.Literal(label),
			Execute: func(context.Context, command.Context, map[string]string) error {
				_, err := e.ToggleFavorite(target)
				return err
			},
		}}
	}
}

// current returns the applied snapshot, refreshing once when none exists.
func (e *Engine) current(ctx context.Context, ec command.Context) (*snapshot, error) {
	e.mu.Lock()
	snap := e.snap
	e.mu.Unlock()
	if snap != nil {
		return snap, nil
	}
	if _, err := e.Refresh(ctx, ec); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap, nil
}

// GetCommands returns the root command set for the context, fetching the
// catalog anew.
func (e *Engine) GetCommands(ctx context.Context, ec command.Context) (CommandSet, error) {
	return e.Refresh(ctx, ec)
}

// Children resolves and projects the children of a group. The group is
// located in the cached snapshot first, then re-derived through parentPath.
func (e *Engine) Children(ctx context.Context, ec command.Context, id string, parentPath []string) ([]suggest.Suggestion, error) {
	snap, err := e.current(ctx, ec)
	if err != nil {
		return nil, err
	}
	node, err := dispatch.Locate(ctx, ec, snap.idx, snap.roots, id, parentPath, e.log)
	if err != nil {
		return nil, err
	}
	g, ok := node.(*command.Group)
	if !ok {
		return nil, &command.NotFoundError{ID: id, Path: parentPath}
	}
	children, err := catalog.Children(ctx, ec, g)
	if err != nil {
		return nil, err
	}
	projector := &suggest.Projector{
		Favorites: snap.favorites,
		Overrides: snap.overrides,
		Normalize: keybind.Normalize,
		Augment:   e.favoriteAugment(snap.favorites),
		Log:       e.log,
	}
	childPath := append(append([]string{}, parentPath...), id)
	out := make([]suggest.Suggestion, 0, len(children))
	for _, child := range children {
		out = append(out, projector.Project(ctx, ec, child, nil, childPath))
	}
	return out, nil
}

// Execute resolves and runs a command. The synthetic favorite toggle is
// handled inline; everything else goes through the dispatcher.
func (e *Engine) Execute(ctx context.Context, ec command.Context, id string, parentPath []string, values map[string]string) dispatch.Result {
	if target, ok := strings.CutSuffix(id, favoriteActionSuffix); ok && target != "" {
		if _, err := e.ToggleFavorite(target); err != nil {
			return dispatch.Result{Err: err}
		}
		return dispatch.Result{Success: true}
	}
	snap, err := e.current(ctx, ec)
	if err != nil {
		return dispatch.Result{Err: err}
	}
	return e.disp.Execute(ctx, ec, snap.idx, snap.roots, id, parentPath, values)
}

// ExecuteKeybinding resolves a binding to its command and executes it. A
// miss is not an error: it returns success=false with a nil error.
func (e *Engine) ExecuteKeybinding(ctx context.Context, ec command.Context, binding string) dispatch.Result {
	snap, err := e.current(ctx, ec)
	if err != nil {
		return dispatch.Result{Err: err}
	}
	id, ok := snap.keys.Lookup(binding)
	if !ok {
		return dispatch.Result{}
	}
	return e.Execute(ctx, ec, id, nil, nil)
}

// MatchEvent resolves a physical key event against the registry.
func (e *Engine) MatchEvent(ctx context.Context, ec command.Context, ev keybind.Event) (string, bool) {
	snap, err := e.current(ctx, ec)
	if err != nil {
		return "", false
	}
	return snap.keys.Match(ev)
}

// CheckConflict reports the command already holding a binding, excluding the
// command being rebound.
func (e *Engine) CheckConflict(ctx context.Context, ec command.Context, binding, excludeID string) (string, bool) {
	snap, err := e.current(ctx, ec)
	if err != nil {
		return "", false
	}
	return snap.keys.CheckConflict(binding, excludeID)
}

// UpdateSetting persists one per-command setting and rebuilds the keybinding
// registry so the change is visible without a refetch.
func (e *Engine) UpdateSetting(commandID, setting, value string) error {
	if err := e.store.UpdateSetting(commandID, setting, value); err != nil {
		return err
	}
	settings, err := e.store.Settings()
	if err != nil {
		return err
	}
	overrides := make(map[string]string, len(settings))
	for id, s := range settings {
		if s.Keybinding != "" {
			overrides[id] = s.Keybinding
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snap != nil {
		next := *e.snap
		next.overrides = overrides
		next.keys = keybind.NewRegistry(next.idx.Builtins, overrides, e.log)
		e.snap = &next
	}
	return nil
}

// ToggleFavorite flips an ID's membership in the favorite set and reports
// the new state. The favorites section itself is rebuilt on the next fetch.
func (e *Engine) ToggleFavorite(id string) (bool, error) {
	nowFavorite, err := e.store.ToggleFavorite(id)
	if err != nil {
		return false, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snap != nil {
		next := *e.snap
		favorites := make(map[string]bool, len(next.favorites)+1)
		for fav := range next.favorites {
			favorites[fav] = true
		}
		if nowFavorite {
			favorites[id] = true
		} else {
			delete(favorites, id)
		}
		next.favorites = favorites
		e.snap = &next
	}
	return nowFavorite, nil
}

// NewStack builds a navigation stack rooted at the given command set and
// backed by this engine.
func (e *Engine) NewStack(set CommandSet) *navigator.Stack {
	return navigator.New(set.Commands(), e, e.log)
}
