package keybind

import (
	"sort"
	"strings"

	"github.com/go-logr/logr"
)

// Event is a physical key event to match against the registry.
type Event struct {
	Key   string
	Meta  bool
	Ctrl  bool
	Alt   bool
	Shift bool
	// InTextInput is true when focus sits inside a plain text-entry control.
	// Unmodified keys are then left alone so normal typing is not hijacked.
	InTextInput bool
}

// String renders the event in normalized binding form.
func (e Event) String() string {
	var parts []string
	if e.Meta {
		parts = append(parts, "meta")
	}
	if e.Ctrl {
		parts = append(parts, "ctrl")
	}
	if e.Alt {
		parts = append(parts, "alt")
	}
	if e.Shift {
		parts = append(parts, "shift")
	}
	parts = append(parts, e.Key)
	return Normalize(strings.Join(parts, " "))
}

func (e Event) hasModifier() bool {
	return e.Meta || e.Ctrl || e.Alt || e.Shift
}

// Registry maps normalized bindings to command IDs, merging the built-in
// bindings declared on command nodes with user overrides. Overrides win: a
// command with an override no longer answers to its built-in binding.
type Registry struct {
	builtins  map[string]string // command ID -> normalized built-in binding
	overrides map[string]string // command ID -> normalized override binding
	byBinding map[string]string // normalized binding -> command ID
	log       logr.Logger
}

// NewRegistry builds a registry from the built-in bindings collected off the
// command tree and the user's settings overrides. Both maps are keyed by
// command ID with raw binding strings as values.
func NewRegistry(builtins, overrides map[string]string, log logr.Logger) *Registry {
	r := &Registry{
		builtins:  make(map[string]string, len(builtins)),
		overrides: make(map[string]string, len(overrides)),
		byBinding: make(map[string]string, len(builtins)+len(overrides)),
		log:       log,
	}
	for id, binding := range builtins {
		if norm := Normalize(binding); norm != "" {
			r.builtins[id] = norm
		}
	}
	for id, binding := range overrides {
		if norm := Normalize(binding); norm != "" {
			r.overrides[id] = norm
		}
	}
	r.rebuild()
	return r
}

// rebuild recomputes the binding index. Collisions keep the first command in
// sorted-ID order so the outcome is deterministic, and are logged.
func (r *Registry) rebuild() {
	r.byBinding = make(map[string]string, len(r.builtins)+len(r.overrides))
	ids := make([]string, 0, len(r.builtins)+len(r.overrides))
	seen := map[string]bool{}
	for id := range r.builtins {
		ids = append(ids, id)
		seen[id] = true
	}
	for id := range r.overrides {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		binding := r.Effective(id)
		if binding == "" {
			continue
		}
		if existing, ok := r.byBinding[binding]; ok {
			r.log.Info("keybinding collision", "binding", binding, "kept", existing, "dropped", id)
			continue
		}
		r.byBinding[binding] = id
	}
}

// Effective returns the binding currently in force for a command: the user
// override when present, otherwise the built-in. Empty when unbound.
func (r *Registry) Effective(commandID string) string {
	if binding, ok := r.overrides[commandID]; ok {
		return binding
	}
	return r.builtins[commandID]
}

// Lookup resolves a binding string to a command ID.
func (r *Registry) Lookup(binding string) (string, bool) {
	id, ok := r.byBinding[Normalize(binding)]
	return id, ok
}

// CheckConflict reports which command, if any, already holds the binding.
// excludeID ignores the command currently being rebound.
func (r *Registry) CheckConflict(binding, excludeID string) (string, bool) {
	id, ok := r.byBinding[Normalize(binding)]
	if !ok || id == excludeID {
		return "", false
	}
	return id, true
}

// Match resolves a physical key event to a bound command ID. Unmodified
// keystrokes inside text-entry controls never match; an unbound event is not
// an error, just a miss.
func (r *Registry) Match(ev Event) (string, bool) {
	if ev.Key == "" {
		return "", false
	}
	if ev.InTextInput && !ev.hasModifier() {
		return "", false
	}
	return r.Lookup(ev.String())
}
