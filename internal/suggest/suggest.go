// Package suggest projects resolved command nodes into their UI-facing
// form. Projection resolves every deferred property independently so a
// single failing node degrades to a placeholder row instead of taking its
// siblings down with it.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/jamesmacfie/monocle-sub001/internal/command"
)

// Kind tags the projected node variant.
type Kind string

const (
	KindGroup   Kind = "group"
	KindAction  Kind = "action"
	KindSubmit  Kind = "submit"
	KindInput   Kind = "input"
	KindDisplay Kind = "display"
)

// Suggestion is the fully-resolved projection of a command node.
type Suggestion struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	// Name is the breadcrumb, leaf first: a nested item reads
	// ["React Docs", "dev", "bookmarks"]. Top-level items have one element.
	Name        []string `json:"name"`
	Description string   `json:"description,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Color       string   `json:"color,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	IsFavorite  bool     `json:"isFavorite"`
	// Keybinding is the effective binding: the user override when present,
	// otherwise the provider's built-in.
	Keybinding  string `json:"keybinding,omitempty"`
	ActionLabel string `json:"actionLabel,omitempty"`
	RemainOpen  bool   `json:"remainOpenOnSelect,omitempty"`
	HasChildren bool   `json:"hasChildren,omitempty"`
	// Field is set for input rows.
	Field *command.FormField `json:"field,omitempty"`
	// Actions are the projected secondary operations.
	Actions []Suggestion `json:"actions,omitempty"`
	// ParentPath holds the ancestor IDs root-first, qualifying the ID when
	// it is not unique across the tree.
	ParentPath []string `json:"parentPath,omitempty"`
}

// Title returns the leaf display name.
func (s Suggestion) Title() string {
	if len(s.Name) == 0 {
		return s.ID
	}
	return s.Name[0]
}

// Projector converts command nodes into Suggestions.
type Projector struct {
	// Favorites is the persisted favorite set, keyed by command ID.
	Favorites map[string]bool
	// Overrides maps command ID to the user's keybinding override. The
	// effective binding is the override when present, else the node's
	// built-in, both normalized.
	Overrides map[string]string
	// Normalize canonicalizes keybinding strings. Nil leaves them raw.
	Normalize func(string) string
	// Augment, when set, contributes extra nested action nodes for a node
	// (the engine uses it to attach the favorite toggle).
	Augment func(n command.Node) []command.Node
	Log     logr.Logger
}

// maxActionDepth bounds nested-action projection. Actions are declared as
// leaf operations; Base.Actions is provider-supplied, so anything nested
// deeper is cut rather than trusted.
const maxActionDepth = 2

// Project resolves one node into a Suggestion. crumbs holds the ancestor
// display names root-first and path the ancestor IDs root-first; both are
// empty for top-level nodes. A failing name resolution produces a
// display-kind placeholder carrying the error. Augment applies to the node
// itself only, never to the projected nested actions.
func (p *Projector) Project(ctx context.Context, ec command.Context, n command.Node, crumbs, path []string) Suggestion {
	return p.project(ctx, ec, n, crumbs, path, 0)
}

func (p *Projector) project(ctx context.Context, ec command.Context, n command.Node, crumbs, path []string, depth int) Suggestion {
	base := command.BaseOf(n)

	name, err := base.Name.Resolve(ctx, ec, base.ID, "name")
	if err != nil {
		p.Log.Error(err, "node name failed to resolve", "id", base.ID)
		return Suggestion{
			ID:         base.ID,
			Kind:       KindDisplay,
			Name:       breadcrumb(fmt.Sprintf("%s failed to load", base.ID), crumbs),
			ParentPath: clone(path),
		}
	}

	s := Suggestion{
		ID:          base.ID,
		Name:        breadcrumb(name, crumbs),
		Description: p.resolveString(ctx, ec, base.Description, base.ID, "description"),
		Icon:        p.resolveString(ctx, ec, base.Icon, base.ID, "icon"),
		Color:       p.resolveString(ctx, ec, base.Color, base.ID, "color"),
		IsFavorite:  p.Favorites[base.ID],
		ParentPath:  clone(path),
	}
	binding := base.Keybinding
	if override, ok := p.Overrides[base.ID]; ok {
		binding = override
	}
	if p.Normalize != nil {
		binding = p.Normalize(binding)
	}
	s.Keybinding = binding

	keywords, err := base.Keywords.Resolve(ctx, ec, base.ID, "keywords")
	if err != nil {
		p.Log.Error(err, "node keywords failed to resolve", "id", base.ID)
		keywords = nil
	}
	s.Keywords = mergeKeywords(name, keywords, crumbs)

	switch v := n.(type) {
	case *command.Group:
		s.Kind = KindGroup
		s.HasChildren = v.Children != nil
	case *command.Submit:
		s.Kind = KindSubmit
		s.RemainOpen = v.RemainOpen
		s.ActionLabel = p.actionLabel(ctx, ec, &v.Action)
	case *command.Action:
		s.Kind = KindAction
		s.ActionLabel = p.actionLabel(ctx, ec, v)
	case *command.Input:
		s.Kind = KindInput
		field := v.Field
		s.Field = &field
	case *command.Display:
		s.Kind = KindDisplay
	}

	if depth >= maxActionDepth {
		return s
	}
	nested := base.Actions
	if depth == 0 && p.Augment != nil && s.Kind != KindDisplay {
		nested = append(append([]command.Node{}, nested...), p.Augment(n)...)
	}
	for _, child := range nested {
		childPath := append(clone(path), base.ID)
		s.Actions = append(s.Actions, p.project(ctx, ec, child, nil, childPath, depth+1))
	}
	return s
}

// actionLabel resolves the action label, preferring the modifier label while
// the modifier key is held.
func (p *Projector) actionLabel(ctx context.Context, ec command.Context, a *command.Action) string {
	if ec.ActiveModifier && !a.ModifierActionLabel.IsZero() {
		if label := p.resolveString(ctx, ec, a.ModifierActionLabel, a.ID, "modifierActionLabel"); label != "" {
			return label
		}
	}
	return p.resolveString(ctx, ec, a.ActionLabel, a.ID, "actionLabel")
}

func (p *Projector) resolveString(ctx context.Context, ec command.Context, v command.Value[string], id, property string) string {
	out, err := v.Resolve(ctx, ec, id, property)
	if err != nil {
		p.Log.Error(err, "node property failed to resolve", "id", id, "property", property)
		return ""
	}
	return out
}

// breadcrumb builds the leaf-first name list from a leaf name and the
// root-first ancestor names.
func breadcrumb(leaf string, crumbs []string) []string {
	name := make([]string, 0, len(crumbs)+1)
	name = append(name, leaf)
	for i := len(crumbs) - 1; i >= 0; i-- {
		name = append(name, crumbs[i])
	}
	return name
}

// mergeKeywords unions the node's own display-name words, its declared
// keywords, and every ancestor name, all case-normalized, preserving
// first-seen order. A favorited nested item stays searchable by both its own
// words and its folder names.
func mergeKeywords(name string, own, crumbs []string) []string {
	var merged []string
	seen := map[string]bool{}
	add := func(kw string) {
		lower := strings.ToLower(strings.TrimSpace(kw))
		if lower == "" || seen[lower] {
			return
		}
		seen[lower] = true
		merged = append(merged, lower)
	}
	for _, word := range strings.Fields(name) {
		add(word)
	}
	for _, kw := range own {
		add(kw)
	}
	for _, crumb := range crumbs {
		add(crumb)
		for _, word := range strings.Fields(crumb) {
			add(word)
		}
	}
	return merged
}

func clone(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
