package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesmacfie/monocle-sub001/internal/command"
)

func newProjector() *Projector {
	return &Projector{Log: logr.Discard()}
}

func TestProjectAction(t *testing.T) {
	p := newProjector()
	n := &command.Action{
		Base: command.Base{
			ID:          "open-react-docs",
			Name:        command.Literal("React Docs"),
			Description: command.Literal("Open the React documentation"),
			Icon:        command.Literal("book"),
			Keywords:    command.Literal([]string{"javascript"}),
			Keybinding:  "shift meta d",
		},
		ActionLabel: command.Literal("Open"),
	}

	s := p.Project(context.Background(), command.Context{}, n, nil, nil)
	assert.Equal(t, "open-react-docs", s.ID)
	assert.Equal(t, KindAction, s.Kind)
	assert.Equal(t, []string{"React Docs"}, s.Name)
	assert.Equal(t, "Open the React documentation", s.Description)
	assert.Equal(t, "Open", s.ActionLabel)
	assert.Equal(t, "shift meta d", s.Keybinding)
	assert.False(t, s.IsFavorite)
	assert.False(t, s.HasChildren)
}

func TestProjectBreadcrumbIsLeafFirst(t *testing.T) {
	p := newProjector()
	n := &command.Action{Base: command.Base{
		ID:   "open-react-docs",
		Name: command.Literal("React Docs"),
	}}

	s := p.Project(context.Background(), command.Context{}, n, []string{"bookmarks", "dev"}, []string{"bookmarks", "dev"})
	assert.Equal(t, []string{"React Docs", "dev", "bookmarks"}, s.Name)
	assert.Equal(t, "React Docs", s.Title())
	assert.Equal(t, []string{"bookmarks", "dev"}, s.ParentPath)
}

func TestProjectMergesAncestorKeywords(t *testing.T) {
	p := newProjector()
	n := &command.Action{Base: command.Base{
		ID:       "open-react-docs",
		Name:     command.Literal("React Docs"),
		Keywords: command.Literal([]string{"javascript"}),
	}}

	s := p.Project(context.Background(), command.Context{}, n, []string{"bookmarks", "dev"}, nil)
	assert.Contains(t, s.Keywords, "react")
	assert.Contains(t, s.Keywords, "docs")
	assert.Contains(t, s.Keywords, "javascript")
	assert.Contains(t, s.Keywords, "dev")
	assert.Contains(t, s.Keywords, "bookmarks")
}

func TestProjectDeferredValuesSeeContext(t *testing.T) {
	p := newProjector()
	n := &command.Action{Base: command.Base{
		ID: "copy-title",
		Name: command.Deferred(func(_ context.Context, ec command.Context) (string, error) {
			return "Copy " + ec.Title, nil
		}),
	}}

	ec := command.Context{URL: "https://example.com", Title: "Example"}
	s := p.Project(context.Background(), ec, n, nil, nil)
	assert.Equal(t, []string{"Copy Example"}, s.Name)
}

func TestProjectNameFailureDegradesToPlaceholder(t *testing.T) {
	p := newProjector()
	n := &command.Action{Base: command.Base{
		ID: "broken",
		Name: command.Deferred(func(context.Context, command.Context) (string, error) {
			return "", errors.New("resolver exploded")
		}),
	}}

	s := p.Project(context.Background(), command.Context{}, n, nil, nil)
	assert.Equal(t, KindDisplay, s.Kind)
	require.NotEmpty(t, s.Name)
	assert.Equal(t, "broken failed to load", s.Name[0])
}

func TestProjectPropertyFailureDegradesJustThatProperty(t *testing.T) {
	p := newProjector()
	n := &command.Action{Base: command.Base{
		ID:   "half-broken",
		Name: command.Literal("Half Broken"),
		Description: command.Deferred(func(context.Context, command.Context) (string, error) {
			return "", errors.New("no description today")
		}),
	}}

	s := p.Project(context.Background(), command.Context{}, n, nil, nil)
	assert.Equal(t, KindAction, s.Kind)
	assert.Equal(t, []string{"Half Broken"}, s.Name)
	assert.Empty(t, s.Description)
}

func TestProjectModifierActionLabel(t *testing.T) {
	n := &command.Action{
		Base:                command.Base{ID: "open-link", Name: command.Literal("Open Link")},
		ActionLabel:         command.Literal("Open"),
		ModifierActionLabel: command.Literal("Open in new tab"),
	}
	p := newProjector()

	s := p.Project(context.Background(), command.Context{}, n, nil, nil)
	assert.Equal(t, "Open", s.ActionLabel)

	s = p.Project(context.Background(), command.Context{ActiveModifier: true}, n, nil, nil)
	assert.Equal(t, "Open in new tab", s.ActionLabel)
}

func TestProjectOverrideBindingWins(t *testing.T) {
	p := &Projector{
		Overrides: map[string]string{"duplicate-tab": "meta shift k"},
		Log:       logr.Discard(),
	}
	n := &command.Action{Base: command.Base{
		ID:         "duplicate-tab",
		Name:       command.Literal("Duplicate Tab"),
		Keybinding: "meta k",
	}}

	s := p.Project(context.Background(), command.Context{}, n, nil, nil)
	assert.Equal(t, "meta shift k", s.Keybinding)
}

func TestProjectFavoritesAndAugment(t *testing.T) {
	p := &Projector{
		Favorites: map[string]bool{"open-hn": true},
		Augment: func(n command.Node) []command.Node {
			return []command.Node{&command.Action{Base: command.Base{
				ID:   command.BaseOf(n).ID + ":favorite",
				Name: command.Literal("Toggle favorite"),
			}}}
		},
		Log: logr.Discard(),
	}
	n := &command.Action{Base: command.Base{ID: "open-hn", Name: command.Literal("Hacker News")}}

	s := p.Project(context.Background(), command.Context{}, n, nil, nil)
	assert.True(t, s.IsFavorite)
	require.Len(t, s.Actions, 1)
	assert.Equal(t, "open-hn:favorite", s.Actions[0].ID)
	assert.Equal(t, []string{"open-hn"}, s.Actions[0].ParentPath)
	// Augment applies to the node itself only; the contributed action is
	// not augmented in turn, even though this Augment never terminates on
	// its own output.
	assert.Empty(t, s.Actions[0].Actions)
}

func TestProjectNestedActionsAreDepthBounded(t *testing.T) {
	p := newProjector()
	deepest := &command.Action{Base: command.Base{ID: "level-three", Name: command.Literal("Three")}}
	middle := &command.Action{Base: command.Base{
		ID:      "level-two",
		Name:    command.Literal("Two"),
		Actions: []command.Node{deepest},
	}}
	n := &command.Action{Base: command.Base{
		ID:      "level-one",
		Name:    command.Literal("One"),
		Actions: []command.Node{middle},
	}}

	s := p.Project(context.Background(), command.Context{}, n, nil, nil)
	require.Len(t, s.Actions, 1)
	require.Len(t, s.Actions[0].Actions, 1)
	assert.Equal(t, "level-three", s.Actions[0].Actions[0].ID)
	assert.Empty(t, s.Actions[0].Actions[0].Actions)
}

func TestProjectInputCarriesField(t *testing.T) {
	p := newProjector()
	n := &command.Input{
		Base: command.Base{ID: "note-text", Name: command.Literal("Note")},
		Field: command.FormField{
			Name:        "text",
			Label:       "Note text",
			Placeholder: "Write something",
			Kind:        command.FieldTextarea,
		},
	}

	s := p.Project(context.Background(), command.Context{}, n, nil, nil)
	assert.Equal(t, KindInput, s.Kind)
	require.NotNil(t, s.Field)
	assert.Equal(t, "text", s.Field.Name)
	assert.Equal(t, command.FieldTextarea, s.Field.Kind)
}
