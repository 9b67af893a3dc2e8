// Package navigator holds the drill-down state machine: an ordered stack of
// pages plus an optional active form. All transitions are synchronous; the
// only suspension points sit inside the child fetches and executions the
// transitions trigger.
package navigator

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/jamesmacfie/monocle-sub001/internal/command"
	"github.com/jamesmacfie/monocle-sub001/internal/dispatch"
	"github.com/jamesmacfie/monocle-sub001/internal/suggest"
)

// RootPageID identifies the permanent bottom page of the stack.
const RootPageID = "root"

// Commands groups the three sections of a page.
type Commands struct {
	Favorites   []suggest.Suggestion `json:"favorites"`
	Recents     []suggest.Suggestion `json:"recents"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

// Page is one level of the drill-down path.
type Page struct {
	ID         string
	Commands   Commands
	SearchText string
	// Parent is the suggestion that was drilled into, kept for breadcrumb
	// display. Nil on the root page.
	Parent *suggest.Suggestion
	// ParentPath holds the ancestor IDs root-first. Empty on the root page.
	ParentPath []string
}

// FormHandle tracks an in-progress form for a Submit or Input node.
type FormHandle struct {
	Target suggest.Suggestion
	Values map[string]string
}

// Source supplies live children and executions. The palette engine
// implements it.
type Source interface {
	Children(ctx context.Context, ec command.Context, id string, parentPath []string) ([]suggest.Suggestion, error)
	Execute(ctx context.Context, ec command.Context, id string, parentPath []string, values map[string]string) dispatch.Result
}

// Outcome reports what a SelectCommand call did.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeNavigated
	OutcomeFormOpened
	OutcomeExecuted
)

// Stack is the navigation state machine. It always holds at least the root
// page.
type Stack struct {
	pages  []Page
	form   *FormHandle
	source Source
	log    logr.Logger
}

// New creates a stack seeded with the root page.
func New(root Commands, source Source, log logr.Logger) *Stack {
	return &Stack{
		pages:  []Page{{ID: RootPageID, Commands: root}},
		source: source,
		log:    log,
	}
}

// Top returns the current page.
func (s *Stack) Top() *Page { return &s.pages[len(s.pages)-1] }

// Breadcrumbs returns the display names of the drilled-into parents,
// root-first. Empty while on the root page.
func (s *Stack) Breadcrumbs() []string {
	var names []string
	for _, p := range s.pages[1:] {
		if p.Parent != nil {
			names = append(names, p.Parent.Title())
		}
	}
	return names
}

// Depth returns the number of pages on the stack.
func (s *Stack) Depth() int { return len(s.pages) }

// ActiveForm returns the in-progress form, or nil.
func (s *Stack) ActiveForm() *FormHandle { return s.form }

// SetRoot replaces the root page's commands in place after a catalog
// refresh. Pages above the root and the root's search text are untouched.
func (s *Stack) SetRoot(c Commands) {
	s.pages[0].Commands = c
}

// UpdateSearch mutates only the top page's search text.
func (s *Stack) UpdateSearch(text string) {
	s.Top().SearchText = text
}

// NavigateTo resolves the suggestion's children and pushes a new page with
// empty search text. It reports false, leaving the stack untouched, when the
// node has no children, resolution fails, or resolution yields an empty
// list; the user is never left on an empty page.
func (s *Stack) NavigateTo(ctx context.Context, ec command.Context, sug suggest.Suggestion) bool {
	if !sug.HasChildren {
		return false
	}
	children, err := s.source.Children(ctx, ec, sug.ID, sug.ParentPath)
	if err != nil {
		s.log.Error(err, "navigation failed", "id", sug.ID)
		return false
	}
	if len(children) == 0 {
		return false
	}
	parent := sug
	s.pages = append(s.pages, Page{
		ID:         sug.ID,
		Commands:   Commands{Suggestions: children},
		Parent:     &parent,
		ParentPath: append(append([]string{}, sug.ParentPath...), sug.ID),
	})
	return true
}

// NavigateBack clears an active form first, returning control to the page
// underneath without popping it. Otherwise it pops the top page when one
// exists above the root; at the root it reports false and the caller decides
// whether that closes the palette. The restored page re-presents its stored
// search text verbatim.
func (s *Stack) NavigateBack() bool {
	if s.form != nil {
		s.form = nil
		return true
	}
	if len(s.pages) > 1 {
		s.pages = s.pages[:len(s.pages)-1]
		return true
	}
	return false
}

// SelectCommand dispatches on the suggestion's kind: groups navigate,
// form-backed nodes open a form, leaf actions execute, display rows are
// inert.
func (s *Stack) SelectCommand(ctx context.Context, ec command.Context, sug suggest.Suggestion) (Outcome, dispatch.Result) {
	switch {
	case sug.Kind == suggest.KindGroup:
		if s.NavigateTo(ctx, ec, sug) {
			return OutcomeNavigated, dispatch.Result{}
		}
		return OutcomeNone, dispatch.Result{}
	case sug.Kind == suggest.KindInput, sug.Kind == suggest.KindSubmit && sug.Field != nil:
		s.OpenForm(sug)
		return OutcomeFormOpened, dispatch.Result{}
	case sug.Kind == suggest.KindAction, sug.Kind == suggest.KindSubmit:
		return OutcomeExecuted, s.source.Execute(ctx, ec, sug.ID, sug.ParentPath, nil)
	default:
		return OutcomeNone, dispatch.Result{}
	}
}

// OpenForm activates a form handle for the given suggestion.
func (s *Stack) OpenForm(sug suggest.Suggestion) {
	s.form = &FormHandle{Target: sug, Values: map[string]string{}}
}

// SetFormValue records one captured field value on the active form.
func (s *Stack) SetFormValue(name, value string) {
	if s.form == nil {
		return
	}
	s.form.Values[name] = value
}

// SubmitForm executes the active form's target with the captured values.
// The form is cleared on success unless the target asks to remain open.
func (s *Stack) SubmitForm(ctx context.Context, ec command.Context) dispatch.Result {
	if s.form == nil {
		return dispatch.Result{Err: &command.NotFoundError{ID: "(no active form)"}}
	}
	target := s.form.Target
	res := s.source.Execute(ctx, ec, target.ID, target.ParentPath, s.form.Values)
	if res.Success && !target.RemainOpen {
		s.form = nil
	}
	return res
}
