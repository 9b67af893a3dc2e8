package command

import "context"

// Node is one entry in the hierarchical catalog. It is a sealed tagged
// union: the concrete variants are Group, Action, Submit, Input and
// Display, and every consumer is expected to type-switch over all of them.
type Node interface {
	common() *Base
}

// BaseOf returns the shared fields of any node variant.
func BaseOf(n Node) *Base { return n.common() }

// Base holds the fields shared by every node variant. IDs are unique among
// siblings only; the same ID may legally appear on different branches.
type Base struct {
	ID          string
	Name        Value[string]
	Description Value[string]
	Icon        Value[string]
	Color       Value[string]
	Keywords    Value[[]string]
	// Keybinding is the built-in binding declared by the provider. User
	// settings may override it.
	Keybinding string
	// Actions are secondary operations presented alongside the node
	// (e.g. "copy URL"). They must be leaf Action nodes.
	Actions []Node
	// SkipUsage opts the node out of usage tracking on execution.
	SkipUsage bool
}

func (b *Base) common() *Base { return b }

// ExecuteFunc runs a leaf command. values carries captured form values and
// is nil for plain actions.
type ExecuteFunc func(ctx context.Context, ec Context, values map[string]string) error

// ChildrenFunc produces a group's children from live context. It is called
// on every navigation into the group; results are never cached across
// catalog fetches.
type ChildrenFunc func(ctx context.Context, ec Context) ([]Node, error)

// Group is a node whose children are computed on demand.
type Group struct {
	Base
	Children ChildrenFunc
	// DeepSearch marks the group's entire descendant tree for pre-flattening
	// into the searchable list.
	DeepSearch bool
}

// Action is a directly executable leaf.
type Action struct {
	Base
	ActionLabel Value[string]
	// ModifierActionLabel, when set, replaces ActionLabel while the user
	// holds the modifier key.
	ModifierActionLabel Value[string]
	Execute             ExecuteFunc
}

// Submit is an Action that completes a form. RemainOpen keeps the palette
// open after a successful submit.
type Submit struct {
	Action
	RemainOpen bool
}

// FieldKind enumerates the supported form field types.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
)

// FormField describes a single form input row.
type FormField struct {
	Name        string
	Label       string
	Placeholder string
	Kind        FieldKind
	Options     []string
	Required    bool
}

// Input is a form input row node.
type Input struct {
	Base
	Field FormField
}

// Display is a non-interactive placeholder row used for empty and error
// states.
type Display struct {
	Base
}

// NewDisplay builds a Display node with a literal name, the usual shape for
// fail-soft placeholders.
func NewDisplay(id, name string) *Display {
	return &Display{Base: Base{ID: id, Name: Literal(name)}}
}
