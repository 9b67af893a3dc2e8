// Package command defines the command-node data model: the tagged node
// union, deferred values, the resolution context, and the domain error
// taxonomy shared by every consumer of the catalog.
package command

// Context is an immutable snapshot of the environment facts passed to every
// resolution and execution call. It is recomputed per catalog fetch; node
// producers must not cache it across fetches.
type Context struct {
	// URL of the surface the palette is attached to.
	URL string
	// Title of that surface.
	Title string
	// ActiveModifier reports whether the user is holding the modifier key,
	// which switches actions to their modifier label/behavior.
	ActiveModifier bool
	// IsAuxiliarySurface is true when the palette runs in a secondary
	// surface (e.g. a detached popup) rather than the primary one.
	IsAuxiliarySurface bool
}
