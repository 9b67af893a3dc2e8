package command

import (
	"fmt"
	"strings"
)

// ResolutionError reports that a deferred value's resolver function failed.
// It carries the node and property so callers can degrade just that value
// instead of blanking a whole list.
type ResolutionError struct {
	NodeID   string
	Property string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s of %q: %v", e.Property, e.NodeID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// CatalogError reports that a provider or a group's child producer failed.
type CatalogError struct {
	Provider string
	NodeID   string
	Err      error
}

func (e *CatalogError) Error() string {
	where := e.Provider
	if e.NodeID != "" {
		where = e.NodeID
	}
	return fmt.Sprintf("catalog %q: %v", where, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// NotFoundError reports that no node matched the requested ID (and ancestor
// path, when one was given).
type NotFoundError struct {
	ID   string
	Path []string
}

func (e *NotFoundError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("command %q not found under %s", e.ID, strings.Join(e.Path, "/"))
	}
	return fmt.Sprintf("command %q not found", e.ID)
}

// ConflictError reports that a keybinding is already bound to another command.
type ConflictError struct {
	Binding   string
	CommandID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("keybinding %q already bound to %q", e.Binding, e.CommandID)
}
