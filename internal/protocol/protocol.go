// Package protocol carries palette requests over an opaque asynchronous
// channel. Messages are JSON documents discriminated by a "type" field; the
// transport only promises that a response eventually arrives or the request
// fails. Errors cross the boundary as structured responses, never as panics.
package protocol

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/jamesmacfie/monocle-sub001/internal/command"
	"github.com/jamesmacfie/monocle-sub001/internal/suggest"
	"github.com/jamesmacfie/monocle-sub001/pkg/palette"
)

// Message types.
const (
	TypeGetCommands         = "get-commands"
	TypeGetChildrenCommands = "get-children-commands"
	TypeExecuteCommand      = "execute-command"
	TypeExecuteKeybinding   = "execute-keybinding"
	TypeCheckConflict       = "check-keybinding-conflict"
	TypeUpdateSetting       = "update-command-setting"
)

// ContextPayload is the wire form of command.Context.
type ContextPayload struct {
	URL                string `json:"url,omitempty"`
	Title              string `json:"title,omitempty"`
	ActiveModifier     bool   `json:"activeModifier,omitempty"`
	IsAuxiliarySurface bool   `json:"isAuxiliarySurface,omitempty"`
}

// Context converts the payload to the domain type.
func (c *ContextPayload) Context() command.Context {
	if c == nil {
		return command.Context{}
	}
	return command.Context{
		URL:                c.URL,
		Title:              c.Title,
		ActiveModifier:     c.ActiveModifier,
		IsAuxiliarySurface: c.IsAuxiliarySurface,
	}
}

// Request is the union of all request shapes.
type Request struct {
	Type    string          `json:"type"`
	Context *ContextPayload `json:"context,omitempty"`
	ID      string          `json:"id,omitempty"`
	// ParentNames carries the ancestor IDs root-first, qualifying an ID
	// that is not unique across the tree.
	ParentNames      []string          `json:"parentNames,omitempty"`
	FormValues       map[string]string `json:"formValues,omitempty"`
	Keybinding       string            `json:"keybinding,omitempty"`
	ExcludeCommandID string            `json:"excludeCommandId,omitempty"`
	CommandID        string            `json:"commandId,omitempty"`
	Setting          string            `json:"setting,omitempty"`
	Value            string            `json:"value,omitempty"`
}

// Response is the union of all response shapes.
type Response struct {
	Favorites       []suggest.Suggestion `json:"favorites,omitempty"`
	Recents         []suggest.Suggestion `json:"recents,omitempty"`
	Suggestions     []suggest.Suggestion `json:"suggestions,omitempty"`
	DeepSearchItems []suggest.Suggestion `json:"deepSearchItems,omitempty"`
	Children        []suggest.Suggestion `json:"children,omitempty"`

	Success              *bool  `json:"success,omitempty"`
	Error                string `json:"error,omitempty"`
	ConflictingCommandID string `json:"conflictingCommandId,omitempty"`
}

func succeeded(ok bool) *bool { return &ok }

// Handler maps requests onto the palette engine.
type Handler struct {
	engine *palette.Engine
	log    logr.Logger
}

// NewHandler creates a Handler.
func NewHandler(engine *palette.Engine, log logr.Logger) *Handler {
	return &Handler{engine: engine, log: log}
}

// Handle processes one request. Panics inside the engine or a provider are
// converted into error responses so they never cross the channel.
func (h *Handler) Handle(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Info("request panicked", "type", req.Type, "panic", fmt.Sprintf("%v", r))
			resp = Response{Success: succeeded(false), Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	ec := req.Context.Context()
	switch req.Type {
	case TypeGetCommands:
		set, err := h.engine.GetCommands(ctx, ec)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{
			Favorites:       set.Favorites,
			Recents:         set.Recents,
			Suggestions:     set.Suggestions,
			DeepSearchItems: set.DeepSearchItems,
		}

	case TypeGetChildrenCommands:
		children, err := h.engine.Children(ctx, ec, req.ID, req.ParentNames)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{Children: children}

	case TypeExecuteCommand:
		res := h.engine.Execute(ctx, ec, req.ID, req.ParentNames, req.FormValues)
		return Response{Success: succeeded(res.Success), Error: res.ErrorMessage()}

	case TypeExecuteKeybinding:
		res := h.engine.ExecuteKeybinding(ctx, ec, req.Keybinding)
		return Response{Success: succeeded(res.Success), Error: res.ErrorMessage()}

	case TypeCheckConflict:
		id, _ := h.engine.CheckConflict(ctx, ec, req.Keybinding, req.ExcludeCommandID)
		return Response{ConflictingCommandID: id}

	case TypeUpdateSetting:
		if err := h.engine.UpdateSetting(req.CommandID, req.Setting, req.Value); err != nil {
			return Response{Success: succeeded(false), Error: err.Error()}
		}
		return Response{Success: succeeded(true)}

	default:
		return Response{Error: fmt.Sprintf("unknown request type %q", req.Type)}
	}
}

// Serve runs a newline-delimited JSON request/response loop until the reader
// is exhausted or the context is cancelled. Malformed requests produce error
// responses rather than terminating the loop.
func Serve(ctx context.Context, r io.Reader, w io.Writer, h *Handler) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	enc := json.NewEncoder(w)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if encErr := enc.Encode(Response{Error: fmt.Sprintf("malformed request: %v", err)}); encErr != nil {
				return encErr
			}
			continue
		}
		if err := enc.Encode(h.Handle(ctx, req)); err != nil {
			return err
		}
	}
	return scanner.Err()
}
