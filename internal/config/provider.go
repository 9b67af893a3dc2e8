package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/jamesmacfie/monocle-sub001/internal/catalog"
	"github.com/jamesmacfie/monocle-sub001/internal/command"
	"github.com/jamesmacfie/monocle-sub001/internal/expr"
)

// Opener performs a URL action. The CLI prints the address; a richer host
// can hand it to the OS.
type Opener func(ctx context.Context, url string) error

// Printer performs a message action.
type Printer func(ctx context.Context, msg string) error

// Providers builds catalog providers from the config. Name and keyword
// expressions are compiled eagerly so a bad expression fails at load time
// rather than mid-session.
func Providers(cfg File, ev *expr.Evaluator, open Opener, print Printer) ([]catalog.Provider, error) {
	out := make([]catalog.Provider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		nodes, err := buildNodes(p.Name, p.Commands, ev, open, print)
		if err != nil {
			return nil, err
		}
		out = append(out, catalog.Provider{
			Name:        p.Name,
			Platforms:   p.Platforms,
			Permissions: p.Permissions,
			Commands: func(ctx context.Context, ec command.Context) ([]command.Node, error) {
				return nodes, nil
			},
		})
	}
	return out, nil
}

func buildNodes(where string, cmds []Command, ev *expr.Evaluator, open Opener, print Printer) ([]command.Node, error) {
	nodes := make([]command.Node, 0, len(cmds))
	for _, c := range cmds {
		n, err := buildNode(where, c, ev, open, print)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func buildNode(where string, c Command, ev *expr.Evaluator, open Opener, print Printer) (command.Node, error) {
	base, err := buildBase(where, c, ev)
	if err != nil {
		return nil, err
	}

	switch {
	case len(c.Children) > 0:
		children, err := buildNodes(where+"/"+c.ID, c.Children, ev, open, print)
		if err != nil {
			return nil, err
		}
		return &command.Group{
			Base: base,
			Children: func(ctx context.Context, ec command.Context) ([]command.Node, error) {
				return children, nil
			},
			DeepSearch: c.DeepSearch,
		}, nil

	case c.Field != nil:
		kind, err := fieldKind(c.Field.Kind)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", where, c.ID, err)
		}
		return &command.Input{
			Base: base,
			Field: command.FormField{
				Name:        c.Field.Name,
				Label:       c.Field.Label,
				Placeholder: c.Field.Placeholder,
				Kind:        kind,
				Options:     c.Field.Options,
				Required:    c.Field.Required,
			},
		}, nil

	case c.Submit:
		return &command.Submit{
			Action: command.Action{
				Base:        base,
				ActionLabel: optionalLiteral(c.ActionLabel),
				Execute:     buildExecute(c, open, print),
			},
			RemainOpen: c.RemainOpen,
		}, nil

	case c.URL != "" || c.Message != "":
		return &command.Action{
			Base:                base,
			ActionLabel:         optionalLiteral(c.ActionLabel),
			ModifierActionLabel: optionalLiteral(c.ModifierActionLabel),
			Execute:             buildExecute(c, open, print),
		}, nil

	default:
		return &command.Display{Base: base}, nil
	}
}

func buildBase(where string, c Command, ev *expr.Evaluator) (command.Base, error) {
	base := command.Base{
		ID:          c.ID,
		Description: command.Literal(c.Description),
		Icon:        command.Literal(c.Icon),
		Color:       command.Literal(c.Color),
		Keybinding:  c.Keybinding,
		SkipUsage:   c.SkipUsage,
	}

	switch {
	case c.NameExpr != "":
		if err := ev.Check(c.NameExpr); err != nil {
			return base, fmt.Errorf("%s/%s: name expression: %w", where, c.ID, err)
		}
		base.Name = ev.String(c.NameExpr)
	default:
		base.Name = command.Literal(c.Name)
	}

	switch {
	case c.KeywordsExpr != "":
		if err := ev.Check(c.KeywordsExpr); err != nil {
			return base, fmt.Errorf("%s/%s: keywords expression: %w", where, c.ID, err)
		}
		expression := c.KeywordsExpr
		static := c.Keywords
		// Evaluate directly so the surrounding Value.Resolve applies the
		// single ResolutionError wrap.
		base.Keywords = command.Deferred(func(_ context.Context, ec command.Context) ([]string, error) {
			dynamic, err := ev.EvalStrings(expression, ec)
			if err != nil {
				return nil, err
			}
			return append(append([]string{}, static...), dynamic...), nil
		})
	default:
		base.Keywords = command.Literal(c.Keywords)
	}
	return base, nil
}

func buildExecute(c Command, open Opener, print Printer) command.ExecuteFunc {
	return func(ctx context.Context, ec command.Context, values map[string]string) error {
		url := c.URL
		if url == "" {
			if addr, ok := values["address"]; ok && addr != "" {
				url = addr
			}
		}
		if url != "" {
			if open == nil {
				return fmt.Errorf("no opener configured for %s", c.ID)
			}
			return open(ctx, url)
		}
		if c.Message != "" {
			if print == nil {
				return fmt.Errorf("no printer configured for %s", c.ID)
			}
			return print(ctx, c.Message)
		}
		return nil
	}
}

// optionalLiteral wraps a config string, leaving the value unset when the
// string is empty so zero checks still work downstream.
func optionalLiteral(s string) command.Value[string] {
	if s == "" {
		return command.Value[string]{}
	}
	return command.Literal(s)
}

func fieldKind(s string) (command.FieldKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return command.FieldText, nil
	case "textarea":
		return command.FieldTextarea, nil
	case "select":
		return command.FieldSelect, nil
	default:
		return command.FieldText, fmt.Errorf("unknown field kind %q", s)
	}
}
