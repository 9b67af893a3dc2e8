// Package expr lets catalog providers declare display properties as CEL
// expressions over the palette context instead of Go functions. The
// expression sees four variables: url, title, modifier and aux.
package expr

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/jamesmacfie/monocle-sub001/internal/command"
)

// Evaluator compiles and evaluates CEL expressions against a command.Context.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator whose environment exposes the palette
// context variables plus the strings and lists extension libraries.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("url", cel.StringType),
		cel.Variable("title", cel.StringType),
		cel.Variable("modifier", cel.BoolType),
		cel.Variable("aux", cel.BoolType),
		celext.Strings(),
		celext.Lists(),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Check compiles expr without evaluating it. Providers call this at load
// time so a malformed expression surfaces before the palette opens.
func (e *Evaluator) Check(expr string) error {
	if _, issues := e.env.Compile(expr); issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	return nil
}

// Eval evaluates expr against the context and returns the raw result.
func (e *Evaluator) Eval(expr string, ec command.Context) (any, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	out, _, err := prg.Eval(map[string]any{
		"url":      ec.URL,
		"title":    ec.Title,
		"modifier": ec.ActiveModifier,
		"aux":      ec.IsAuxiliarySurface,
	})
	if err != nil {
		return nil, fmt.Errorf("eval %q: %w", expr, err)
	}
	return toGo(out), nil
}

// EvalString evaluates expr and coerces the result to a string.
func (e *Evaluator) EvalString(expr string, ec command.Context) (string, error) {
	out, err := e.Eval(expr, ec)
	if err != nil {
		return "", err
	}
	switch v := out.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// EvalStrings evaluates expr and coerces the result to a string slice.
func (e *Evaluator) EvalStrings(expr string, ec command.Context) ([]string, error) {
	out, err := e.Eval(expr, ec)
	if err != nil {
		return nil, err
	}
	switch v := out.(type) {
	case []string:
		return v, nil
	case []any:
		strs := make([]string, 0, len(v))
		for _, item := range v {
			strs = append(strs, fmt.Sprintf("%v", item))
		}
		return strs, nil
	case string:
		return []string{v}, nil
	case nil:
		return nil, nil
	default:
		return []string{fmt.Sprintf("%v", v)}, nil
	}
}

// String wraps a CEL expression as a deferred string value.
func (e *Evaluator) String(expr string) command.Value[string] {
	return command.Deferred(func(_ context.Context, ec command.Context) (string, error) {
		return e.EvalString(expr, ec)
	})
}

// Strings wraps a CEL expression as a deferred string-list value.
func (e *Evaluator) Strings(expr string) command.Value[[]string] {
	return command.Deferred(func(_ context.Context, ec command.Context) ([]string, error) {
		return e.EvalStrings(expr, ec)
	})
}

// toGo converts CEL values to native Go types recursively.
func toGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.Value().(type) {
	case []ref.Val:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, toGo(item))
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprintf("%v", k.Value())] = toGo(item)
		}
		return out
	default:
		return v
	}
}
