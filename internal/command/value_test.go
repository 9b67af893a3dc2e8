package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralResolve(t *testing.T) {
	v := Literal("Duplicate Tab")
	got, err := v.Resolve(context.Background(), Context{}, "duplicate-tab", "name")
	require.NoError(t, err)
	assert.Equal(t, "Duplicate Tab", got)
}

func TestDeferredResolveSeesContext(t *testing.T) {
	v := Deferred(func(_ context.Context, ec Context) (string, error) {
		return "Copy " + ec.Title, nil
	})
	ec := Context{URL: "https://example.com", Title: "Example"}
	got, err := v.Resolve(context.Background(), ec, "copy-title", "name")
	require.NoError(t, err)
	assert.Equal(t, "Copy Example", got)
}

func TestDeferredResolveWrapsFailure(t *testing.T) {
	boom := errors.New("boom")
	v := Deferred(func(context.Context, Context) ([]string, error) {
		return nil, boom
	})
	_, err := v.Resolve(context.Background(), Context{}, "open-react-docs", "keywords")
	require.Error(t, err)

	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "open-react-docs", resErr.NodeID)
	assert.Equal(t, "keywords", resErr.Property)
	assert.ErrorIs(t, err, boom)
}

func TestZeroValueResolvesToZero(t *testing.T) {
	var v Value[string]
	assert.True(t, v.IsZero())

	got, err := v.Resolve(context.Background(), Context{}, "id", "description")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestBaseOf(t *testing.T) {
	group := &Group{Base: Base{ID: "bookmarks", Name: Literal("Bookmarks")}}
	action := &Action{Base: Base{ID: "open-hn"}}
	submit := &Submit{Action: Action{Base: Base{ID: "open-url:go"}}}
	input := &Input{Base: Base{ID: "open-url:address"}}
	display := NewDisplay("notice", "Nothing here")

	assert.Equal(t, "bookmarks", BaseOf(group).ID)
	assert.Equal(t, "open-hn", BaseOf(action).ID)
	assert.Equal(t, "open-url:go", BaseOf(submit).ID)
	assert.Equal(t, "open-url:address", BaseOf(input).ID)
	assert.Equal(t, "notice", BaseOf(display).ID)
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := &NotFoundError{ID: "open-react-docs"}
	assert.Equal(t, `command "open-react-docs" not found`, err.Error())

	err = &NotFoundError{ID: "open-react-docs", Path: []string{"bookmarks", "dev"}}
	assert.Contains(t, err.Error(), "bookmarks/dev")
}
