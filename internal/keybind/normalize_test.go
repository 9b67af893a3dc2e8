package keybind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "meta k", "meta k"},
		{"modifier reorder", "shift meta k", "meta shift k"},
		{"all modifiers", "shift alt ctrl meta x", "meta ctrl alt shift x"},
		{"plus separator", "meta+shift+k", "meta shift k"},
		{"mixed separators", "ctrl +\tk", "ctrl k"},
		{"cmd alias", "cmd p", "meta p"},
		{"command alias", "command shift p", "meta shift p"},
		{"super alias", "super l", "meta l"},
		{"option alias", "option b", "alt b"},
		{"control alias", "control c", "ctrl c"},
		{"upper case key", "Meta K", "meta k"},
		{"enter spelled out", "enter", "↵"},
		{"return spelled out", "meta return", "meta ↵"},
		{"enter glyph kept", "meta ↵", "meta ↵"},
		{"arrow alias", "alt ArrowUp", "alt up"},
		{"escape alias", "escape", "esc"},
		{"bare key", "K", "k"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"shift meta k", "cmd+enter", "Option ArrowLeft", "ctrl alt delete", "q",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalizing %q twice changed the result", in)
	}
}

func TestEventString(t *testing.T) {
	ev := Event{Key: "K", Meta: true, Shift: true}
	assert.Equal(t, "meta shift k", ev.String())

	ev = Event{Key: "enter", Ctrl: true}
	assert.Equal(t, "ctrl ↵", ev.String())
}
