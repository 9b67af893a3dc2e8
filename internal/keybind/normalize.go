// Package keybind normalizes keybinding strings, maintains the merged
// binding registry (built-ins plus user overrides), and matches incoming
// key events against it.
package keybind

import "strings"

// EnterGlyph is the reserved symbolic spelling for the Enter key.
const EnterGlyph = "↵"

// modifierOrder is the canonical modifier ordering in a normalized binding.
var modifierOrder = []string{"meta", "ctrl", "alt", "shift"}

var modifierAliases = map[string]string{
	"meta":    "meta",
	"cmd":     "meta",
	"command": "meta",
	"super":   "meta",
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"opt":     "alt",
	"shift":   "shift",
}

// namedKeys maps spellings of named keys to their canonical token.
var namedKeys = map[string]string{
	"enter":      EnterGlyph,
	"return":     EnterGlyph,
	EnterGlyph:   EnterGlyph,
	"esc":        "esc",
	"escape":     "esc",
	"space":      "space",
	"tab":        "tab",
	"backspace":  "backspace",
	"delete":     "delete",
	"up":         "up",
	"down":       "down",
	"left":       "left",
	"right":      "right",
	"home":       "home",
	"end":        "end",
	"pageup":     "pageup",
	"pagedown":   "pagedown",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
}

// Normalize canonicalizes a keybinding string: modifier tokens in a fixed
// order (meta, ctrl, alt, shift), named keys spelled with their reserved
// token, every other key lower-cased, all joined by single spaces.
// Normalize is idempotent.
func Normalize(binding string) string {
	tokens := splitTokens(binding)
	if len(tokens) == 0 {
		return ""
	}
	mods := map[string]bool{}
	var key string
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if mod, ok := modifierAliases[lower]; ok {
			mods[mod] = true
			continue
		}
		if named, ok := namedKeys[lower]; ok {
			key = named
			continue
		}
		if named, ok := namedKeys[tok]; ok {
			key = named
			continue
		}
		key = lower
	}
	parts := make([]string, 0, len(modifierOrder)+1)
	for _, mod := range modifierOrder {
		if mods[mod] {
			parts = append(parts, mod)
		}
	}
	if key != "" {
		parts = append(parts, key)
	}
	return strings.Join(parts, " ")
}

// splitTokens splits on whitespace and '+' so both "meta+k" and "meta k"
// parse the same way.
func splitTokens(binding string) []string {
	return strings.FieldsFunc(binding, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '+'
	})
}
