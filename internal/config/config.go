// Package config loads the palette configuration: an embedded default
// document merged under an optional user config file. The config declares
// app metadata, palette behavior, and the static command providers available
// outside a browser host.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// File is the top-level config document.
type File struct {
	App       App        `yaml:"app"`
	Palette   Palette    `yaml:"palette"`
	Providers []Provider `yaml:"providers"`
}

// App carries application metadata.
type App struct {
	Name    string `yaml:"name"`
	DataDir string `yaml:"dataDir"`
}

// Palette carries palette behavior settings.
type Palette struct {
	Platform     string `yaml:"platform"`
	RecentsLimit int    `yaml:"recentsLimit"`
}

// Provider declares one static command provider.
type Provider struct {
	Name        string    `yaml:"name"`
	Platforms   []string  `yaml:"platforms"`
	Permissions []string  `yaml:"permissions"`
	Commands    []Command `yaml:"commands"`
}

// Command declares one command node. A command with children is a group; a
// command with a field is an input; a command with submit true is a form
// submit; anything else with a URL or message is a plain action.
type Command struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	NameExpr    string   `yaml:"nameExpr"`
	Description string   `yaml:"description"`
	Icon        string   `yaml:"icon"`
	Color       string   `yaml:"color"`
	Keywords    []string `yaml:"keywords"`
	// KeywordsExpr is a CEL expression over the context producing extra
	// keywords.
	KeywordsExpr string `yaml:"keywordsExpr"`
	Keybinding   string `yaml:"keybinding"`
	ActionLabel  string `yaml:"actionLabel"`
	// ModifierActionLabel replaces ActionLabel while the modifier is held.
	ModifierActionLabel string `yaml:"modifierActionLabel"`
	// URL is opened (or printed, in CLI mode) when the action runs.
	URL string `yaml:"url"`
	// Message is written verbatim when the action runs. URL wins when both
	// are set.
	Message    string    `yaml:"message"`
	DeepSearch bool      `yaml:"deepSearch"`
	Children   []Command `yaml:"children"`
	Field      *Field    `yaml:"field"`
	Submit     bool      `yaml:"submit"`
	RemainOpen bool      `yaml:"remainOpenOnSelect"`
	SkipUsage  bool      `yaml:"skipUsage"`
}

// Field declares a form input field.
type Field struct {
	Name        string   `yaml:"name"`
	Label       string   `yaml:"label"`
	Placeholder string   `yaml:"placeholder"`
	Kind        string   `yaml:"kind"`
	Options     []string `yaml:"options"`
	Required    bool     `yaml:"required"`
}

// Default returns the embedded default config.
func Default() (File, error) {
	var cfg File
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("decode embedded default config: %w", err)
	}
	return cfg, nil
}

// Load returns the default config with the user file at path, when given,
// merged on top.
func Load(path string) (File, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	var user File
	if err := yaml.Unmarshal(data, &user); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return merge(cfg, user), nil
}

// merge overlays the user config on the defaults. Scalar fields replace when
// set; a non-empty user provider list replaces the default list wholesale.
func merge(base, user File) File {
	if user.App.Name != "" {
		base.App.Name = user.App.Name
	}
	if user.App.DataDir != "" {
		base.App.DataDir = user.App.DataDir
	}
	if user.Palette.Platform != "" {
		base.Palette.Platform = user.Palette.Platform
	}
	if user.Palette.RecentsLimit > 0 {
		base.Palette.RecentsLimit = user.Palette.RecentsLimit
	}
	if len(user.Providers) > 0 {
		base.Providers = user.Providers
	}
	return base
}

// Validate checks provider trees for the mistakes the traversal guard would
// otherwise hide at runtime: duplicate sibling IDs, missing IDs, and
// children nested beyond the depth bound.
func (f File) Validate(maxDepth int) []error {
	var errs []error
	for _, p := range f.Providers {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("provider with no name"))
		}
		errs = append(errs, validateSiblings(p.Name, p.Commands, 0, maxDepth)...)
	}
	return errs
}

func validateSiblings(where string, cmds []Command, depth, maxDepth int) []error {
	var errs []error
	if depth > maxDepth {
		errs = append(errs, fmt.Errorf("%s: children nested beyond depth %d", where, maxDepth))
		return errs
	}
	seen := map[string]bool{}
	for _, c := range cmds {
		if c.ID == "" {
			errs = append(errs, fmt.Errorf("%s: command with no id (name %q)", where, c.Name))
			continue
		}
		if seen[c.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate sibling id %q", where, c.ID))
		}
		seen[c.ID] = true
		if len(c.Children) > 0 {
			errs = append(errs, validateSiblings(where+"/"+c.ID, c.Children, depth+1, maxDepth)...)
		}
	}
	return errs
}
