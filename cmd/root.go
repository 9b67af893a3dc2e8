// Package cmd wires the monocle CLI: an engine serving the command palette
// over stdio for browser hosts, an interactive terminal palette, and config
// inspection helpers.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jamesmacfie/monocle-sub001/internal/config"
	"github.com/jamesmacfie/monocle-sub001/internal/expr"
	"github.com/jamesmacfie/monocle-sub001/internal/store"
	"github.com/jamesmacfie/monocle-sub001/pkg/logger"
	"github.com/jamesmacfie/monocle-sub001/pkg/palette"
	"github.com/jamesmacfie/monocle-sub001/pkg/settings"
)

var cliParams = settings.NewCliParams()

var rootCmd = &cobra.Command{
	Use:           settings.CliBinaryName,
	Short:         "Command palette engine",
	Long:          "monocle hosts a hierarchical command palette: providers contribute command trees, favorites and recents are tracked per command, and keybindings dispatch without opening the palette.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Int8VarP(&cliParams.MinLogLevel, "log-level", "v", 0, "minimum log level (negative is more verbose)")
	pf.StringVarP(&cliParams.ConfigPath, "config", "c", "", "path to a config file merged over the defaults")
	pf.StringVarP(&cliParams.DataDir, "data-dir", "d", "", "directory for favorites, settings and usage data")
	pf.StringVarP(&cliParams.Platform, "platform", "p", cliParams.Platform, "platform tag used to filter providers")
	pf.BoolVarP(&cliParams.IsQuiet, "quiet", "q", false, "suppress non-essential output")
	pf.BoolVar(&cliParams.NoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd, paletteCmd, configCmd, doctorCmd, versionCmd)
}

// Execute runs the CLI.
func Execute() error {
	ctx := context.Background()
	ctx = logger.WithLogger(ctx, logger.Get(cliParams.MinLogLevel))
	ctx = settings.IntoContext(ctx, cliParams)
	return rootCmd.ExecuteContext(ctx)
}

// dataDir resolves the directory for persisted palette state, creating it if
// necessary. Flag value wins; otherwise a per-user directory is used.
func dataDir(params *settings.Run) (string, error) {
	if params.DataDir != "" {
		return params.DataDir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("resolve data directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, settings.CliBinaryName), nil
}

// buildEngine loads the config, compiles its providers and assembles a
// palette engine backed by the on-disk store.
func buildEngine(ctx context.Context, open config.Opener, print config.Printer) (*palette.Engine, config.File, error) {
	params, ok := settings.FromContext(ctx)
	if !ok {
		params = cliParams
	}
	log := logger.FromContext(ctx)

	cfg, err := config.Load(params.ConfigPath)
	if err != nil {
		return nil, cfg, err
	}

	ev, err := expr.NewEvaluator()
	if err != nil {
		return nil, cfg, err
	}
	providers, err := config.Providers(cfg, ev, open, print)
	if err != nil {
		return nil, cfg, err
	}

	dir, err := dataDir(params)
	if err != nil {
		return nil, cfg, err
	}
	if cfg.App.DataDir != "" && params.DataDir == "" {
		dir = cfg.App.DataDir
	}
	st, err := store.Open(dir)
	if err != nil {
		return nil, cfg, err
	}

	platform := params.Platform
	if cfg.Palette.Platform != "" {
		platform = cfg.Palette.Platform
	}

	opts := []palette.Option{
		palette.WithStore(st),
		palette.WithProviders(providers...),
		palette.WithPlatform(platform),
		palette.WithLogger(*log),
	}
	if cfg.Palette.RecentsLimit > 0 {
		opts = append(opts, palette.WithRecentsLimit(cfg.Palette.RecentsLimit))
	}

	engine, err := palette.New(opts...)
	if err != nil {
		return nil, cfg, err
	}
	return engine, cfg, nil
}
