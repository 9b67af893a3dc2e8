package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jamesmacfie/monocle-sub001/internal/config"
	"github.com/jamesmacfie/monocle-sub001/internal/index"
	"github.com/jamesmacfie/monocle-sub001/pkg/settings"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, ok := settings.FromContext(cmd.Context())
		if !ok {
			params = cliParams
		}
		cfg, err := config.Load(params.ConfigPath)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Validate the configuration and provider trees",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, ok := settings.FromContext(cmd.Context())
		if !ok {
			params = cliParams
		}
		cfg, err := config.Load(params.ConfigPath)
		if err != nil {
			return err
		}
		errs := cfg.Validate(index.MaxDepth)
		if len(errs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "config ok")
			return nil
		}
		for _, e := range errs {
			fmt.Fprintf(cmd.OutOrStdout(), "problem: %v\n", e)
		}
		return fmt.Errorf("%d config problem(s) found", len(errs))
	},
}
