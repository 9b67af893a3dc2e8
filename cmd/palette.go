package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jamesmacfie/monocle-sub001/internal/command"
	"github.com/jamesmacfie/monocle-sub001/pkg/tui"
)

var (
	paletteURL   string
	paletteTitle string
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Open the interactive palette in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("palette requires a terminal; use %q for piped I/O", "serve")
		}

		engine, _, err := buildEngine(ctx, openURL, printMessage)
		if err != nil {
			return err
		}

		ec := command.Context{URL: paletteURL, Title: paletteTitle}
		return tui.Run(ctx, engine, ec, cliParams.NoColor)
	},
}

func init() {
	paletteCmd.Flags().StringVar(&paletteURL, "url", "", "page URL exposed to command expressions")
	paletteCmd.Flags().StringVar(&paletteTitle, "title", "", "page title exposed to command expressions")
}
