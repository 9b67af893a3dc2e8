package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesmacfie/monocle-sub001/internal/protocol"
	"github.com/jamesmacfie/monocle-sub001/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the palette protocol over stdin/stdout",
	Long:  "Reads newline-delimited JSON requests from stdin and writes one JSON response per line to stdout. Logs go to stderr so the protocol stream stays clean.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)

		engine, _, err := buildEngine(ctx, openURL, printMessage)
		if err != nil {
			return err
		}

		log.Info("serving palette protocol on stdio")
		h := protocol.NewHandler(engine, *log)
		return protocol.Serve(ctx, os.Stdin, os.Stdout, h)
	},
}

// openURL reports the address on stderr. Browser hosts open tabs themselves;
// the stdio server only acknowledges the action.
func openURL(ctx context.Context, url string) error {
	_, err := fmt.Fprintf(os.Stderr, "open %s\n", url)
	return err
}

func printMessage(ctx context.Context, msg string) error {
	_, err := fmt.Fprintln(os.Stderr, msg)
	return err
}
