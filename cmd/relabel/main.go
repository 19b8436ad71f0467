// Package main provides the entry point for the relabel CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/relabel/pkg/version"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    bool
	quiet      bool
	logJSON    bool
	noColor    bool
}

// reportedError marks an error whose outcome line was already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "relabel",
		Short: "Rewrite menu labels into translated i18n keys",
		Long: `relabel rewrites the label field of every record in a JavaScript or
TypeScript array literal into a generated i18n key built from the label's
English translation, and appends a declaration mapping each key to the
original text.

Commands:
  rewrite     Rewrite one source file
  translate   Translate texts and show the keys they would produce`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default: relabel.yaml in . or ./config)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress output")
	pf.BoolVar(&opts.logJSON, "log-json", false, "emit logs as JSON")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newRewriteCmd(opts))
	rootCmd.AddCommand(newTranslateCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "relabel %s\n", version.String())
		},
	}
}
