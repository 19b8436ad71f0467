package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/relabel/pkg/config"
	"github.com/Sumatoshi-tech/relabel/pkg/locale"
	"github.com/Sumatoshi-tech/relabel/pkg/observability"
	"github.com/Sumatoshi-tech/relabel/pkg/transform"
	"github.com/Sumatoshi-tech/relabel/pkg/translate"
)

type rewriteOptions struct {
	output    string
	localeOut string
	dryRun    bool
	diff      bool
	stdout    bool
	offline   bool
	noReport  bool
}

func newRewriteCmd(opts *rootOptions) *cobra.Command {
	ro := &rewriteOptions{}

	cmd := &cobra.Command{
		Use:   "rewrite <input>",
		Short: "Rewrite the labels of one source file",
		Long: `Rewrite the label field of every record in the target array into an
i18n key and append a declaration mapping each key to the original text.

Labels are translated one request at a time through the Baidu translation
API. When a translation fails the key is built from the original text and
the run still succeeds.

Examples:
  relabel rewrite src/menu.ts -o src/menu.i18n.ts
  relabel rewrite src/menu.ts --diff
  relabel rewrite src/menu.ts --stdout --offline
  relabel rewrite src/menu.ts --target menuItems --field title --locale-out menu.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRewrite(cmd, opts, ro, args[0])
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&ro.output, "output", "o", "", "output file (default: rewrite the input in place)")
	fs.StringVar(&ro.localeOut, "locale-out", "", "also write the generated keys as a YAML locale catalogue")
	fs.BoolVar(&ro.dryRun, "dry-run", false, "do not write the output file")
	fs.BoolVar(&ro.diff, "diff", false, "print a diff of the changes instead of writing (implies --dry-run)")
	fs.BoolVar(&ro.stdout, "stdout", false, "print the generated code instead of writing (implies --dry-run)")
	fs.BoolVar(&ro.offline, "offline", false, "skip translation and build keys from the original text")
	fs.BoolVar(&ro.noReport, "no-report", false, "omit the per-key table")

	fs.String("target", config.DefaultTarget, "name of the declaration holding the array")
	fs.String("field", config.DefaultField, "record field to rewrite")
	fs.String("template", config.DefaultKeyTemplate, "key template; %s receives the translation")
	fs.String("binding", config.DefaultBinding, "name of the appended mapping declaration")
	fs.String("from", config.DefaultFrom, "source language code")
	fs.String("to", config.DefaultTo, "target language code")
	fs.Duration("delay", config.DefaultDelay, "pause between translation requests")

	return cmd
}

var rewriteFlagKeys = map[string]string{
	"transform.target":       "target",
	"transform.field":        "field",
	"transform.key_template": "template",
	"transform.binding":      "binding",
	"translator.from":        "from",
	"translator.to":          "to",
	"translator.delay":       "delay",
}

func runRewrite(cmd *cobra.Command, opts *rootOptions, ro *rewriteOptions, input string) error {
	v := config.New()

	if err := bindFlags(v, cmd.Flags(), rewriteFlagKeys); err != nil {
		return err
	}

	s, err := openSession(cmd, opts, v, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer s.close()

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	run, err := s.rewrite(cmd, ro, input)
	if err != nil {
		if !opts.quiet {
			writeFailure(stderr, opts.noColor, err)
		}

		return &reportedError{err: err}
	}

	if ro.stdout {
		if _, err := io.WriteString(stdout, run.Code); err != nil {
			return fmt.Errorf("write generated code: %w", err)
		}
	}

	if ro.diff {
		if _, err := io.WriteString(stdout, unifiedDiff(run.Input, string(run.Source), run.Code)); err != nil {
			return fmt.Errorf("write diff: %w", err)
		}
	}

	if ro.localeOut != "" {
		catalog := &locale.Catalog{From: s.cfg.Translator.From, To: s.cfg.Translator.To, Entries: run.Entries}
		if err := catalog.WriteFile(ro.localeOut); err != nil {
			return err
		}

		s.logger.Info("wrote locale catalogue", "path", ro.localeOut, "keys", len(run.Entries))
	}

	if opts.quiet {
		return nil
	}

	// Keep stdout clean for the generated code or the diff.
	reportTo := stdout
	if ro.stdout || ro.diff {
		reportTo = stderr
	}

	if !ro.noReport && len(run.Entries) > 0 {
		writeEntryTable(reportTo, run.Entries)
	}

	writeSuccess(reportTo, opts.noColor, run)

	return nil
}

func (s *session) rewrite(cmd *cobra.Command, ro *rewriteOptions, input string) (*transform.RunResult, error) {
	var translator translate.Translator

	if !ro.offline {
		client, err := s.baiduClient()
		if err != nil {
			return nil, fmt.Errorf("%w (use --offline to skip translation)", err)
		}

		translator = client
	}

	maxSize, err := s.cfg.MaxInputBytes()
	if err != nil {
		return nil, err
	}

	output := ro.output
	if output == "" {
		output = input
	}

	if info, statErr := os.Stat(output); statErr == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s", transform.ErrDirectoryPath, output)
	}

	return s.pipeline(translator).Run(cmd.Context(), input, output, transform.RunOptions{
		MaxInputSize: maxSize,
		DryRun:       ro.dryRun || ro.diff || ro.stdout,
	})
}
