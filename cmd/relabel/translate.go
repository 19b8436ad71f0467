package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/relabel/pkg/config"
	"github.com/Sumatoshi-tech/relabel/pkg/observability"
	"github.com/Sumatoshi-tech/relabel/pkg/transform"
)

// errTranslationFailed is returned when at least one text fell back.
var errTranslationFailed = errors.New("some texts could not be translated")

func newTranslateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate <text>...",
		Short: "Translate texts and show the keys they would produce",
		Long: `Send each text through the configured translator, one request at a
time, and print the translation with the key relabel would generate.
Useful to check credentials and the key template before a rewrite.

Examples:
  relabel translate 锁定 解锁
  relabel translate --template "menu.%s" 打开文件`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, opts, args)
		},
	}

	fs := cmd.Flags()
	fs.String("template", config.DefaultKeyTemplate, "key template; %s receives the translation")
	fs.String("from", config.DefaultFrom, "source language code")
	fs.String("to", config.DefaultTo, "target language code")
	fs.Duration("delay", config.DefaultDelay, "pause between translation requests")

	return cmd
}

func runTranslate(cmd *cobra.Command, opts *rootOptions, texts []string) error {
	v := config.New()

	if err := bindFlags(v, cmd.Flags(), map[string]string{
		"transform.key_template": "template",
		"translator.from":        "from",
		"translator.to":          "to",
		"translator.delay":       "delay",
	}); err != nil {
		return err
	}

	s, err := openSession(cmd, opts, v, observability.ModeDebug)
	if err != nil {
		return err
	}
	defer s.close()

	client, err := s.baiduClient()
	if err != nil {
		return err
	}

	gw := s.gateway(client)
	out := cmd.OutOrStdout()
	failed := 0

	for _, text := range texts {
		translated, err := gw.Translate(cmd.Context(), text)

		status := "ok"
		if err != nil {
			status = "fallback: " + err.Error()
			failed++
		}

		writeTerminalLine(out,
			sanitizeForTerminal(text), "->", sanitizeForTerminal(translated),
			"->", sanitizeForTerminal(transform.KeyFor(s.cfg.Transform.KeyTemplate, translated)),
			"("+sanitizeForTerminal(status)+")")
	}

	if failed > 0 {
		return errTranslationFailed
	}

	return nil
}
