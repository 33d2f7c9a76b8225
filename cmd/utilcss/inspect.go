package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yacobolo/utilcss"
	"github.com/yacobolo/utilcss/internal/report"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect TOKEN...",
	Short: "Show how tokens resolve",
	Long: `Print the variants each token resolves through, the residual token left
for rule matching and the CSS it produces.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildGenerateConfig()
		log, err := buildLogger()
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		gen, err := newGenerator(cfg, log)
		if err != nil {
			return err
		}
		useColors := getBoolWithFallback("color", "color", false)
		return inspectTokens(cmd.Context(), os.Stdout, gen, args, useColors)
	},
}

func init() {
	f := inspectCmd.Flags()
	f.Bool("mini", true, "Load the built-in mini preset")
	f.String("dark-selector", ".dark ", "Selector prefix used by dark:")
}

// inspectTokens writes the resolution of every token to w.
func inspectTokens(ctx context.Context, w io.Writer, gen *utilcss.Generator, tokens []string, useColors bool) error {
	for i, token := range tokens {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, report.RenderStyle(report.StyleCyan, token, useColors))

		matches, err := gen.MatchVariants(ctx, token)
		if err != nil {
			return err
		}
		for _, m := range matches {
			variants := "(none)"
			if len(m.Variants) > 0 {
				variants = strings.Join(m.Variants, " > ")
			}
			fmt.Fprintf(w, "  variants: %s -> %s\n", variants, m.Matcher)
		}

		res, err := gen.Generate(ctx, []string{token}, utilcss.GenerateOptions{
			Preflights: utilcss.Bool(false),
			Safelist:   utilcss.Bool(false),
		})
		if err != nil {
			fmt.Fprintf(w, "  %s\n", report.RenderStyle(report.StyleRed, err.Error(), useColors))
			continue
		}
		if !res.IsMatched(token) {
			fmt.Fprintf(w, "  %s\n", report.RenderStyle(report.StyleYellow, "no match", useColors))
			continue
		}
		for _, line := range strings.Split(res.CSS, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
	return nil
}
