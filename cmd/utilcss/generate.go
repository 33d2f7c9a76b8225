package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yacobolo/utilcss"
	"github.com/yacobolo/utilcss/internal/logger"
	"github.com/yacobolo/utilcss/internal/report"
	"github.com/yacobolo/utilcss/internal/scan"
)

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Compile the utilities used in source files into CSS",
	Long: `Scan files matching the content globs, extract utility tokens and write
the CSS for every token the presets understand. Tokens that fail to compile
are reported with their source location.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd)
}

// addGenerateFlags registers the flags shared by generate, watch and root.
func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSliceP("content", "c", defaultContent, "Glob patterns of files to scan for tokens")
	f.StringSlice("exclude", defaultExclude, "Glob patterns of files to skip")
	f.StringP("output", "o", defaultOutput, "Output CSS file (- for stdout)")
	f.Bool("mini", true, "Load the built-in mini preset")
	f.String("dark-selector", ".dark ", "Selector prefix used by dark:")
	f.Bool("preflights", true, "Include preflight CSS")
	f.Bool("minify", false, "Drop layer comments and newlines")
	f.String("scope", "", "Selector prefix for every rule")
	f.Bool("merge-selectors", true, "Merge rules with identical bodies")
	f.Bool("isolate-errors", true, "Report failing tokens instead of aborting")
	f.Int("concurrency", 0, "Max tokens resolved in parallel (0=unlimited)")
	f.StringSlice("safelist", nil, "Tokens to always generate")
	f.Bool("strict", false, "Exit 1 on any issue (CI mode)")
	f.String("output-format", "", "Report format: issues|summary|full|json|markdown")
	f.Bool("print-lines", true, "Show source lines with issues")
	f.Bool("print-stage-name", true, "Show the failing stage after issues")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg := buildGenerateConfig()
	log, err := buildLogger()
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	gen, err := newGenerator(cfg, log)
	if err != nil {
		return err
	}

	rep, err := generateOnce(cmd.Context(), gen, cfg, log)
	if err != nil {
		return err
	}
	if err := writeReport(cfg, rep); err != nil {
		return err
	}

	if cfg.Strict && len(rep.Issues) > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// newGenerator builds a generator from the configured presets.
func newGenerator(cfg generateConfig, log *logger.Logger) (*utilcss.Generator, error) {
	uc, err := cfg.userConfig()
	if err != nil {
		return nil, err
	}
	gen, err := utilcss.New(uc, utilcss.WithLogger(log.Zerolog()))
	if err != nil {
		return nil, fmt.Errorf("configuring generator: %w", err)
	}
	return gen, nil
}

// generateOnce scans, generates and writes the stylesheet.
func generateOnce(ctx context.Context, gen *utilcss.Generator, cfg generateConfig, log *logger.Logger) (*report.Report, error) {
	start := time.Now()

	exclude := cfg.Exclude
	if cfg.Output != "-" {
		exclude = append(exclude[:len(exclude):len(exclude)], filepath.ToSlash(cfg.Output))
	}
	scanner := scan.New(scan.Options{Root: ".", Exclude: exclude})
	scanned, err := scanner.Scan(ctx, gen, cfg.Content)
	if err != nil {
		return nil, fmt.Errorf("scanning sources: %w", err)
	}

	res, err := gen.Generate(ctx, scanned.Tokens(), cfg.generateOptions("generate"))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	if err := writeCSS(cfg.Output, res.CSS); err != nil {
		return nil, err
	}

	log.WithFields(map[string]any{
		"files":   scanned.Stats.FilesScanned,
		"tokens":  len(scanned.Tokens()),
		"matched": len(res.Matched),
		"output":  cfg.Output,
	}).Debug("stylesheet written")

	return report.Build(scanned, res, cfg.Output, time.Since(start)), nil
}

func writeCSS(path, css string) error {
	if path == "-" {
		_, err := io.WriteString(os.Stdout, css+"\n")
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(css+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeReport prints the report unless --quiet. With CSS on stdout the report
// goes to stderr.
func writeReport(cfg generateConfig, rep *report.Report) error {
	config, format := buildReportConfig()
	if getBoolWithFallback("quiet", "quiet", false) {
		return nil
	}
	var w io.Writer = os.Stdout
	if cfg.Output == "-" {
		w = os.Stderr
	}
	return report.WriteOutput(w, rep, format, config)
}
