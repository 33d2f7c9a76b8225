package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/yacobolo/utilcss"
	"github.com/yacobolo/utilcss/internal/logger"
	"github.com/yacobolo/utilcss/internal/presetfile"
	"github.com/yacobolo/utilcss/internal/report"
	"github.com/yacobolo/utilcss/presets/mini"
)

var k = koanf.New(".")

// Defaults shared by flags, init and the fallbacks below
var (
	defaultContent = []string{"**/*.html", "**/*.templ", "**/*.go"}
	defaultExclude = []string{"node_modules/**", "vendor/**", ".git/**"}
)

const defaultOutput = "utilities.css"

// generateConfig is everything a generate or watch run needs.
type generateConfig struct {
	Content        []string
	Exclude        []string
	Output         string // "-" writes to stdout
	Presets        []string
	Mini           bool
	DarkSelector   string
	Preflights     bool
	Minify         bool
	Scope          string
	MergeSelectors bool
	IsolateErrors  bool
	Concurrency    int
	Safelist       []string
	Strict         bool
}

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = ".utilcss.yaml"
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// CLI flags, highest precedence. A nil koanf instance makes posflag skip
	// flags the user did not set.
	if err := k.Load(posflag.Provider(cmd.Flags(), ".", nil), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("UTILCSS_", ".", func(s string) string {
		// UTILCSS_GENERATE_OUTPUT -> generate.output
		// UTILCSS_VERBOSE -> verbose
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "UTILCSS_")),
			"_", ".",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// buildGenerateConfig constructs the generate settings from koanf state.
func buildGenerateConfig() generateConfig {
	return generateConfig{
		Content:        getStringsWithFallback("content", "generate.content", defaultContent),
		Exclude:        getStringsWithFallback("exclude", "generate.exclude", defaultExclude),
		Output:         getStringWithFallback("output", "generate.output", defaultOutput),
		Presets:        getStringsWithFallback("preset", "presets", nil),
		Mini:           getBoolWithFallback("mini", "generate.mini", true),
		DarkSelector:   getStringWithFallback("dark-selector", "generate.dark-selector", ".dark "),
		Preflights:     getBoolWithFallback("preflights", "generate.preflights", true),
		Minify:         getBoolWithFallback("minify", "generate.minify", false),
		Scope:          getStringWithFallback("scope", "generate.scope", ""),
		MergeSelectors: getBoolWithFallback("merge-selectors", "generate.merge-selectors", true),
		IsolateErrors:  getBoolWithFallback("isolate-errors", "generate.isolate-errors", true),
		Concurrency:    getIntWithFallback("concurrency", "generate.concurrency", 0),
		Safelist:       getStringsWithFallback("safelist", "generate.safelist", nil),
		Strict:         getBoolWithFallback("strict", "generate.strict", false),
	}
}

// buildReportConfig constructs the report settings from koanf state.
func buildReportConfig() (report.Config, report.OutputFormat) {
	quiet := getBoolWithFallback("quiet", "quiet", false)
	format := report.DetermineOutputFormat(getStringWithFallback("output-format", "report.output-format", ""), quiet)
	return report.Config{
		UseColors:        getBoolWithFallback("color", "color", false),
		PrintIssuedLines: getBoolWithFallback("print-lines", "report.print-lines", true),
		PrintStageName:   getBoolWithFallback("print-stage-name", "report.print-stage-name", true),
	}, format
}

// buildLogger creates the CLI logger. --verbose is shorthand for debug.
func buildLogger() (*logger.Logger, error) {
	level := getStringWithFallback("log-level", "log-level", "warn")
	if getBoolWithFallback("verbose", "verbose", false) {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, HumanReadable: true})
}

// userConfig assembles the generator config: the mini preset first, then
// preset files in order so later files override earlier registrations.
func (c generateConfig) userConfig() (utilcss.UserConfig, error) {
	var presets []*utilcss.Preset
	if c.Mini {
		presets = append(presets, mini.New(mini.Options{DarkSelector: c.DarkSelector}))
	}
	loaded, err := presetfile.LoadAll(c.Presets)
	if err != nil {
		return utilcss.UserConfig{}, err
	}
	presets = append(presets, loaded...)

	return utilcss.UserConfig{
		Presets:        presets,
		Safelist:       c.Safelist,
		MergeSelectors: utilcss.Bool(c.MergeSelectors),
		IsolateErrors:  c.IsolateErrors,
		Concurrency:    c.Concurrency,
	}, nil
}

func (c generateConfig) generateOptions(id string) utilcss.GenerateOptions {
	return utilcss.GenerateOptions{
		Preflights: utilcss.Bool(c.Preflights),
		Minify:     c.Minify,
		Scope:      c.Scope,
		ID:         id,
	}
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback is getStringWithFallback for lists.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}
