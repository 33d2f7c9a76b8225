package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "utilcss",
	Short: "On-demand utility CSS compiler",
	Long: `Scan source files for utility class tokens and compile only the CSS
they need. Rules, variants and shortcuts come from the built-in mini preset
and from YAML or TOML preset files.`,
	// Default behavior: run generate when no subcommand is given.
	// loadConfig runs here because PreRunE of generateCmd is not triggered
	// when delegating via rootCmd.RunE.
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return runGenerate(cmd, nil)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	pf := rootCmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable verbose logging")
	pf.Bool("quiet", false, "Suppress all output (exit code only)")
	pf.Bool("color", false, "Force color output")
	pf.String("log-level", "", "Log level: debug|info|warn|error")
	pf.String("config", ".utilcss.yaml", "Config file path")
	pf.StringSlice("preset", nil, "Preset files (YAML or TOML) to load after the built-in preset")

	// generate flags double as root flags so `utilcss` alone accepts them
	addGenerateFlags(rootCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
