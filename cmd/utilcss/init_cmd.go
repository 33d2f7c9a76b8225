package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .utilcss.yaml config file",
	Long:  `Create a .utilcss.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = ".utilcss.yaml"
		}
		return writeDefaultConfig(path, force)
	},
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	return nil
}

const defaultConfig = `# utilcss configuration

# Shared settings
verbose: false
log-level: warn
color: false

# Preset files loaded after the built-in mini preset, later files win
presets: []
#  - presets/brand.yaml
#  - presets/forms.toml

# Generation settings
generate:
  content:
    - "**/*.html"
    - "**/*.templ"
    - "**/*.go"
  exclude:
    - "node_modules/**"
    - "vendor/**"
    - ".git/**"
  output: utilities.css    # - for stdout
  mini: true
  dark-selector: ".dark "
  preflights: true
  minify: false
  scope: ""
  merge-selectors: true
  isolate-errors: true
  concurrency: 0           # 0 = unlimited
  safelist: []
  strict: false

# Report settings
report:
  output-format: summary   # issues | summary | full | json | markdown
  print-lines: true
  print-stage-name: true
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
