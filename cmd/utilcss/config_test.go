package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/utilcss/internal/logger"
	"github.com/yacobolo/utilcss/internal/report"
)

// resetKoanf creates a fresh koanf instance for each test.
func resetKoanf() {
	k = koanf.New(".")
}

func TestConfigFileLoading(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".utilcss.yaml")
	configContent := `
verbose: true
presets:
  - presets/brand.yaml

generate:
  content:
    - "web/**/*.templ"
  output: dist/app.css
  minify: true
  concurrency: 4

report:
  output-format: json
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))
	require.NoError(t, loadConfigFromPath(configPath))

	assert.True(t, k.Bool("verbose"))
	assert.Equal(t, "dist/app.css", k.String("generate.output"))

	config := buildGenerateConfig()
	assert.Equal(t, []string{"web/**/*.templ"}, config.Content)
	assert.Equal(t, "dist/app.css", config.Output)
	assert.Equal(t, []string{"presets/brand.yaml"}, config.Presets)
	assert.True(t, config.Minify)
	assert.Equal(t, 4, config.Concurrency)

	_, format := buildReportConfig()
	assert.Equal(t, report.OutputJSON, format)
}

func TestConfigFileNotFound_UsesDefaults(t *testing.T) {
	resetKoanf()

	require.NoError(t, loadConfigFromPath("/nonexistent/.utilcss.yaml"))

	config := buildGenerateConfig()
	assert.Equal(t, defaultContent, config.Content)
	assert.Equal(t, defaultOutput, config.Output)
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".utilcss.yaml")
	configContent := `
generate:
  output: from-file.css
  strict: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	t.Setenv("UTILCSS_GENERATE_OUTPUT", "from-env.css")
	t.Setenv("UTILCSS_GENERATE_STRICT", "true")

	require.NoError(t, loadConfigFromPath(configPath))

	config := buildGenerateConfig()
	assert.Equal(t, "from-env.css", config.Output)
	assert.True(t, config.Strict)
}

func TestFlagOverridesConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".utilcss.yaml")
	configContent := `
generate:
  output: from-file.css
  minify: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", configPath, "")
	addGenerateFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--output", "from-flag.css"}))
	require.NoError(t, loadConfig(cmd))

	config := buildGenerateConfig()
	assert.Equal(t, "from-flag.css", config.Output)
	// Unset flags keep the file value instead of their defaults
	assert.True(t, config.Minify)
}

func TestBuildGenerateConfig_Defaults(t *testing.T) {
	resetKoanf()

	config := buildGenerateConfig()
	assert.Equal(t, defaultContent, config.Content)
	assert.Equal(t, defaultExclude, config.Exclude)
	assert.Equal(t, "utilities.css", config.Output)
	assert.Empty(t, config.Presets)
	assert.True(t, config.Mini)
	assert.Equal(t, ".dark ", config.DarkSelector)
	assert.True(t, config.Preflights)
	assert.False(t, config.Minify)
	assert.True(t, config.MergeSelectors)
	assert.True(t, config.IsolateErrors)
	assert.Equal(t, 0, config.Concurrency)
	assert.False(t, config.Strict)
}

func TestBuildReportConfig_Defaults(t *testing.T) {
	resetKoanf()

	config, format := buildReportConfig()
	assert.Equal(t, report.OutputSummary, format)
	assert.False(t, config.UseColors)
	assert.True(t, config.PrintIssuedLines)
	assert.True(t, config.PrintStageName)

	require.NoError(t, k.Set("quiet", true))
	_, format = buildReportConfig()
	assert.Equal(t, report.OutputIssues, format)
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	resetKoanf()

	path := filepath.Join(t.TempDir(), ".utilcss.yaml")
	require.NoError(t, writeDefaultConfig(path, false))
	require.Error(t, writeDefaultConfig(path, false))
	require.NoError(t, writeDefaultConfig(path, true))

	require.NoError(t, loadConfigFromPath(path))
	fromFile := buildGenerateConfig()

	resetKoanf()
	assert.Equal(t, buildGenerateConfig(), fromFile)
}

func TestUserConfig(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "brand.yaml")
	require.NoError(t, os.WriteFile(presetPath, []byte("name: brand\nrules:\n  - match: btn\n    css: \"padding: 1rem\"\n"), 0644))

	cfg := generateConfig{Mini: true, DarkSelector: ".dark ", Presets: []string{presetPath}, MergeSelectors: true}
	uc, err := cfg.userConfig()
	require.NoError(t, err)
	require.Len(t, uc.Presets, 2)
	assert.Equal(t, "utilcss:mini", uc.Presets[0].Name)
	assert.Equal(t, "brand", uc.Presets[1].Name)
	require.NotNil(t, uc.MergeSelectors)
	assert.True(t, *uc.MergeSelectors)

	cfg = generateConfig{Presets: []string{filepath.Join(dir, "missing.yaml")}}
	_, err = cfg.userConfig()
	assert.Error(t, err)
}

func TestGenerateOnce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(`<div class="flex p-2">hello</div>`+"\n"), 0644))

	cfg := generateConfig{
		Content:        []string{filepath.Join(dir, "*.html")},
		Output:         filepath.Join(dir, "dist", "out.css"),
		Mini:           true,
		DarkSelector:   ".dark ",
		Preflights:     true,
		MergeSelectors: true,
		IsolateErrors:  true,
	}
	gen, err := newGenerator(cfg, logger.Nop())
	require.NoError(t, err)

	rep, err := generateOnce(context.Background(), gen, cfg, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.FilesScanned)
	assert.Equal(t, 2, rep.Matched)
	assert.Empty(t, rep.Issues)

	css, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Contains(t, string(css), ".flex{display:flex;}")
	assert.Contains(t, string(css), ".p-2{padding:0.5rem;}")
	assert.Contains(t, string(css), "box-sizing:border-box")
}

func TestClassify(t *testing.T) {
	cfg := generateConfig{
		Content: []string{"**/*.html", "web/**/*.templ"},
		Exclude: []string{"node_modules/**"},
		Output:  "dist/app.css",
		Presets: []string{"presets/brand.yaml"},
	}

	tests := []struct {
		path string
		want changeKind
	}{
		{path: "index.html", want: changeSource},
		{path: "web/pages/home.templ", want: changeSource},
		{path: "./presets/brand.yaml", want: changePreset},
		{path: "dist/app.css", want: changeNone},
		{path: "node_modules/pkg/index.html", want: changeNone},
		{path: "main.go", want: changeNone},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.classify(tt.path))
		})
	}
}

func TestWatchDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pages"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pages", "about.html"), nil, 0644))

	presetDir := filepath.Join(dir, "presets")
	cfg := generateConfig{
		Content: []string{filepath.Join(dir, "**", "*.html")},
		Presets: []string{filepath.Join(presetDir, "brand.yaml")},
	}
	dirs, err := watchDirs(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{dir, filepath.Join(dir, "pages"), presetDir}, dirs)
}

func TestWatchLoopDebounces(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)

	var mu sync.Mutex
	var rebuilds []bool
	cfg := generateConfig{Content: []string{"**/*.html"}, Output: "out.css", Presets: []string{"brand.yaml"}}
	w := &watchLoop{
		events:   events,
		errors:   errs,
		debounce: 20 * time.Millisecond,
		classify: cfg.classify,
		rebuild: func(reload bool) {
			mu.Lock()
			defer mu.Unlock()
			rebuilds = append(rebuilds, reload)
		},
		log: logger.Nop(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.run(ctx) }()

	events <- fsnotify.Event{Name: "index.html", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "out.css", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "brand.yaml", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "about.html", Op: fsnotify.Chmod}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(rebuilds) == 1
	}, time.Second, 5*time.Millisecond)

	events <- fsnotify.Event{Name: "about.html", Op: fsnotify.Create}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(rebuilds) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, rebuilds)
}

func TestInspectTokens(t *testing.T) {
	gen, err := newGenerator(generateConfig{Mini: true, DarkSelector: ".dark ", MergeSelectors: true}, logger.Nop())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, inspectTokens(context.Background(), &buf, gen, []string{"hover:p-2", "nope"}, false))

	out := buf.String()
	assert.Contains(t, out, "hover:p-2\n  variants: hover -> p-2\n")
	assert.Contains(t, out, `    .hover\:p-2:hover{padding:0.5rem;}`)
	assert.Contains(t, out, "nope\n")
	assert.Contains(t, out, "  no match\n")
}

func TestVersionCmd(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })
	version = "1.2.3"

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	t.Cleanup(func() { versionCmd.SetOut(nil) })
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "utilcss 1.2.3\n", buf.String())
}
