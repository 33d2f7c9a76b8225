package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/utilcss"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFindTokenColumn(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		token   string
		wantCol int
	}{
		{
			name:    "single class",
			line:    `<div class="btn">`,
			token:   "btn",
			wantCol: 13,
		},
		{
			name:    "second of several",
			line:    `<div class="p-4 hover:p-4">`,
			token:   "hover:p-4",
			wantCol: 17,
		},
		{
			name:    "whole words only",
			line:    `<div class="p-4 hover:p-4">`,
			token:   "p-4",
			wantCol: 13,
		},
		{
			name:    "skips partial hits",
			line:    `<div class="md:flex flex">`,
			token:   "flex",
			wantCol: 21,
		},
		{
			name:    "single quotes",
			line:    `<div class='icon nav-item'>`,
			token:   "nav-item",
			wantCol: 18,
		},
		{
			name:    "not found",
			line:    `<div class="btn">`,
			token:   "nonexistent",
			wantCol: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.wantCol, findTokenColumn(tt.line, tt.token))
		})
	}
}

func TestIsGenerated(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"internal/web/features/sidebar_templ.go", true},
		{"internal/web/features/sidebar.templ.go", true},
		{"web/static/app.min.js", true},
		{"internal/api/handlers.go", false},
		{"internal/web/features/sidebar.templ", false},
		{"internal/templates/handler.go", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.expected, isGenerated(tt.path), "isGenerated(%q)", tt.path)
		})
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".gitignore"), "dist/\n")
	writeFile(t, filepath.Join(dir, "index.html"), "<div class=\"flex p-4\">\n  <span class=\"text-red\">hi</span>\n</div>\n")
	writeFile(t, filepath.Join(dir, "skip.html"), `<i class="italic"></i>`)
	writeFile(t, filepath.Join(dir, "dist", "app.html"), `<div class="block"></div>`)
	writeFile(t, filepath.Join(dir, "page_templ.go"), `class="hidden"`)

	gen, err := utilcss.New(utilcss.UserConfig{})
	require.NoError(t, err)

	s := New(Options{Root: dir, Exclude: []string{filepath.Join(dir, "skip.html")}})
	res, err := s.Scan(context.Background(), gen, []string{
		filepath.Join(dir, "**", "*.html"),
		filepath.Join(dir, "**", "*.go"),
	})
	require.NoError(t, err)

	assert.Equal(t, ScanStats{FilesDiscovered: 4, FilesScanned: 1, FilesSkipped: 3}, res.Stats)
	assert.Equal(t, []string{filepath.Join(dir, "index.html")}, res.Files)

	tokens := res.Tokens()
	assert.Contains(t, tokens, "flex")
	assert.Contains(t, tokens, "p-4")
	assert.Contains(t, tokens, "text-red")
	assert.NotContains(t, tokens, "italic")
	assert.NotContains(t, tokens, "block")
	assert.NotContains(t, tokens, "hidden")

	locs := map[string]FileLocation{}
	for _, ref := range res.References {
		locs[ref.Token] = ref.Location
	}
	assert.Equal(t, 1, locs["flex"].Line)
	assert.Equal(t, 13, locs["flex"].Column)
	assert.Equal(t, 2, locs["text-red"].Line)
	assert.Equal(t, 16, locs["text-red"].Column)
	assert.Equal(t, `<span class="text-red">hi</span>`, locs["text-red"].Text)
}

func TestScanCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.html"), `<div class="flex">`)

	gen, err := utilcss.New(utilcss.UserConfig{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Options{Root: dir}).Scan(ctx, gen, []string{filepath.Join(dir, "*.html")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestScanBadPattern(t *testing.T) {
	_, _, err := New(Options{}).ExpandGlobs([]string{"[unclosed"})
	require.Error(t, err)
}
