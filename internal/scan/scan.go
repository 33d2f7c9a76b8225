// Package scan discovers source files and extracts utility tokens from them
// with a generator's extractors.
package scan

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/yacobolo/utilcss"
)

// TokenReference is the first place a token was seen in a file
type TokenReference struct {
	Token    string
	Location FileLocation
}

// FileLocation tracks where a token was found
type FileLocation struct {
	File   string
	Line   int
	Column int    // 1-based column of the token start, 0 if unknown
	Text   string // Trimmed line content for source display
}

// ScanStats tracks file scanning statistics
type ScanStats struct {
	FilesDiscovered int // Total files found by glob patterns
	FilesScanned    int // Files actually scanned (after filtering)
	FilesSkipped    int // Files skipped due to filtering
}

// Result is the outcome of one scan.
type Result struct {
	References []TokenReference
	Files      []string
	Stats      ScanStats
}

// Tokens returns the sorted, de-duplicated tokens of the scan.
func (r *Result) Tokens() []string {
	seen := make(map[string]bool, len(r.References))
	var out []string
	for _, ref := range r.References {
		if !seen[ref.Token] {
			seen[ref.Token] = true
			out = append(out, ref.Token)
		}
	}
	sort.Strings(out)
	return out
}

// Extractor is the part of a generator the scanner needs.
type Extractor interface {
	ApplyExtractors(ctx context.Context, code, id string) ([]string, error)
}

// Options configures a Scanner.
type Options struct {
	Root    string   // Directory holding .gitignore; relative paths are matched against it
	Exclude []string // Extra doublestar patterns to skip, e.g. the output file
}

// Scanner expands globs, filters files and extracts tokens.
type Scanner struct {
	root      string
	exclude   []string
	gitIgnore *ignore.GitIgnore
}

// New creates a Scanner. A missing .gitignore is fine.
func New(opts Options) *Scanner {
	root := opts.Root
	if root == "" {
		root = "."
	}
	s := &Scanner{root: root, exclude: opts.Exclude}
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		s.gitIgnore = gi
	}
	return s
}

// isGenerated checks for generated sources that only mirror other files
func isGenerated(path string) bool {
	return strings.HasSuffix(path, "_templ.go") ||
		strings.HasSuffix(path, ".templ.go") ||
		strings.HasSuffix(path, ".min.js") ||
		strings.HasSuffix(path, ".min.css")
}

// shouldSkipFile determines if a file should be excluded from scanning.
//
// Three layers, cheapest first: generated files, explicit excludes, then
// .gitignore (only for paths inside the root).
func (s *Scanner) shouldSkipFile(path string) bool {
	if isGenerated(path) {
		return true
	}

	slashed := filepath.ToSlash(path)
	for _, pattern := range s.exclude {
		if ok, _ := doublestar.Match(filepath.ToSlash(pattern), slashed); ok {
			return true
		}
	}

	if s.gitIgnore == nil {
		return false
	}
	rel := path
	if filepath.IsAbs(path) {
		absRoot, err := filepath.Abs(s.root)
		if err != nil {
			return false
		}
		r, err := filepath.Rel(absRoot, path)
		if err != nil || strings.HasPrefix(r, "..") {
			return false
		}
		rel = r
	}
	return s.gitIgnore.MatchesPath(filepath.ToSlash(rel))
}

// ExpandGlobs expands glob patterns to files and tracks statistics.
func (s *Scanner) ExpandGlobs(patterns []string) ([]string, ScanStats, error) {
	var allFiles []string
	seen := make(map[string]bool)
	stats := ScanStats{}

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, stats, fmt.Errorf("glob %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			seen[match] = true
			stats.FilesDiscovered++

			if s.shouldSkipFile(match) {
				stats.FilesSkipped++
				continue
			}
			allFiles = append(allFiles, match)
			stats.FilesScanned++
		}
	}

	sort.Strings(allFiles)
	return allFiles, stats, nil
}

// Scan expands patterns and extracts tokens from every file.
func (s *Scanner) Scan(ctx context.Context, ex Extractor, patterns []string) (*Result, error) {
	files, stats, err := s.ExpandGlobs(patterns)
	if err != nil {
		return nil, err
	}

	res := &Result{Files: files, Stats: stats}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		refs, err := ScanFile(ctx, ex, file)
		if err != nil {
			return nil, err
		}
		res.References = append(res.References, refs...)
	}
	return res, nil
}

// ScanFile extracts tokens from one file and locates their first use.
func ScanFile(ctx context.Context, ex Extractor, path string) ([]TokenReference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	tokens, err := ex.ApplyExtractors(ctx, string(data), path)
	if err != nil {
		return nil, err
	}
	return locateTokens(data, path, tokens), nil
}

// locateTokens finds the first line containing each token. Tokens that no
// line contains verbatim (extractor rewrites) get a location without a line.
func locateTokens(data []byte, path string, tokens []string) []TokenReference {
	pending := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		pending[t] = true
	}
	found := make(map[string]FileLocation, len(tokens))

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() && len(pending) > 0 {
		lineNum++
		line := scanner.Text()
		for t := range pending {
			col := findTokenColumn(line, t)
			if col == 0 {
				continue
			}
			found[t] = FileLocation{File: path, Line: lineNum, Column: col, Text: strings.TrimSpace(line)}
			delete(pending, t)
		}
	}

	refs := make([]TokenReference, 0, len(tokens))
	for _, t := range tokens {
		loc, ok := found[t]
		if !ok {
			loc = FileLocation{File: path}
		}
		refs = append(refs, TokenReference{Token: t, Location: loc})
	}
	return refs
}

// findTokenColumn returns the 1-based column where token starts as a whole
// word within line, or 0.
func findTokenColumn(line, token string) int {
	offset := 0
	for {
		idx := strings.Index(line[offset:], token)
		if idx == -1 {
			return 0
		}
		start := offset + idx
		end := start + len(token)
		if (start == 0 || isBoundary(line[start-1])) && (end == len(line) || isBoundary(line[end])) {
			return start + 1
		}
		offset = start + 1
	}
}

func isBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '"', '\'', '`', ';', '{', '}', '<', '>', '=':
		return true
	}
	return false
}

// GetRelativePath returns a relative path from the current working directory
func GetRelativePath(absPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return absPath
	}

	rel, err := filepath.Rel(cwd, absPath)
	if err != nil {
		return absPath
	}

	return rel
}

var _ Extractor = (*utilcss.Generator)(nil)
