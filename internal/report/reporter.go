package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Config controls how reports are printed
type Config struct {
	UseColors        bool // Force colors on
	PrintIssuedLines bool // Show source lines under issues
	PrintStageName   bool // Show the "(rule)" suffix
}

// Reporter prints issues and the one-line summary
type Reporter struct {
	w              io.Writer
	useColors      bool
	printLines     bool
	printStageName bool
}

// NewReporter creates a new reporter with the given configuration
func NewReporter(w io.Writer, config Config) *Reporter {
	return &Reporter{
		w:              w,
		useColors:      shouldUseColors(config),
		printLines:     config.PrintIssuedLines,
		printStageName: config.PrintStageName,
	}
}

// shouldUseColors determines if colors should be enabled
func shouldUseColors(config Config) bool {
	if config.UseColors {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}
	if fileInfo, err := os.Stdout.Stat(); err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
		return true
	}
	return false
}

// PrintIssues outputs issues ordered by file, line and column
func (r *Reporter) PrintIssues(issues []Issue) {
	sorted := append([]Issue(nil), issues...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Pos, sorted[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	for _, issue := range sorted {
		r.printIssue(issue)
	}
}

// printIssue formats a single issue as "file:line:col: message (stage)"
func (r *Reporter) printIssue(issue Issue) {
	location := issue.Pos.String() + ":"

	stageSuffix := ""
	if r.printStageName {
		stageSuffix = fmt.Sprintf(" (%s)", issue.FromStage)
	}

	fmt.Fprintf(r.w, "%s %s%s\n",
		RenderStyle(StyleCyan, location, r.useColors),
		issue.Text,
		RenderStyle(StyleGray, stageSuffix, r.useColors))

	if r.printLines && len(issue.SourceLines) > 0 {
		for _, line := range issue.SourceLines {
			fmt.Fprintf(r.w, "\t%s\n", line)
		}
		caret := r.buildCaretIndicator(issue.SourceLines[0], issue.Pos.Column)
		fmt.Fprintf(r.w, "\t%s\n", RenderStyle(StyleYellow, caret, r.useColors))
	}
}

// buildCaretIndicator creates the "^" indicator aligned with the column,
// keeping tabs from the source line so alignment survives tab stops.
func (r *Reporter) buildCaretIndicator(sourceLine string, column int) string {
	if column <= 0 {
		return "^"
	}

	prefixLen := column - 1
	if prefixLen > len(sourceLine) {
		prefixLen = len(sourceLine)
	}

	var padding strings.Builder
	for _, ch := range sourceLine[:prefixLen] {
		if ch == '\t' {
			padding.WriteRune('\t')
		} else {
			padding.WriteRune(' ')
		}
	}
	return padding.String() + "^"
}

// PrintSummary outputs the one-line result and the issue count
func (r *Reporter) PrintSummary(report *Report) {
	if len(report.Issues) > 0 {
		fmt.Fprintln(r.w, "")
	}

	line := fmt.Sprintf("%s from %s",
		pluralizeCount(report.Matched, "utility", "utilities"),
		pluralizeCount(report.FilesScanned, "file", "files"))
	if report.OutputFile != "" {
		line += fmt.Sprintf(" -> %s (%d bytes)", report.OutputFile, report.Bytes)
	}
	if report.Duration > 0 {
		line += fmt.Sprintf(" in %s", report.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(r.w, RenderStyle(StyleGreen, line, r.useColors))

	if n := len(report.Issues); n > 0 {
		fmt.Fprintln(r.w, RenderStyle(StyleRed, pluralizeCount(n, "token failed", "tokens failed"), r.useColors))
	}
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// UseColors returns whether colors are enabled
func (r *Reporter) UseColors() bool {
	return r.useColors
}
