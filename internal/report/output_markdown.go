package report

import (
	"fmt"
	"io"
	"strings"
)

// WriteMarkdown writes the report as a Markdown document
func WriteMarkdown(w io.Writer, report *Report) error {
	var b strings.Builder

	b.WriteString("# utilcss report\n\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("|---|---|\n")
	fmt.Fprintf(&b, "| Files scanned | %d |\n", report.FilesScanned)
	fmt.Fprintf(&b, "| Candidate tokens | %d |\n", report.Tokens)
	fmt.Fprintf(&b, "| Matched | %d (%.1f%%) |\n", report.Matched, report.Coverage())
	fmt.Fprintf(&b, "| Failed | %d |\n", len(report.Issues))
	if report.OutputFile != "" {
		fmt.Fprintf(&b, "| Output | `%s` (%d bytes) |\n", report.OutputFile, report.Bytes)
	}

	if len(report.Layers) > 0 {
		b.WriteString("\n## Layers\n\n")
		b.WriteString("| Layer | Bytes |\n")
		b.WriteString("|---|---|\n")
		for _, l := range report.Layers {
			fmt.Fprintf(&b, "| %s | %d |\n", l.Name, l.Bytes)
		}
	}

	if len(report.Issues) > 0 {
		b.WriteString("\n## Failed tokens\n\n")
		for _, issue := range report.Issues {
			fmt.Fprintf(&b, "- `%s` %s (%s)\n", issue.Pos, issue.Text, issue.FromStage)
		}
	}

	if len(report.Unmatched) > 0 {
		b.WriteString("\n## Unmatched tokens\n\n")
		shown := report.Unmatched
		if len(shown) > maxUnmatchedShown {
			shown = shown[:maxUnmatchedShown]
		}
		for _, t := range shown {
			fmt.Fprintf(&b, "- `%s`\n", t)
		}
		if rest := len(report.Unmatched) - len(shown); rest > 0 {
			fmt.Fprintf(&b, "- ... and %d more\n", rest)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
