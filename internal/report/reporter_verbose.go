package report

import (
	"fmt"
	"io"
	"strings"
)

// maxUnmatchedShown caps the unmatched token sample.
const maxUnmatchedShown = 20

// VerboseReporter prints statistics, layer sizes and unmatched tokens
type VerboseReporter struct {
	w         io.Writer
	useColors bool
}

// NewVerboseReporter creates a verbose reporter
func NewVerboseReporter(w io.Writer, useColors bool) *VerboseReporter {
	return &VerboseReporter{
		w:         w,
		useColors: useColors,
	}
}

// PrintStatistics outputs scan and generation counts
func (r *VerboseReporter) PrintStatistics(report *Report) {
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleCyan, "Generation Statistics", r.useColors))
	fmt.Fprintln(r.w, "---------------------")

	fmt.Fprintf(r.w, "Files Scanned:    %d\n", report.FilesScanned)
	fmt.Fprintf(r.w, "Files Skipped:    %d\n", report.FilesSkipped)
	fmt.Fprintf(r.w, "Candidate Tokens: %d\n", report.Tokens)
	fmt.Fprintf(r.w, "Matched:          %d (%.1f%%)\n", report.Matched, report.Coverage())
	fmt.Fprintf(r.w, "Failed:           %d\n", len(report.Issues))
	fmt.Fprintf(r.w, "CSS Size:         %d bytes\n", report.Bytes)
}

// PrintCoverage shows the matched share as a progress bar
func (r *VerboseReporter) PrintCoverage(report *Report) {
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleCyan, "Token Coverage", r.useColors))
	fmt.Fprintln(r.w, "--------------")
	printProgressBar(r.w, report.Coverage())
}

// PrintLayers lists layers in output order with their sizes
func (r *VerboseReporter) PrintLayers(report *Report) {
	if len(report.Layers) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleCyan, "Layers", r.useColors))
	fmt.Fprintln(r.w, "------")

	width := 0
	for _, l := range report.Layers {
		width = max(width, len(l.Name))
	}
	for _, l := range report.Layers {
		fmt.Fprintf(r.w, "%-*s  %d bytes\n", width, l.Name, l.Bytes)
	}
}

// PrintUnmatched shows a sample of candidate tokens that produced no CSS
func (r *VerboseReporter) PrintUnmatched(report *Report) {
	if len(report.Unmatched) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleYellow, "Unmatched Tokens", r.useColors))
	fmt.Fprintln(r.w, "----------------")

	shown := report.Unmatched
	if len(shown) > maxUnmatchedShown {
		shown = shown[:maxUnmatchedShown]
	}
	fmt.Fprintln(r.w, strings.Join(shown, " "))
	if rest := len(report.Unmatched) - len(shown); rest > 0 {
		fmt.Fprintf(r.w, "... and %d more\n", rest)
	}
}

// printProgressBar prints a visual progress bar
func printProgressBar(w io.Writer, percentage float64) {
	barWidth := 20
	filled := int(percentage / 100 * float64(barWidth))

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < barWidth; i++ {
		if i < filled {
			bar.WriteString("█")
		} else {
			bar.WriteString("░")
		}
	}
	fmt.Fprintf(w, "%s] %.1f%%\n", bar.String(), percentage)
}
