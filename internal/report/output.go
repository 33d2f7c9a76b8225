package report

import (
	"fmt"
	"io"
)

// OutputFormat selects how a report is written
type OutputFormat string

const (
	// OutputIssues shows only failed tokens in golangci-lint format (CI-friendly)
	OutputIssues OutputFormat = "issues"
	// OutputSummary shows failed tokens and the one-line result
	OutputSummary OutputFormat = "summary"
	// OutputFull adds statistics, coverage, layers and unmatched tokens
	OutputFull OutputFormat = "full"
	// OutputJSON exports structured data for tooling
	OutputJSON OutputFormat = "json"
	// OutputMarkdown writes a shareable report
	OutputMarkdown OutputFormat = "markdown"
)

// DetermineOutputFormat selects the output format from flags
func DetermineOutputFormat(formatFlag string, quiet bool) OutputFormat {
	if quiet {
		return OutputIssues
	}

	switch formatFlag {
	case "issues":
		return OutputIssues
	case "summary":
		return OutputSummary
	case "full":
		return OutputFull
	case "json":
		return OutputJSON
	case "markdown", "md":
		return OutputMarkdown
	}
	return DetermineDefaultOutputFormat()
}

// DetermineDefaultOutputFormat returns the default output format
func DetermineDefaultOutputFormat() OutputFormat {
	return OutputSummary
}

// WriteOutput writes the report in the given format
func WriteOutput(w io.Writer, report *Report, format OutputFormat, config Config) error {
	switch format {
	case OutputIssues:
		NewReporter(w, config).PrintIssues(report.Issues)

	case OutputSummary:
		reporter := NewReporter(w, config)
		reporter.PrintIssues(report.Issues)
		reporter.PrintSummary(report)

	case OutputFull:
		reporter := NewReporter(w, config)
		reporter.PrintIssues(report.Issues)
		reporter.PrintSummary(report)

		verbose := NewVerboseReporter(w, reporter.UseColors())
		verbose.PrintStatistics(report)
		verbose.PrintCoverage(report)
		verbose.PrintLayers(report)
		verbose.PrintUnmatched(report)

	case OutputJSON:
		if err := WriteJSON(w, report); err != nil {
			return fmt.Errorf("write json: %w", err)
		}

	case OutputMarkdown:
		if err := WriteMarkdown(w, report); err != nil {
			return fmt.Errorf("write markdown: %w", err)
		}

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
