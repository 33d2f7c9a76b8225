package report

import (
	"encoding/json"
	"io"
	"time"
)

// JSONOutput is the structured JSON export schema
type JSONOutput struct {
	Version   string      `json:"version"`
	Timestamp string      `json:"timestamp"`
	Summary   JSONSummary `json:"summary"`
	Layers    []LayerStat `json:"layers"`
	Issues    []JSONIssue `json:"issues"`
	Unmatched []string    `json:"unmatched"`
}

// JSONSummary contains the headline counts
type JSONSummary struct {
	FilesScanned int     `json:"files_scanned"`
	FilesSkipped int     `json:"files_skipped"`
	Tokens       int     `json:"tokens"`
	Matched      int     `json:"matched"`
	Failed       int     `json:"failed"`
	Coverage     float64 `json:"coverage"`
	OutputFile   string  `json:"output_file,omitempty"`
	Bytes        int     `json:"bytes"`
	DurationMS   int64   `json:"duration_ms"`
}

// JSONIssue represents a single failed token
type JSONIssue struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Stage    string `json:"stage"`
	Source   string `json:"source,omitempty"`
}

// WriteJSON writes the report as indented JSON
func WriteJSON(w io.Writer, report *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildJSONOutput(report, time.Now()))
}

func buildJSONOutput(report *Report, now time.Time) JSONOutput {
	issues := make([]JSONIssue, len(report.Issues))
	for i, issue := range report.Issues {
		source := ""
		if len(issue.SourceLines) > 0 {
			source = issue.SourceLines[0]
		}
		issues[i] = JSONIssue{
			File:     issue.Pos.Filename,
			Line:     issue.Pos.Line,
			Column:   issue.Pos.Column,
			Severity: issue.Severity,
			Message:  issue.Text,
			Stage:    issue.FromStage,
			Source:   source,
		}
	}

	layers := report.Layers
	if layers == nil {
		layers = []LayerStat{}
	}
	unmatched := report.Unmatched
	if unmatched == nil {
		unmatched = []string{}
	}

	return JSONOutput{
		Version:   "1.0",
		Timestamp: now.Format(time.RFC3339),
		Summary: JSONSummary{
			FilesScanned: report.FilesScanned,
			FilesSkipped: report.FilesSkipped,
			Tokens:       report.Tokens,
			Matched:      report.Matched,
			Failed:       len(report.Issues),
			Coverage:     report.Coverage(),
			OutputFile:   report.OutputFile,
			Bytes:        report.Bytes,
			DurationMS:   report.Duration.Milliseconds(),
		},
		Layers:    layers,
		Issues:    issues,
		Unmatched: unmatched,
	}
}
