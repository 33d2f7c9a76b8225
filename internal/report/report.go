// Package report renders generation results for humans and tools.
package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yacobolo/utilcss"
	"github.com/yacobolo/utilcss/internal/scan"
)

// Issue is a token failure in golangci-lint shape
type Issue struct {
	FromStage   string   `json:"FromStage"`   // "rule", "variant", ...
	Text        string   `json:"Text"`        // rule "p-x": boom
	Severity    string   `json:"Severity"`    // "error" or "warning"
	SourceLines []string `json:"SourceLines"` // Line the token was first seen on
	Pos         IssuePos `json:"Pos"`
}

// IssuePos specifies the location of an issue
type IssuePos struct {
	Filename string `json:"Filename"`
	Line     int    `json:"Line"`
	Column   int    `json:"Column"` // 1-based
}

func (p IssuePos) String() string {
	switch {
	case p.Filename == "":
		return "-"
	case p.Line == 0:
		return p.Filename
	case p.Column == 0:
		return fmt.Sprintf("%s:%d", p.Filename, p.Line)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Severity constants
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// LayerStat is the rendered size of one layer.
type LayerStat struct {
	Name  string `json:"name"`
	Bytes int    `json:"bytes"`
}

// Report summarises one scan and generation.
type Report struct {
	FilesScanned int
	FilesSkipped int
	Tokens       int      // Candidate tokens handed to the generator
	Matched      int      // Tokens that produced CSS
	Unmatched    []string // Sorted candidate tokens without CSS
	Layers       []LayerStat
	Issues       []Issue
	OutputFile   string
	Bytes        int
	Duration     time.Duration
}

// Coverage is the share of candidate tokens that matched, in percent.
func (r *Report) Coverage() float64 {
	if r.Tokens == 0 {
		return 0
	}
	return float64(r.Matched) / float64(r.Tokens) * 100
}

// Build assembles a report. scanned may be nil when tokens did not come from
// a scan.
func Build(scanned *scan.Result, res *utilcss.GenerateResult, outputFile string, elapsed time.Duration) *Report {
	r := &Report{
		Matched:    len(res.Matched),
		OutputFile: outputFile,
		Bytes:      len(res.CSS),
		Duration:   elapsed,
	}

	locations := map[string]scan.FileLocation{}
	failed := map[string]bool{}
	if scanned != nil {
		r.FilesScanned = scanned.Stats.FilesScanned
		r.FilesSkipped = scanned.Stats.FilesSkipped
		for _, ref := range scanned.References {
			if _, ok := locations[ref.Token]; !ok {
				locations[ref.Token] = ref.Location
			}
		}
	}

	for _, err := range res.Errors {
		issue := Issue{FromStage: "generate", Text: err.Error(), Severity: SeverityError}
		var se *utilcss.StageError
		if errors.As(err, &se) {
			issue.FromStage = string(se.Stage)
			failed[se.Token] = true
			if loc, ok := locations[se.Token]; ok {
				issue.Pos = IssuePos{Filename: loc.File, Line: loc.Line, Column: loc.Column}
				if loc.Text != "" {
					issue.SourceLines = []string{loc.Text}
				}
			}
		}
		r.Issues = append(r.Issues, issue)
	}

	if scanned != nil {
		tokens := scanned.Tokens()
		r.Tokens = len(tokens)
		for _, t := range tokens {
			if !res.IsMatched(t) && !failed[t] {
				r.Unmatched = append(r.Unmatched, t)
			}
		}
	} else {
		r.Tokens = r.Matched + len(failed)
	}
	sort.Strings(r.Unmatched)

	for _, name := range res.Layers {
		r.Layers = append(r.Layers, LayerStat{Name: name, Bytes: len(res.GetLayer(name))})
	}
	return r
}
