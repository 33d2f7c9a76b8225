package utilcss

import (
	"context"
	"strings"
)

// ExtractContext is the input handed to extractors.
type ExtractContext struct {
	Code string
	ID   string // Source identifier, usually a file path
}

// Extractor produces candidate tokens from source code.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, ectx *ExtractContext) ([]string, error)
}

// SplitExtractor splits code on whitespace, quotes and markup delimiters.
type SplitExtractor struct{}

func (SplitExtractor) Name() string { return "split" }

func (SplitExtractor) Extract(_ context.Context, ectx *ExtractContext) ([]string, error) {
	fields := strings.FieldsFunc(ectx.Code, isSplitChar)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if isValidToken(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

func isSplitChar(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f', '\v',
		'"', '\'', '`', ';', '{', '}', '<', '>', '=':
		return true
	}
	return false
}

// isValidToken filters out fragments that can never be utilities.
func isValidToken(s string) bool {
	if s == "" || len(s) > 200 {
		return false
	}
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc struct {
	ExtractorName string
	Fn            func(ctx context.Context, ectx *ExtractContext) ([]string, error)
}

func (e ExtractorFunc) Name() string { return e.ExtractorName }

func (e ExtractorFunc) Extract(ctx context.Context, ectx *ExtractContext) ([]string, error) {
	return e.Fn(ctx, ectx)
}
