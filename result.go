package utilcss

import (
	"slices"
	"strings"

	"go.uber.org/multierr"
)

// TokenInfo is the provenance of one token when ExtendedInfo is requested.
type TokenInfo struct {
	Count int               // Times the token was submitted
	Utils []StringifiedUtil // What it resolved to
}

// GenerateResult is the output of one Generate call.
type GenerateResult struct {
	CSS          string
	Matched      []string // Sorted tokens that produced output
	Layers       []string // Rendered layers in output order
	ExtendedInfo map[string]TokenInfo
	Errors       []error // Isolated token failures, only with IsolateErrors

	layerCSS map[string]string
	nl       string
}

// IsMatched reports whether token produced output.
func (r *GenerateResult) IsMatched(token string) bool {
	_, ok := slices.BinarySearch(r.Matched, token)
	return ok
}

// GetLayer returns the rendered CSS of one layer, or "" if it is empty.
func (r *GenerateResult) GetLayer(name string) string {
	return r.layerCSS[name]
}

// GetLayers joins the rendered layers in order. A nil include means every
// layer; exclude removes names from the selection.
func (r *GenerateResult) GetLayers(include, exclude []string) string {
	parts := make([]string, 0, len(r.Layers))
	for _, name := range r.Layers {
		if include != nil && !slices.Contains(include, name) {
			continue
		}
		if slices.Contains(exclude, name) {
			continue
		}
		parts = append(parts, r.layerCSS[name])
	}
	return strings.Join(parts, r.nl)
}

// Err combines the isolated failures into one error.
func (r *GenerateResult) Err() error {
	return multierr.Combine(r.Errors...)
}
