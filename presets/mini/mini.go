// Package mini is a small built-in preset: a theme with colors and
// breakpoints, spacing/color/display rules, the common variants and a
// box-sizing preflight.
package mini

import (
	"github.com/yacobolo/utilcss"
)

// Name is the preset name used for deduplication.
const Name = "utilcss:mini"

// Options tunes the preset
type Options struct {
	DarkSelector string // Selector prefix for dark:, default ".dark "
	Preflight    *bool  // Emit the box-sizing reset, default true
}

// New returns the preset.
func New(opts ...Options) *utilcss.Preset {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.DarkSelector == "" {
		o.DarkSelector = ".dark "
	}

	p := &utilcss.Preset{
		Name:     Name,
		Theme:    DefaultTheme(),
		Rules:    Rules(),
		Variants: Variants(o),
	}
	if o.Preflight == nil || *o.Preflight {
		p.Preflights = []utilcss.Preflight{{
			Layer: utilcss.LayerPreflights,
			CSS:   "*,::before,::after{box-sizing:border-box;border-width:0;border-style:solid;}",
		}}
	}
	return p
}
