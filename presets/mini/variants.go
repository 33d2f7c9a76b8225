package mini

import (
	"context"
	"strings"

	"github.com/yacobolo/utilcss"
)

// Variant orders, lower is outer.
const (
	orderDark  = -20
	orderGroup = -10
)

// Longer names come first so "focus" does not swallow "focus-visible".
var pseudoClasses = []struct{ name, pseudo string }{
	{"hover", ":hover"},
	{"focus-visible", ":focus-visible"},
	{"focus-within", ":focus-within"},
	{"focus", ":focus"},
	{"active", ":active"},
	{"visited", ":visited"},
	{"disabled", ":disabled"},
	{"checked", ":checked"},
	{"first", ":first-child"},
	{"last", ":last-child"},
	{"odd", ":nth-child(odd)"},
	{"even", ":nth-child(even)"},
}

var pseudoElements = []struct{ name, pseudo string }{
	{"before", "::before"},
	{"after", "::after"},
	{"file", "::file-selector-button"},
	{"marker", "::marker"},
	{"placeholder", "::placeholder"},
	{"selection", "::selection"},
}

// Variants returns the preset's variants in registration order.
func Variants(o Options) []utilcss.Variant {
	out := []utilcss.Variant{
		important(),
		layerVariant(),
		utilcss.SelectorPrefixVariant("dark", o.DarkSelector, orderDark),
		groupHover(),
		responsive(),
	}
	for _, p := range pseudoClasses {
		out = append(out, utilcss.PseudoVariant(p.name, p.pseudo))
	}
	for _, p := range pseudoElements {
		out = append(out, utilcss.PseudoVariant(p.name, p.pseudo))
	}
	return out
}

// important handles the "!" prefix by marking every declaration !important.
func important() utilcss.Variant {
	return utilcss.Variant{
		Name: "important",
		Match: func(_ context.Context, matcher string, _ *utilcss.VariantContext) ([]utilcss.VariantHandler, error) {
			if !strings.HasPrefix(matcher, "!") || len(matcher) < 2 {
				return nil, nil
			}
			return []utilcss.VariantHandler{{
				Matcher: matcher[1:],
				Body: func(e utilcss.Entries) utilcss.Entries {
					out := e.Clone()
					for i := range out {
						if !strings.HasSuffix(out[i].Value, "!important") {
							out[i].Value += " !important"
						}
					}
					return out
				},
			}}, nil
		},
	}
}

// layerVariant moves a utility to another layer: "layer-components:btn".
func layerVariant() utilcss.Variant {
	return utilcss.Variant{
		Name: "layer",
		Match: func(_ context.Context, matcher string, _ *utilcss.VariantContext) ([]utilcss.VariantHandler, error) {
			rest, ok := strings.CutPrefix(matcher, "layer-")
			if !ok {
				return nil, nil
			}
			name, residual, ok := strings.Cut(rest, ":")
			if !ok || name == "" || residual == "" {
				return nil, nil
			}
			return []utilcss.VariantHandler{{Matcher: residual, Layer: name}}, nil
		},
	}
}

func groupHover() utilcss.Variant {
	v := utilcss.PrefixVariant("group-hover", utilcss.VariantHandler{Prefix: ".group:hover "})
	v.Order = orderGroup
	return v
}

// responsive maps theme breakpoint names to min-width media queries.
func responsive() utilcss.Variant {
	return utilcss.Variant{
		Name: "breakpoints",
		Match: func(_ context.Context, matcher string, vctx *utilcss.VariantContext) ([]utilcss.VariantHandler, error) {
			for _, bp := range breakpoints(vctx.Theme) {
				rest, ok := utilcss.StripVariantPrefix(matcher, bp.name, []string{":"})
				if !ok {
					continue
				}
				return []utilcss.VariantHandler{{
					Matcher:     rest,
					Parent:      "@media (min-width: " + bp.width + ")",
					ParentOrder: 1000 + bp.px,
				}}, nil
			}
			return nil, nil
		},
	}
}
