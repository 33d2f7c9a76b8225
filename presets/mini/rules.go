package mini

import (
	"context"
	"strconv"
	"strings"

	"github.com/yacobolo/utilcss"
)

var directions = map[string][]string{
	"":  {""},
	"x": {"-left", "-right"},
	"y": {"-top", "-bottom"},
	"t": {"-top"},
	"r": {"-right"},
	"b": {"-bottom"},
	"l": {"-left"},
}

// Rules returns the preset's rules in registration order.
func Rules() []utilcss.Rule {
	return []utilcss.Rule{
		utilcss.StaticRule("block", utilcss.Decl("display", "block")),
		utilcss.StaticRule("inline", utilcss.Decl("display", "inline")),
		utilcss.StaticRule("inline-block", utilcss.Decl("display", "inline-block")),
		utilcss.StaticRule("flex", utilcss.Decl("display", "flex")),
		utilcss.StaticRule("grid", utilcss.Decl("display", "grid")),
		utilcss.StaticRule("hidden", utilcss.Decl("display", "none")),
		utilcss.StaticRule("font-bold", utilcss.Decl("font-weight", "700")),
		utilcss.StaticRule("font-normal", utilcss.Decl("font-weight", "400")),
		utilcss.StaticRule("italic", utilcss.Decl("font-style", "italic")),
		utilcss.StaticRule("underline", utilcss.Decl("text-decoration-line", "underline")),
		utilcss.StaticRule("items-center", utilcss.Decl("align-items", "center")),
		utilcss.StaticRule("justify-center", utilcss.Decl("justify-content", "center")),
		utilcss.StaticRule("relative", utilcss.Decl("position", "relative")),
		utilcss.StaticRule("absolute", utilcss.Decl("position", "absolute")),

		utilcss.DynamicRule(`^([mp])([xytrbl]?)-(-?\d+(?:\.\d+)?|px|auto|\[[^\]]+\])$`, spacing),
		utilcss.DynamicRule(`^(w|h)-(\d+(?:\.\d+)?|full|screen|auto|\[[^\]]+\])$`, size),
		utilcss.DynamicRule(`^(?:text|c)-(.+)$`, color("color")),
		utilcss.DynamicRule(`^bg-(.+)$`, color("background-color")),
		utilcss.DynamicRule(`^border-(.+)$`, color("border-color")),
		utilcss.DynamicRule(`^op(?:acity)?-?(\d+)$`, opacity),
		utilcss.DynamicRule(`^z-(-?\d+|auto)$`, func(_ context.Context, m []string, _ *utilcss.RuleContext) ([]utilcss.RuleOutput, error) {
			return utilcss.Emit(utilcss.Decl("z-index", m[1])), nil
		}),
		utilcss.DynamicRule(`^\[([a-z-]+):(.+)\]$`, func(_ context.Context, m []string, _ *utilcss.RuleContext) ([]utilcss.RuleOutput, error) {
			return utilcss.Emit(utilcss.Decl(m[1], strings.ReplaceAll(m[2], "_", " "))), nil
		}),
	}
}

// spacingValue converts the Tailwind scale (n/4 rem) and arbitrary values.
func spacingValue(v string) (string, bool) {
	switch v {
	case "px":
		return "1px", true
	case "auto":
		return "auto", true
	case "0":
		return "0", true
	}
	if a, ok := arbitrary(v); ok {
		return a, true
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(n/4, 'f', -1, 64) + "rem", true
}

func spacing(_ context.Context, m []string, _ *utilcss.RuleContext) ([]utilcss.RuleOutput, error) {
	value, ok := spacingValue(m[3])
	if !ok {
		return nil, nil
	}
	prop := "margin"
	if m[1] == "p" {
		prop = "padding"
		if value == "auto" || strings.HasPrefix(value, "-") {
			return nil, nil
		}
	}
	var entries utilcss.Entries
	for _, suffix := range directions[m[2]] {
		entries = append(entries, utilcss.Entry{Prop: prop + suffix, Value: value})
	}
	return utilcss.Emit(entries), nil
}

func size(_ context.Context, m []string, _ *utilcss.RuleContext) ([]utilcss.RuleOutput, error) {
	prop := "width"
	if m[1] == "h" {
		prop = "height"
	}
	var value string
	switch m[2] {
	case "full":
		value = "100%"
	case "screen":
		value = "100v" + prop[:1]
	default:
		v, ok := spacingValue(m[2])
		if !ok {
			return nil, nil
		}
		value = v
	}
	return utilcss.Emit(utilcss.Decl(prop, value)), nil
}

func color(prop string) utilcss.RuleFunc {
	return func(_ context.Context, m []string, rctx *utilcss.RuleContext) ([]utilcss.RuleOutput, error) {
		value, ok := resolveColor(rctx.Theme, m[1])
		if !ok {
			return nil, nil
		}
		return utilcss.Emit(utilcss.Decl(prop, value)), nil
	}
}

func opacity(_ context.Context, m []string, _ *utilcss.RuleContext) ([]utilcss.RuleOutput, error) {
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 100 {
		return nil, nil
	}
	return utilcss.Emit(utilcss.Decl("opacity", strconv.FormatFloat(float64(n)/100, 'f', -1, 64))), nil
}
