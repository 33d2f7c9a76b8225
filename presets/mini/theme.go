package mini

import (
	"sort"
	"strconv"
	"strings"

	"github.com/yacobolo/utilcss"
)

// DefaultTheme returns the colors and breakpoints the rules and variants read.
func DefaultTheme() utilcss.Theme {
	return utilcss.Theme{
		"colors": map[string]any{
			"transparent": "transparent",
			"current":     "currentColor",
			"black":       "#000",
			"white":       "#fff",
			"red": map[string]any{
				"DEFAULT": "#f87171",
				"100":     "#fee2e2",
				"500":     "#ef4444",
				"600":     "#dc2626",
			},
			"green": map[string]any{
				"DEFAULT": "#4ade80",
				"500":     "#22c55e",
				"600":     "#16a34a",
			},
			"blue": map[string]any{
				"DEFAULT": "#60a5fa",
				"500":     "#3b82f6",
				"600":     "#2563eb",
			},
			"gray": map[string]any{
				"DEFAULT": "#9ca3af",
				"100":     "#f3f4f6",
				"500":     "#6b7280",
				"900":     "#111827",
			},
		},
		"breakpoints": map[string]any{
			"sm":  "640px",
			"md":  "768px",
			"lg":  "1024px",
			"xl":  "1280px",
			"2xl": "1536px",
		},
	}
}

// resolveColor maps "red-500", "red", "white" or "[#123456]" to a color value.
func resolveColor(theme utilcss.Theme, name string) (string, bool) {
	if v, ok := arbitrary(name); ok {
		return v, true
	}
	if v, ok := theme.String("colors." + name); ok {
		return v, true
	}
	if v, ok := theme.String("colors." + name + ".DEFAULT"); ok {
		return v, true
	}
	if i := strings.LastIndex(name, "-"); i > 0 {
		if v, ok := theme.String("colors." + name[:i] + "." + name[i+1:]); ok {
			return v, true
		}
	}
	return "", false
}

// arbitrary unwraps "[value]", turning underscores into spaces.
func arbitrary(s string) (string, bool) {
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return "", false
	}
	return strings.ReplaceAll(s[1:len(s)-1], "_", " "), true
}

type breakpoint struct {
	name  string
	width string
	px    int
}

// breakpoints returns the theme breakpoints ordered by width.
func breakpoints(theme utilcss.Theme) []breakpoint {
	m, ok := theme.Map("breakpoints")
	if !ok {
		return nil
	}
	out := make([]breakpoint, 0, len(m))
	for name, v := range m {
		width, ok := v.(string)
		if !ok {
			continue
		}
		px, err := strconv.Atoi(strings.TrimSuffix(width, "px"))
		if err != nil {
			continue
		}
		out = append(out, breakpoint{name: name, width: width, px: px})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].px != out[j].px {
			return out[i].px < out[j].px
		}
		return out[i].name < out[j].name
	})
	return out
}
