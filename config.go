package utilcss

import (
	"errors"
	"fmt"
	"maps"
	"sort"

	"go.uber.org/multierr"
)

// Built-in layer names
const (
	LayerPreflights = "preflights"
	LayerShortcuts  = "shortcuts"
	LayerDefault    = "default"
)

// DefaultMaxShortcutDepth bounds nested shortcut expansion.
const DefaultMaxShortcutDepth = 16

var defaultLayers = map[string]int{
	LayerPreflights: -100,
	LayerShortcuts:  -10,
	LayerDefault:    0,
}

// ResolvedRule is a rule with its registration index.
type ResolvedRule struct {
	Rule
	Index int
}

// ResolvedShortcut is a shortcut with its registration index.
type ResolvedShortcut struct {
	Shortcut
	Index int
}

// ResolvedConfig is the immutable, merged configuration a generator runs on.
// Callers must treat every field as read-only.
type ResolvedConfig struct {
	Presets          []*Preset
	Rules            []*ResolvedRule
	StaticRules      map[string]*ResolvedRule
	DynamicRules     []*ResolvedRule
	Variants         []Variant
	Shortcuts        []*ResolvedShortcut
	StaticShortcuts  map[string]*ResolvedShortcut
	DynamicShortcuts []*ResolvedShortcut
	Theme            Theme
	Layers           map[string]int
	Preflights       []Preflight
	Extractors       []Extractor
	Safelist         []string
	Blocklist        []BlockRule
	Postprocess      []Postprocessor

	Separators       []string `validate:"min=1,dive,required"`
	ShortcutsLayer   string   `validate:"required,layername"`
	MaxShortcutDepth int      `validate:"min=1,max=256"`
	MergeSelectors   bool
	IsolateErrors    bool
	Concurrency      int `validate:"min=0"`
}

// LayerOrder returns the priority of a layer, unknown layers sort as 0.
func (c *ResolvedConfig) LayerOrder(name string) int {
	return c.Layers[name]
}

// sortLayers orders layer names by (priority, name).
func (c *ResolvedConfig) sortLayers(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		oi, oj := c.LayerOrder(names[i]), c.LayerOrder(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
}

// asPreset lets the config's own items flow through the same merge as presets.
func (u UserConfig) asPreset() *Preset {
	return &Preset{
		Rules:          u.Rules,
		Variants:       u.Variants,
		Shortcuts:      u.Shortcuts,
		Theme:          u.Theme,
		Preflights:     u.Preflights,
		Layers:         u.Layers,
		Extractors:     u.Extractors,
		Safelist:       u.Safelist,
		Blocklist:      u.Blocklist,
		Postprocess:    u.Postprocess,
		ConfigResolved: u.ConfigResolved,
	}
}

// flattenPresets walks presets depth first, children before parents, and
// drops repeats by name (or identity for unnamed presets).
func flattenPresets(presets []*Preset) []*Preset {
	var out []*Preset
	seenName := map[string]bool{}
	seenPtr := map[*Preset]bool{}

	var walk func(p *Preset)
	walk = func(p *Preset) {
		if p == nil || seenPtr[p] {
			return
		}
		if p.Name != "" && seenName[p.Name] {
			return
		}
		seenPtr[p] = true
		if p.Name != "" {
			seenName[p.Name] = true
		}
		for _, child := range p.Presets {
			walk(child)
		}
		out = append(out, p)
	}
	for _, p := range presets {
		walk(p)
	}
	return out
}

// ResolveConfig merges config over defaults and their presets into a
// ResolvedConfig. Every problem found is reported in one *ConfigError.
func ResolveConfig(config, defaults UserConfig) (*ResolvedConfig, error) {
	presets := flattenPresets(append(append([]*Preset{}, defaults.Presets...), config.Presets...))
	sources := append(append([]*Preset{}, presets...), defaults.asPreset(), config.asPreset())

	rc := &ResolvedConfig{
		Presets:         presets,
		StaticRules:     map[string]*ResolvedRule{},
		StaticShortcuts: map[string]*ResolvedShortcut{},
		Layers:          maps.Clone(defaultLayers),
	}

	var errs error
	var rules []Rule
	var shortcuts []Shortcut
	themes := make([]Theme, 0, len(sources))

	for _, src := range sources {
		for i, r := range src.Rules {
			if err := checkRule(r); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s rule %d: %w", sourceName(src), i, err))
				continue
			}
			if r.Meta.Layer == "" {
				r.Meta.Layer = src.Layer
			}
			rules = append(rules, r)
		}
		for i, s := range src.Shortcuts {
			if err := checkShortcut(s); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s shortcut %d: %w", sourceName(src), i, err))
				continue
			}
			if s.Meta.Layer == "" {
				s.Meta.Layer = src.Layer
			}
			shortcuts = append(shortcuts, s)
		}
		for i, v := range src.Variants {
			if v.Match == nil {
				errs = multierr.Append(errs, fmt.Errorf("%s variant %d (%s): missing match function", sourceName(src), i, v.Name))
				continue
			}
			rc.Variants = append(rc.Variants, v)
		}
		for i, p := range src.Preflights {
			if p.CSS == "" && p.Func == nil {
				errs = multierr.Append(errs, fmt.Errorf("%s preflight %d: needs css or a function", sourceName(src), i))
				continue
			}
			if p.CSS != "" {
				if err := checkPreflightCSS(p.CSS); err != nil {
					errs = multierr.Append(errs, fmt.Errorf("%s preflight %d: %w", sourceName(src), i, err))
					continue
				}
			}
			if p.Layer == "" {
				p.Layer = LayerPreflights
			}
			rc.Preflights = append(rc.Preflights, p)
		}
		maps.Copy(rc.Layers, src.Layers)
		themes = append(themes, src.Theme)
		rc.Extractors = append(rc.Extractors, src.Extractors...)
		rc.Safelist = append(rc.Safelist, src.Safelist...)
		rc.Blocklist = append(rc.Blocklist, src.Blocklist...)
		rc.Postprocess = append(rc.Postprocess, src.Postprocess...)
	}

	theme, err := mergeThemes(themes...)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	rc.Theme = theme

	rc.indexRules(rules)
	rc.indexShortcuts(shortcuts)
	if len(rc.Extractors) == 0 {
		rc.Extractors = []Extractor{SplitExtractor{}}
	}

	rc.Separators = firstNonEmpty(config.Separators, defaults.Separators, []string{":", "-"})
	rc.ShortcutsLayer = firstNonZero(config.ShortcutsLayer, defaults.ShortcutsLayer, LayerShortcuts)
	rc.MaxShortcutDepth = firstNonZero(config.MaxShortcutDepth, defaults.MaxShortcutDepth, DefaultMaxShortcutDepth)
	rc.MergeSelectors = true
	if config.MergeSelectors != nil {
		rc.MergeSelectors = *config.MergeSelectors
	} else if defaults.MergeSelectors != nil {
		rc.MergeSelectors = *defaults.MergeSelectors
	}
	rc.IsolateErrors = config.IsolateErrors || defaults.IsolateErrors
	rc.Concurrency = firstNonZero(config.Concurrency, defaults.Concurrency, 0)

	errs = multierr.Append(errs, validateSettings(rc))
	if cycle := findShortcutCycle(rc.StaticShortcuts); cycle != nil {
		errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrShortcutCycle, formatCycle(cycle)))
	}

	if errs != nil {
		return nil, &ConfigError{Err: errs}
	}

	for _, src := range sources {
		if src.ConfigResolved != nil {
			src.ConfigResolved(rc)
		}
	}
	return rc, nil
}

// indexRules keeps the last registration of each key or pattern and assigns
// indices in registration order.
func (c *ResolvedConfig) indexRules(rules []Rule) {
	last := map[string]int{}
	for i, r := range rules {
		last[r.id()] = i
	}
	for i, r := range rules {
		if last[r.id()] != i {
			continue
		}
		rr := &ResolvedRule{Rule: r, Index: len(c.Rules)}
		c.Rules = append(c.Rules, rr)
		if r.Kind == RuleStatic {
			c.StaticRules[r.Meta.Prefix+r.Key] = rr
		} else {
			c.DynamicRules = append(c.DynamicRules, rr)
		}
	}
}

func (c *ResolvedConfig) indexShortcuts(shortcuts []Shortcut) {
	last := map[string]int{}
	for i, s := range shortcuts {
		last[s.id()] = i
	}
	for i, s := range shortcuts {
		if last[s.id()] != i {
			continue
		}
		rs := &ResolvedShortcut{Shortcut: s, Index: len(c.Shortcuts)}
		c.Shortcuts = append(c.Shortcuts, rs)
		if s.Kind == ShortcutStatic {
			c.StaticShortcuts[s.Meta.Prefix+s.Key] = rs
		} else {
			c.DynamicShortcuts = append(c.DynamicShortcuts, rs)
		}
	}
}

func checkRule(r Rule) error {
	switch r.Kind {
	case RuleStatic:
		if r.Key == "" {
			return errors.New("static rule without a key")
		}
	case RuleDynamic:
		if r.Pattern == nil || r.Func == nil {
			return errors.New("dynamic rule needs a pattern and a function")
		}
	default:
		return fmt.Errorf("unknown rule kind %d", r.Kind)
	}
	return nil
}

func checkShortcut(s Shortcut) error {
	switch s.Kind {
	case ShortcutStatic:
		if s.Key == "" {
			return errors.New("static shortcut without a key")
		}
	case ShortcutDynamic:
		if s.Pattern == nil || s.Func == nil {
			return errors.New("dynamic shortcut needs a pattern and a function")
		}
	default:
		return fmt.Errorf("unknown shortcut kind %d", s.Kind)
	}
	return nil
}

func sourceName(p *Preset) string {
	if p.Name != "" {
		return "preset " + p.Name
	}
	return "config"
}

func firstNonZero[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

func firstNonEmpty[T any](values ...[]T) []T {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}
