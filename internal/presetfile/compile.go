package presetfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"

	"github.com/yacobolo/utilcss"
)

// Preset compiles the file into an engine preset. Static CSS is parsed once
// here; templated CSS is parsed per match.
func (f *File) Preset() (*utilcss.Preset, error) {
	p := &utilcss.Preset{
		Name:      f.Name,
		Layer:     f.Layer,
		Layers:    f.Layers,
		Theme:     utilcss.Theme(f.Theme),
		Safelist:  f.Safelist,
		Blocklist: compileBlocklist(f.Blocklist),
	}

	var errs error
	for i, spec := range f.Rules {
		rule, err := compileRule(spec)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rules[%d]: %w", i, err))
			continue
		}
		p.Rules = append(p.Rules, rule)
	}
	for _, spec := range f.Variants {
		p.Variants = append(p.Variants, compileVariant(spec))
	}
	for i, spec := range f.Shortcuts {
		sc, err := compileShortcut(spec)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("shortcuts[%d]: %w", i, err))
			continue
		}
		p.Shortcuts = append(p.Shortcuts, sc)
	}
	for _, spec := range f.Preflights {
		p.Preflights = append(p.Preflights, utilcss.Preflight{Layer: spec.Layer, CSS: spec.CSS})
	}
	if errs != nil {
		return nil, errs
	}
	return p, nil
}

func compileRule(spec RuleSpec) (utilcss.Rule, error) {
	meta := utilcss.RuleMeta{
		Layer:    spec.Layer,
		Sort:     spec.Sort,
		NoMerge:  spec.NoMerge,
		Internal: spec.Internal,
	}

	if spec.Match != "" {
		out := utilcss.RuleOutput{CSS: spec.Raw}
		if spec.CSS != "" {
			entries, err := ParseDeclarations(spec.CSS)
			if err != nil {
				return utilcss.Rule{}, fmt.Errorf("rule %q: %w", spec.Match, err)
			}
			out = utilcss.RuleOutput{Entries: entries}
		}
		return utilcss.Rule{
			Kind:    utilcss.RuleStatic,
			Key:     spec.Match,
			Outputs: []utilcss.RuleOutput{out},
			Meta:    meta,
		}, nil
	}

	re, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return utilcss.Rule{}, err
	}
	return utilcss.Rule{
		Kind:    utilcss.RuleDynamic,
		Pattern: re,
		Meta:    meta,
		Func: func(_ context.Context, m []string, _ *utilcss.RuleContext) ([]utilcss.RuleOutput, error) {
			if spec.Raw != "" {
				return []utilcss.RuleOutput{{CSS: expandTemplate(re, spec.Raw, m)}}, nil
			}
			entries, err := ParseDeclarations(expandTemplate(re, spec.CSS, m))
			if err != nil {
				return nil, err
			}
			return utilcss.Emit(entries), nil
		},
	}, nil
}

func compileVariant(spec VariantSpec) utilcss.Variant {
	h := utilcss.VariantHandler{
		Prefix:      spec.SelectorPrefix,
		Pseudo:      spec.Pseudo,
		Parent:      spec.Parent,
		ParentOrder: spec.ParentOrder,
		Layer:       spec.Layer,
	}
	if spec.Selector != "" {
		tmpl := spec.Selector
		h.Selector = func(selector string) string {
			return strings.ReplaceAll(tmpl, "&", selector)
		}
	}
	if spec.Important {
		h.Body = important
	}

	prefix := spec.Prefix
	if prefix == "" {
		prefix = spec.Name
	}
	v := utilcss.PrefixVariant(prefix, h)
	v.Name = spec.Name
	v.Order = spec.Order
	return v
}

func important(e utilcss.Entries) utilcss.Entries {
	out := e.Clone()
	for i := range out {
		if !strings.HasSuffix(out[i].Value, "!important") {
			out[i].Value += " !important"
		}
	}
	return out
}

func compileShortcut(spec ShortcutSpec) (utilcss.Shortcut, error) {
	meta := utilcss.RuleMeta{Layer: spec.Layer}
	if spec.Match != "" {
		return utilcss.StaticShortcut(spec.Match, spec.Expand, meta), nil
	}
	re, err := regexp.Compile(spec.Pattern)
	if err != nil {
		return utilcss.Shortcut{}, err
	}
	return utilcss.Shortcut{
		Kind:    utilcss.ShortcutDynamic,
		Pattern: re,
		Meta:    meta,
		Func: func(_ context.Context, m []string, _ *utilcss.RuleContext) ([]utilcss.ShortcutItem, error) {
			return utilcss.Expand(expandTemplate(re, spec.Expand, m)), nil
		},
	}, nil
}

// compileBlocklist treats "/.../" entries as regular expressions. Invalid
// expressions fall back to exact matching.
func compileBlocklist(entries []string) []utilcss.BlockRule {
	rules := make([]utilcss.BlockRule, 0, len(entries))
	for _, e := range entries {
		if len(e) > 2 && strings.HasPrefix(e, "/") && strings.HasSuffix(e, "/") {
			if re, err := regexp.Compile(e[1 : len(e)-1]); err == nil {
				rules = append(rules, utilcss.BlockRule{Pattern: re})
				continue
			}
		}
		rules = append(rules, utilcss.BlockRule{Token: e})
	}
	return rules
}

// expandTemplate substitutes capture groups of the match into tmpl.
func expandTemplate(re *regexp.Regexp, tmpl string, m []string) string {
	if len(m) == 0 {
		return tmpl
	}
	idx := re.FindStringSubmatchIndex(m[0])
	if idx == nil {
		return tmpl
	}
	return string(re.ExpandString(nil, tmpl, m[0], idx))
}

// ParseDeclarations parses "prop: value; ..." into ordered entries.
func ParseDeclarations(text string) (utilcss.Entries, error) {
	var entries utilcss.Entries
	p := css.NewParser(parse.NewInputString(text), true)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("invalid declarations %q: %w", text, err)
			}
			return entries, nil
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			var value strings.Builder
			for _, v := range p.Values() {
				value.Write(v.Data)
			}
			entries = append(entries, utilcss.Entry{
				Prop:  string(data),
				Value: strings.TrimSpace(value.String()),
			})
		case css.BeginRulesetGrammar, css.BeginAtRuleGrammar, css.QualifiedRuleGrammar, css.AtRuleGrammar:
			return nil, fmt.Errorf("invalid declarations %q: only declarations are allowed", text)
		}
	}
}
