package utilcss

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// controlOrder keeps rule controls innermost.
const controlOrder = math.MaxInt32

// parsedUtil is one rule output bound to the variant match that produced it.
type parsedUtil struct {
	index    int
	entries  Entries
	css      string // Raw CSS output, rendered as-is
	meta     RuleMeta
	handlers []VariantHandler // Variant handlers plus rule controls, innermost last
	noMerge  bool             // Controls.NoMerge, only meaningful inside shortcuts
}

// matchRules finds every rule that matches the residual token of vm.
// Static rules are looked up first, then dynamic rules in registration order.
func (s *snapshot) matchRules(ctx context.Context, vm VariantMatch, internal bool) ([]parsedUtil, error) {
	cfg := s.config
	var out []parsedUtil

	if r, ok := cfg.StaticRules[vm.Matcher]; ok && (internal || !r.Meta.Internal) {
		out = append(out, bindOutputs(r, r.Outputs, vm)...)
	}

	var rctx *RuleContext
	for _, r := range cfg.DynamicRules {
		if r.Meta.Internal && !internal {
			continue
		}
		input := vm.Matcher
		if r.Meta.Prefix != "" {
			if !strings.HasPrefix(input, r.Meta.Prefix) {
				continue
			}
			input = input[len(r.Meta.Prefix):]
		}
		match := r.Pattern.FindStringSubmatch(input)
		if match == nil {
			continue
		}
		if rctx == nil {
			rctx = s.ruleContext(vm)
		}
		outputs, err := r.Func(ctx, match, rctx)
		if err != nil {
			return nil, stageError(StageRule, vm.Raw, fmt.Errorf("rule %s: %w", r.Pattern, err))
		}
		out = append(out, bindOutputs(r, outputs, vm)...)
	}
	return out, nil
}

func (s *snapshot) ruleContext(vm VariantMatch) *RuleContext {
	return &RuleContext{
		Raw:             vm.Raw,
		Current:         vm.Matcher,
		Theme:           s.config.Theme,
		Generator:       s.gen,
		VariantHandlers: vm.Handlers,
		Variants:        vm.Variants,
	}
}

func bindOutputs(r *ResolvedRule, outputs []RuleOutput, vm VariantMatch) []parsedUtil {
	out := make([]parsedUtil, 0, len(outputs))
	for _, o := range outputs {
		p := parsedUtil{index: r.Index, meta: r.Meta}
		switch {
		case o.CSS != "":
			p.css = o.CSS
		case len(o.Entries) > 0:
			p.entries = o.Entries.Clone()
			p.handlers = append(append([]VariantHandler(nil), vm.Handlers...), controlHandlers(o.Controls)...)
			if o.Controls != nil {
				p.noMerge = o.Controls.NoMerge
			}
		default:
			continue
		}
		out = append(out, p)
	}
	return out
}

// controlHandlers turns rule controls into innermost variant handlers.
func controlHandlers(c *Controls) []VariantHandler {
	if c == nil {
		return nil
	}
	out := append([]VariantHandler(nil), c.Variants...)
	if c.Parent != "" || c.ParentOrder != 0 || c.Selector != nil || c.Layer != "" || c.Sort != 0 {
		out = append(out, VariantHandler{
			Parent:      c.Parent,
			ParentOrder: c.ParentOrder,
			Selector:    c.Selector,
			Layer:       c.Layer,
			Sort:        c.Sort,
			Order:       controlOrder,
		})
	}
	return out
}

// parseUtil resolves variants of token and matches rules for every branch.
func (s *snapshot) parseUtil(ctx context.Context, token string, internal bool) ([]parsedUtil, error) {
	matches, err := s.matchVariants(ctx, token)
	if err != nil {
		return nil, err
	}
	var out []parsedUtil
	for _, vm := range matches {
		utils, err := s.matchRules(ctx, vm, internal)
		if err != nil {
			return nil, err
		}
		out = append(out, utils...)
	}
	return out, nil
}
