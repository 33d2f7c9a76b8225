package utilcss

import (
	"cmp"
	"slices"
	"sort"
	"strings"
)

// renderOptions carries the Generate options the renderer needs.
type renderOptions struct {
	minify bool
	scope  string
}

func (o renderOptions) nl() string {
	if o.minify {
		return ""
	}
	return "\n"
}

// compareUtils orders utils by (Sort, Index, Selector, Seq, Body).
func compareUtils(a, b StringifiedUtil) int {
	if c := cmp.Compare(a.Sort, b.Sort); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Index, b.Index); c != 0 {
		return c
	}
	if c := strings.Compare(a.Selector, b.Selector); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Seq, b.Seq); c != 0 {
		return c
	}
	return strings.Compare(a.Body, b.Body)
}

type ruleBlock struct {
	selectors []StringifiedUtil // Members whose selectors render together
	body      string
	noMerge   bool
	raw       bool
}

// renderLayer renders the utils of one layer grouped by parent.
func (s *snapshot) renderLayer(utils []StringifiedUtil, opts renderOptions) string {
	type parentGroup struct {
		parent string
		order  int
		utils  []StringifiedUtil
	}
	groups := map[string]*parentGroup{}
	var order []*parentGroup
	for _, u := range utils {
		g, ok := groups[u.Parent]
		if !ok {
			g = &parentGroup{parent: u.Parent, order: u.ParentOrder}
			groups[u.Parent] = g
			order = append(order, g)
		}
		if u.ParentOrder != 0 && (g.order == 0 || u.ParentOrder < g.order) {
			g.order = u.ParentOrder
		}
		g.utils = append(g.utils, u)
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if (a.parent == "") != (b.parent == "") {
			return a.parent == ""
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.parent < b.parent
	})

	nl := opts.nl()
	out := make([]string, 0, len(order))
	for _, g := range order {
		slices.SortStableFunc(g.utils, compareUtils)
		blocks := mergeBlocks(g.utils)
		if s.config.MergeSelectors {
			blocks = mergeIdenticalBodies(blocks)
		}

		rules := make([]string, 0, len(blocks))
		for _, b := range blocks {
			rules = append(rules, renderBlock(b, opts))
		}
		css := strings.Join(rules, nl)
		if g.parent == "" {
			out = append(out, css)
			continue
		}
		parents := strings.Split(g.parent, parentSeparator)
		out = append(out, strings.Join(parents, "{")+"{"+nl+css+nl+"}"+strings.Repeat("}", len(parents)-1))
	}
	return strings.Join(out, nl)
}

// mergeBlocks concatenates bodies of utils sharing a selector, keeping NoMerge
// utils and raw CSS as their own blocks.
func mergeBlocks(utils []StringifiedUtil) []*ruleBlock {
	var blocks []*ruleBlock
	bySelector := map[string]*ruleBlock{}
	for _, u := range utils {
		switch {
		case u.Selector == "":
			blocks = append(blocks, &ruleBlock{body: u.Body, raw: true, noMerge: true})
		case u.NoMerge:
			blocks = append(blocks, &ruleBlock{selectors: []StringifiedUtil{u}, body: u.Body, noMerge: true})
		default:
			if b, ok := bySelector[u.Selector]; ok {
				b.body += u.Body
				continue
			}
			b := &ruleBlock{selectors: []StringifiedUtil{u}, body: u.Body}
			bySelector[u.Selector] = b
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// mergeIdenticalBodies joins the selectors of blocks with identical bodies
// into the later block.
func mergeIdenticalBodies(blocks []*ruleBlock) []*ruleBlock {
	out := make([]*ruleBlock, 0, len(blocks))
	for i, b := range blocks {
		if b.noMerge {
			out = append(out, b)
			continue
		}
		merged := false
		for _, later := range blocks[i+1:] {
			if !later.noMerge && later.body == b.body {
				later.selectors = append(later.selectors, b.selectors...)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, b)
		}
	}
	return out
}

func renderBlock(b *ruleBlock, opts renderOptions) string {
	if b.raw {
		return b.body
	}
	members := append([]StringifiedUtil(nil), b.selectors...)
	slices.SortStableFunc(members, func(x, y StringifiedUtil) int {
		if c := cmp.Compare(x.Sort, y.Sort); c != 0 {
			return c
		}
		return strings.Compare(x.Selector, y.Selector)
	})
	selectors := make([]string, 0, len(members))
	for i, m := range members {
		if i > 0 && m.Selector == members[i-1].Selector {
			continue
		}
		selectors = append(selectors, applyScope(m.Selector, opts.scope))
	}
	return strings.Join(selectors, ","+opts.nl()) + "{" + b.body + "}"
}

func applyScope(selector, scope string) string {
	if scope == "" {
		return selector
	}
	return scope + " " + selector
}
