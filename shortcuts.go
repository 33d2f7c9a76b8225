package utilcss

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

// expandShortcut looks token up as a shortcut and expands it recursively.
// ok is false when token is not a shortcut.
func (s *snapshot) expandShortcut(ctx context.Context, token string, depth int) ([]ShortcutItem, RuleMeta, bool, error) {
	items, meta, ok, err := s.lookupShortcut(ctx, token)
	if err != nil {
		return nil, RuleMeta{}, false, err
	}
	if !ok {
		return s.expandVariantShortcut(ctx, token, depth)
	}
	if depth >= s.config.MaxShortcutDepth {
		return nil, RuleMeta{}, false, stageError(StageShortcut, token,
			fmt.Errorf("%w: more than %d levels", ErrShortcutDepth, s.config.MaxShortcutDepth))
	}

	var out []ShortcutItem
	for _, item := range items {
		if item.Token == "" {
			out = append(out, item)
			continue
		}
		sub, _, found, err := s.expandShortcut(ctx, item.Token, depth+1)
		if err != nil {
			return nil, RuleMeta{}, false, err
		}
		if found {
			out = append(out, sub...)
		} else {
			out = append(out, item)
		}
	}
	return uniqueItems(out), meta, true, nil
}

// lookupShortcut checks the static map, then dynamic shortcuts latest first.
func (s *snapshot) lookupShortcut(ctx context.Context, token string) ([]ShortcutItem, RuleMeta, bool, error) {
	cfg := s.config
	if sc, ok := cfg.StaticShortcuts[token]; ok {
		return sc.Items, sc.Meta, true, nil
	}

	for i := len(cfg.DynamicShortcuts) - 1; i >= 0; i-- {
		sc := cfg.DynamicShortcuts[i]
		input := token
		if sc.Meta.Prefix != "" {
			if !strings.HasPrefix(input, sc.Meta.Prefix) {
				continue
			}
			input = input[len(sc.Meta.Prefix):]
		}
		match := sc.Pattern.FindStringSubmatch(input)
		if match == nil {
			continue
		}
		rctx := &RuleContext{Raw: token, Current: token, Theme: cfg.Theme, Generator: s.gen}
		items, err := sc.Func(ctx, match, rctx)
		if err != nil {
			return nil, RuleMeta{}, false, stageError(StageShortcut, token, fmt.Errorf("shortcut %s: %w", sc.Pattern, err))
		}
		if len(items) == 0 {
			continue
		}
		return items, sc.Meta, true, nil
	}
	return nil, RuleMeta{}, false, nil
}

// expandVariantShortcut strips the variants of token, expands the base and
// puts the variant prefix back on every token item.
func (s *snapshot) expandVariantShortcut(ctx context.Context, token string, depth int) ([]ShortcutItem, RuleMeta, bool, error) {
	matches, err := s.matchVariants(ctx, token)
	if err != nil {
		return nil, RuleMeta{}, false, err
	}
	if len(matches) == 0 {
		return nil, RuleMeta{}, false, nil
	}
	base := matches[0].Matcher
	if base == token || !strings.HasSuffix(token, base) {
		return nil, RuleMeta{}, false, nil
	}
	prefix := token[:len(token)-len(base)]

	items, meta, ok, err := s.expandShortcut(ctx, base, depth+1)
	if err != nil || !ok {
		return nil, RuleMeta{}, false, err
	}
	out := make([]ShortcutItem, len(items))
	for i, item := range items {
		if item.Token != "" {
			item.Token = prefix + item.Token
		}
		out[i] = item
	}
	return out, meta, true, nil
}

func uniqueItems(items []ShortcutItem) []ShortcutItem {
	seen := map[string]bool{}
	out := items[:0:0]
	for _, item := range items {
		if item.Token != "" {
			if seen[item.Token] {
				continue
			}
			seen[item.Token] = true
		}
		out = append(out, item)
	}
	return out
}

type shortcutGroupKey struct {
	layer    string
	selector string
	parent   string
}

type shortcutBlock struct {
	key         shortcutGroupKey
	index       int
	sort        int
	parentOrder int
	entries     Entries
	noMerge     bool
	css         string
}

// stringifyShortcut renders the expansion of a shortcut under the shortcut
// token's selector and variants. Items sharing (layer, selector, parent)
// merge into one block unless they opt out with NoMerge.
func (s *snapshot) stringifyShortcut(ctx context.Context, vm VariantMatch, items []ShortcutItem, meta RuleMeta) ([]StringifiedUtil, error) {
	var parsed []parsedUtil
	for _, item := range items {
		if item.Token == "" {
			if len(item.Entries) > 0 {
				parsed = append(parsed, parsedUtil{index: math.MaxInt, entries: item.Entries.Clone()})
			}
			continue
		}
		utils, err := s.parseUtil(ctx, item.Token, true)
		if err != nil {
			return nil, err
		}
		if len(utils) == 0 {
			s.log.Debug().Str("shortcut", vm.Raw).Str("utility", item.Token).Msg("unmatched utility in shortcut")
			continue
		}
		parsed = append(parsed, utils...)
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].index < parsed[j].index
	})

	layer := firstNonZero(meta.Layer, s.config.ShortcutsLayer)
	var blocks []*shortcutBlock
	groups := map[shortcutGroupKey]*shortcutBlock{}

	for _, p := range parsed {
		if p.css != "" {
			blocks = append(blocks, &shortcutBlock{index: p.index, css: p.css, noMerge: true, key: shortcutGroupKey{layer: layer}})
			continue
		}
		handlers := append(append([]VariantHandler(nil), vm.Handlers...), p.handlers...)
		u := UtilObject{
			Selector: ToEscapedSelector(vm.Raw),
			Entries:  p.entries,
			Layer:    layer,
			Sort:     p.meta.Sort,
		}
		s.composeVariants(&u, handlers)
		key := shortcutGroupKey{layer: u.Layer, selector: u.Selector, parent: u.Parent}

		if u.NoMerge || p.noMerge || p.meta.NoMerge {
			blocks = append(blocks, &shortcutBlock{
				key: key, index: p.index, sort: u.Sort, parentOrder: u.ParentOrder,
				entries: u.Entries, noMerge: true,
			})
			continue
		}
		if g, ok := groups[key]; ok {
			g.entries = append(g.entries, u.Entries...)
			g.sort = max(g.sort, u.Sort)
			continue
		}
		g := &shortcutBlock{key: key, index: p.index, sort: u.Sort, parentOrder: u.ParentOrder, entries: u.Entries.Clone()}
		groups[key] = g
		blocks = append(blocks, g)
	}

	out := make([]StringifiedUtil, 0, len(blocks))
	for _, b := range blocks {
		su := StringifiedUtil{
			Index:       b.index,
			Selector:    b.key.selector,
			Parent:      b.key.parent,
			ParentOrder: b.parentOrder,
			Layer:       b.key.layer,
			Sort:        b.sort,
			NoMerge:     b.noMerge,
			Raw:         vm.Raw,
		}
		if b.css != "" {
			su.Body = b.css
		} else {
			su.Body = b.entries.CSS()
		}
		if su.Body == "" {
			continue
		}
		out = append(out, su)
	}
	return out, nil
}
