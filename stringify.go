package utilcss

import (
	"context"
)

// stringifyUtil composes a matched rule output with its variants.
func (s *snapshot) stringifyUtil(p parsedUtil, raw string) (StringifiedUtil, bool) {
	layer := firstNonZero(p.meta.Layer, LayerDefault)
	if p.css != "" {
		return StringifiedUtil{
			Index:   p.index,
			Body:    p.css,
			Layer:   layer,
			Sort:    p.meta.Sort,
			NoMerge: true,
			Raw:     raw,
		}, true
	}

	u := UtilObject{
		Selector: ToEscapedSelector(raw),
		Entries:  p.entries,
		Layer:    layer,
		Sort:     p.meta.Sort,
		NoMerge:  p.meta.NoMerge,
	}
	s.composeVariants(&u, p.handlers)
	body := u.Entries.CSS()
	if body == "" {
		return StringifiedUtil{}, false
	}
	return StringifiedUtil{
		Index:       p.index,
		Selector:    u.Selector,
		Body:        body,
		Parent:      u.Parent,
		ParentOrder: u.ParentOrder,
		Layer:       u.Layer,
		Sort:        u.Sort,
		NoMerge:     u.NoMerge,
		Raw:         raw,
	}, true
}

// resolveToken runs the full pipeline for one token: variants, rules and,
// when no rule matches, shortcuts. A nil result means unmatched.
func (s *snapshot) resolveToken(ctx context.Context, raw string) ([]StringifiedUtil, error) {
	matches, err := s.matchVariants(ctx, raw)
	if err != nil {
		return nil, err
	}

	var out []StringifiedUtil
	for _, vm := range matches {
		parsed, err := s.matchRules(ctx, vm, false)
		if err != nil {
			return nil, err
		}
		if len(parsed) > 0 {
			for _, p := range parsed {
				if su, ok := s.stringifyUtil(p, raw); ok {
					out = append(out, su)
				}
			}
			continue
		}

		items, meta, ok, err := s.expandShortcut(ctx, vm.Matcher, 0)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		utils, err := s.stringifyShortcut(ctx, vm, items, meta)
		if err != nil {
			return nil, err
		}
		out = append(out, utils...)
	}

	out = uniqueUtils(out)
	for i := range out {
		out[i].Seq = i
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// uniqueUtils drops identical outputs produced by different variant branches.
func uniqueUtils(utils []StringifiedUtil) []StringifiedUtil {
	type key struct {
		layer, parent, selector, body string
	}
	seen := map[key]bool{}
	out := utils[:0:0]
	for _, u := range utils {
		k := key{u.Layer, u.Parent, u.Selector, u.Body}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, u)
	}
	return out
}
