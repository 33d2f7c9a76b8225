package utilcss

import (
	"context"
	"slices"
	"sort"
	"strings"
)

// maxVariantHandlers caps the handlers applied on one resolution branch.
const maxVariantHandlers = 500

// parentSeparator joins nested parents, outermost first.
const parentSeparator = " $$ "

// VariantMatch is one terminal outcome of variant resolution.
type VariantMatch struct {
	Raw      string           // Input token
	Matcher  string           // Residual token left for rule matching
	Handlers []VariantHandler // Applied handlers in textual order, outermost first
	Variants []string         // Names of the variants that fired
}

type visitKey struct {
	variant int
	matcher string
}

type variantBranch struct {
	matcher  string
	handlers []VariantHandler
	names    []string
	used     map[int]bool
	visited  map[visitKey]bool
}

func (b *variantBranch) fork() *variantBranch {
	child := &variantBranch{
		matcher:  b.matcher,
		handlers: append([]VariantHandler(nil), b.handlers...),
		names:    append([]string(nil), b.names...),
		used:     make(map[int]bool, len(b.used)+1),
		visited:  make(map[visitKey]bool, len(b.visited)+1),
	}
	for k, v := range b.used {
		child.used[k] = v
	}
	for k, v := range b.visited {
		child.visited[k] = v
	}
	return child
}

// matchVariants peels variants off raw with an explicit worklist. Each step
// tries variants in registration order; the first one that makes progress
// consumes the step. Several handlers fan the branch out. Terminal branches
// are returned in depth-first order.
func (s *snapshot) matchVariants(ctx context.Context, raw string) ([]VariantMatch, error) {
	vctx := &VariantContext{
		Raw:        raw,
		Theme:      s.config.Theme,
		Separators: s.config.Separators,
		Generator:  s.gen,
	}

	stack := []*variantBranch{{
		matcher: raw,
		used:    map[int]bool{},
		visited: map[visitKey]bool{},
	}}
	var out []VariantMatch

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		next, err := s.stepVariants(ctx, b, vctx)
		if err != nil {
			return nil, stageError(StageVariant, raw, err)
		}
		if next == nil {
			out = append(out, VariantMatch{
				Raw:      raw,
				Matcher:  b.matcher,
				Handlers: b.handlers,
				Variants: b.names,
			})
			continue
		}
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}
	return out, nil
}

// stepVariants applies the first variant that makes progress on b and
// returns the resulting branches, or nil when b is terminal.
func (s *snapshot) stepVariants(ctx context.Context, b *variantBranch, vctx *VariantContext) ([]*variantBranch, error) {
	for i, v := range s.config.Variants {
		if !v.MultiPass && b.used[i] {
			continue
		}
		key := visitKey{variant: i, matcher: b.matcher}
		if b.visited[key] {
			continue
		}

		handlers, err := v.Match(ctx, b.matcher, vctx)
		if err != nil {
			return nil, err
		}
		var progressed []VariantHandler
		for _, h := range handlers {
			if h.Matcher == "" || h.Matcher == b.matcher {
				continue
			}
			if h.Order == 0 {
				h.Order = v.Order
			}
			h.defaultSort = i + 1
			progressed = append(progressed, h)
		}
		if len(progressed) == 0 {
			continue
		}
		if len(b.handlers) >= maxVariantHandlers {
			return nil, ErrTooManyVariants
		}

		children := make([]*variantBranch, 0, len(progressed))
		for _, h := range progressed {
			child := b.fork()
			child.matcher = h.Matcher
			child.handlers = append(child.handlers, h)
			child.names = append(child.names, v.Name)
			child.used[i] = true
			child.visited[key] = true
			children = append(children, child)
		}
		return children, nil
	}
	return nil, nil
}

// composeVariants applies handlers to a util. Handlers are stably sorted by
// Order and applied outermost first. When neither the rule nor a handler sets
// Sort, the util takes the highest registration position of its variants.
func (s *snapshot) composeVariants(u *UtilObject, handlers []VariantHandler) {
	ordered := append([]VariantHandler(nil), handlers...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	var prefix strings.Builder
	var pseudoClasses, pseudoElements []string
	var parents []string
	explicitSort, fallbackSort := u.Sort != 0, 0
	if u.Parent != "" {
		parents = append(parents, u.Parent)
	}

	for _, h := range ordered {
		if h.Body != nil {
			u.Entries = h.Body(u.Entries)
		}
		prefix.WriteString(h.Prefix)
		if h.Selector != nil {
			u.Selector = h.Selector(u.Selector)
		}
		if h.Pseudo != "" && !slices.Contains(pseudoClasses, h.Pseudo) && !slices.Contains(pseudoElements, h.Pseudo) {
			if isPseudoElement(h.Pseudo) {
				pseudoElements = append(pseudoElements, h.Pseudo)
			} else {
				pseudoClasses = append(pseudoClasses, h.Pseudo)
			}
		}
		if h.Parent != "" {
			parents = append(parents, h.Parent)
		}
		if h.ParentOrder != 0 {
			u.ParentOrder = h.ParentOrder
		}
		if h.Layer != "" {
			u.Layer = h.Layer
		}
		if h.Sort != 0 {
			u.Sort = h.Sort
			explicitSort = true
		}
		fallbackSort = max(fallbackSort, h.defaultSort)
		if h.NoMerge {
			u.NoMerge = true
		}
	}

	if !explicitSort {
		u.Sort = fallbackSort
	}

	u.Selector = prefix.String() + u.Selector + strings.Join(pseudoClasses, "") + strings.Join(pseudoElements, "")
	u.Parent = strings.Join(parents, parentSeparator)

	for _, pp := range s.config.Postprocess {
		pp(u)
	}
}

var legacyPseudoElements = map[string]bool{
	":before":       true,
	":after":        true,
	":first-line":   true,
	":first-letter": true,
}

func isPseudoElement(pseudo string) bool {
	return strings.HasPrefix(pseudo, "::") || legacyPseudoElements[pseudo]
}

// StripVariantPrefix removes "<name><sep>" from matcher for any of seps.
func StripVariantPrefix(matcher, name string, seps []string) (string, bool) {
	if !strings.HasPrefix(matcher, name) {
		return "", false
	}
	rest := matcher[len(name):]
	for _, sep := range seps {
		if strings.HasPrefix(rest, sep) && len(rest) > len(sep) {
			return rest[len(sep):], true
		}
	}
	return "", false
}

// PrefixVariant matches "<name><sep>" and applies handler to the rest.
func PrefixVariant(name string, handler VariantHandler) Variant {
	return Variant{
		Name:         name,
		Autocomplete: []string{name + ":"},
		Match: func(_ context.Context, matcher string, vctx *VariantContext) ([]VariantHandler, error) {
			rest, ok := StripVariantPrefix(matcher, name, vctx.Separators)
			if !ok {
				return nil, nil
			}
			h := handler
			h.Matcher = rest
			return []VariantHandler{h}, nil
		},
	}
}

// PseudoVariant maps "<name>:" to a pseudo-class or pseudo-element suffix.
func PseudoVariant(name, pseudo string) Variant {
	return PrefixVariant(name, VariantHandler{Pseudo: pseudo})
}

// ParentVariant wraps matches in an at-rule.
func ParentVariant(name, parent string, parentOrder int) Variant {
	return PrefixVariant(name, VariantHandler{Parent: parent, ParentOrder: parentOrder})
}

// SelectorPrefixVariant places a selector fragment before the class, e.g.
// ".dark " for dark mode.
func SelectorPrefixVariant(name, selectorPrefix string, order int) Variant {
	v := PrefixVariant(name, VariantHandler{Prefix: selectorPrefix})
	v.Order = order
	return v
}
