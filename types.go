package utilcss

import (
	"context"
	"regexp"
	"strings"
)

// Entry is a single CSS declaration
type Entry struct {
	Prop  string
	Value string
}

// Entries is an ordered list of declarations
type Entries []Entry

// Decl builds Entries from alternating property/value pairs.
func Decl(pairs ...string) Entries {
	out := make(Entries, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Entry{Prop: pairs[i], Value: pairs[i+1]})
	}
	return out
}

// Clone returns a copy that can be modified without touching e.
func (e Entries) Clone() Entries {
	if e == nil {
		return nil
	}
	out := make(Entries, len(e))
	copy(out, e)
	return out
}

// CSS renders the entries as a declaration body. Empty values are dropped.
func (e Entries) CSS() string {
	var b strings.Builder
	for _, en := range e {
		if en.Prop == "" || en.Value == "" {
			continue
		}
		b.WriteString(en.Prop)
		b.WriteByte(':')
		b.WriteString(en.Value)
		b.WriteByte(';')
	}
	return b.String()
}

// RuleKind tags the two rule forms
type RuleKind int

const (
	RuleStatic RuleKind = iota
	RuleDynamic
)

// RuleMeta carries optional rule settings
type RuleMeta struct {
	Layer        string   // Output layer, empty means the preset or default layer
	Prefix       string   // Fixed token prefix the rule requires and strips
	Sort         int      // Sort key within a layer
	NoMerge      bool     // Never merge this rule's block with siblings
	Internal     bool     // Only reachable from shortcuts
	Autocomplete []string // Hints for tooling, stored as-is
}

// Controls lets a rule output steer how it is rendered without a variant.
type Controls struct {
	Parent      string
	ParentOrder int
	Selector    func(selector string) string
	Layer       string
	Sort        int
	Variants    []VariantHandler
	NoMerge     bool // Keep this output out of merged shortcut blocks
}

// RuleOutput is one result of a rule: declarations or raw CSS text.
type RuleOutput struct {
	Entries  Entries
	CSS      string
	Controls *Controls
}

// Emit wraps declaration lists as rule outputs.
func Emit(entries ...Entries) []RuleOutput {
	out := make([]RuleOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, RuleOutput{Entries: e})
	}
	return out
}

// RuleContext is handed to dynamic rules and shortcuts
type RuleContext struct {
	Raw             string // Full token including variants
	Current         string // Token after variants were stripped
	Theme           Theme
	Generator       *Generator
	VariantHandlers []VariantHandler
	Variants        []string // Names of the variants that matched
}

// RuleFunc produces outputs for a dynamic rule match. Returning no outputs
// means no match.
type RuleFunc func(ctx context.Context, match []string, rctx *RuleContext) ([]RuleOutput, error)

// Rule maps a token to CSS. Static rules match Key exactly, dynamic rules
// match Pattern and call Func.
type Rule struct {
	Kind    RuleKind
	Key     string
	Outputs []RuleOutput
	Pattern *regexp.Regexp
	Func    RuleFunc
	Meta    RuleMeta
}

// StaticRule builds a rule matching key exactly.
func StaticRule(key string, entries Entries, meta ...RuleMeta) Rule {
	r := Rule{Kind: RuleStatic, Key: key, Outputs: Emit(entries)}
	if len(meta) > 0 {
		r.Meta = meta[0]
	}
	return r
}

// DynamicRule builds a pattern rule. It panics if pattern does not compile.
func DynamicRule(pattern string, fn RuleFunc, meta ...RuleMeta) Rule {
	r := Rule{Kind: RuleDynamic, Pattern: regexp.MustCompile(pattern), Func: fn}
	if len(meta) > 0 {
		r.Meta = meta[0]
	}
	return r
}

// id identifies a rule for registration dedupe
func (r Rule) id() string {
	if r.Kind == RuleStatic {
		return "s:" + r.Meta.Prefix + r.Key
	}
	if r.Pattern == nil {
		return ""
	}
	return "d:" + r.Meta.Prefix + r.Pattern.String()
}

// VariantContext is handed to variant match functions
type VariantContext struct {
	Raw        string
	Theme      Theme
	Separators []string
	Generator  *Generator
}

// VariantMatchFunc returns the handlers a variant produces for matcher, or
// none when it does not apply. Several handlers fan resolution out.
type VariantMatchFunc func(ctx context.Context, matcher string, vctx *VariantContext) ([]VariantHandler, error)

// Variant strips a prefix (or suffix) from a token and contributes a transform.
type Variant struct {
	Name         string
	Match        VariantMatchFunc
	MultiPass    bool // May fire more than once on the same branch
	Order        int  // Default handler order when the handler leaves it at zero
	Autocomplete []string
}

// VariantHandler is one transform produced by a variant.
type VariantHandler struct {
	Matcher     string // Residual token to keep resolving
	Prefix      string // Selector fragment placed before the selector
	Selector    func(selector string) string
	Pseudo      string // ":hover" or "::before"
	Parent      string // Wrapping at-rule, e.g. "@media (min-width: 640px)"
	ParentOrder int
	Layer       string
	Sort        int
	Order       int // Lower is outer
	NoMerge     bool
	Body        func(Entries) Entries

	defaultSort int // Registration position of the variant, used when Sort is unset
}

// ShortcutKind tags the two shortcut forms
type ShortcutKind int

const (
	ShortcutStatic ShortcutKind = iota
	ShortcutDynamic
)

// ShortcutItem is one piece of an expansion: a token or literal entries.
type ShortcutItem struct {
	Token   string
	Entries Entries
}

// Expand splits a whitespace separated expansion into items.
func Expand(expansion string) []ShortcutItem {
	fields := strings.Fields(expansion)
	out := make([]ShortcutItem, 0, len(fields))
	for _, f := range fields {
		out = append(out, ShortcutItem{Token: f})
	}
	return out
}

// ShortcutFunc expands a dynamic shortcut match
type ShortcutFunc func(ctx context.Context, match []string, rctx *RuleContext) ([]ShortcutItem, error)

// Shortcut is a macro expanding to further tokens or declarations.
type Shortcut struct {
	Kind    ShortcutKind
	Key     string
	Items   []ShortcutItem
	Pattern *regexp.Regexp
	Func    ShortcutFunc
	Meta    RuleMeta
}

// StaticShortcut maps key to a whitespace separated expansion.
func StaticShortcut(key, expansion string, meta ...RuleMeta) Shortcut {
	return StaticShortcutItems(key, Expand(expansion), meta...)
}

// StaticShortcutItems maps key to an explicit item list.
func StaticShortcutItems(key string, items []ShortcutItem, meta ...RuleMeta) Shortcut {
	s := Shortcut{Kind: ShortcutStatic, Key: key, Items: items}
	if len(meta) > 0 {
		s.Meta = meta[0]
	}
	return s
}

// DynamicShortcut builds a pattern shortcut. It panics if pattern does not compile.
func DynamicShortcut(pattern string, fn ShortcutFunc, meta ...RuleMeta) Shortcut {
	s := Shortcut{Kind: ShortcutDynamic, Pattern: regexp.MustCompile(pattern), Func: fn}
	if len(meta) > 0 {
		s.Meta = meta[0]
	}
	return s
}

func (s Shortcut) id() string {
	if s.Kind == ShortcutStatic {
		return "s:" + s.Meta.Prefix + s.Key
	}
	if s.Pattern == nil {
		return ""
	}
	return "d:" + s.Meta.Prefix + s.Pattern.String()
}

// PreflightContext is handed to preflight functions
type PreflightContext struct {
	Theme     Theme
	Generator *Generator
}

// Preflight is global CSS emitted once per generation.
type Preflight struct {
	Layer string // Defaults to "preflights"
	CSS   string
	Func  func(ctx context.Context, pctx *PreflightContext) (string, error)
}

// BlockRule excludes tokens by exact value or pattern
type BlockRule struct {
	Token   string
	Pattern *regexp.Regexp
}

func (b BlockRule) matches(token string) bool {
	if b.Pattern != nil {
		return b.Pattern.MatchString(token)
	}
	return b.Token == token
}

// UtilObject is a composed utility handed to postprocessors before it is
// stringified.
type UtilObject struct {
	Selector    string
	Entries     Entries
	Parent      string
	ParentOrder int
	Layer       string
	Sort        int
	NoMerge     bool
}

// Postprocessor mutates a composed utility in place
type Postprocessor func(util *UtilObject)

// Preset bundles rules, variants, shortcuts and theme data.
type Preset struct {
	Name           string
	Presets        []*Preset
	Rules          []Rule
	Variants       []Variant
	Shortcuts      []Shortcut
	Theme          Theme
	Preflights     []Preflight
	Layers         map[string]int
	Layer          string // Default layer for this preset's rules and shortcuts
	Extractors     []Extractor
	Safelist       []string
	Blocklist      []BlockRule
	Postprocess    []Postprocessor
	ConfigResolved func(*ResolvedConfig)
}

// UserConfig is the configuration a generator is built from.
type UserConfig struct {
	Presets        []*Preset
	Rules          []Rule
	Variants       []Variant
	Shortcuts      []Shortcut
	Theme          Theme
	Preflights     []Preflight
	Layers         map[string]int
	Extractors     []Extractor
	Safelist       []string
	Blocklist      []BlockRule
	Postprocess    []Postprocessor
	ConfigResolved func(*ResolvedConfig)

	Separators       []string // Variant separators, default ":" and "-"
	ShortcutsLayer   string   // Default "shortcuts"
	MaxShortcutDepth int      // Default 16
	MergeSelectors   *bool    // Default true
	IsolateErrors    bool     // Skip failing tokens instead of failing Generate
	Concurrency      int      // Token fan-out limit, 0 means unlimited
}

// StringifiedUtil is the canonical rendered unit of a token.
type StringifiedUtil struct {
	Index       int // Rule registration index
	Selector    string
	Body        string
	Parent      string
	ParentOrder int
	Layer       string
	Sort        int
	NoMerge     bool
	Seq         int    // Position among the token's outputs
	Raw         string // Token that produced it
}
