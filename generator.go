package utilcss

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// snapshot binds a resolved config to its token cache. A Generate call uses
// one snapshot from start to finish.
type snapshot struct {
	gen     *Generator
	config  *ResolvedConfig
	cache   *tokenCache
	version uint64
	log     zerolog.Logger
}

func (s *snapshot) blocked(token string) bool {
	for _, b := range s.config.Blocklist {
		if b.matches(token) {
			return true
		}
	}
	return false
}

// parseToken resolves token through the cache.
func (s *snapshot) parseToken(ctx context.Context, token string) ([]StringifiedUtil, error) {
	if token == "" || s.blocked(token) {
		return nil, nil
	}
	return s.cache.resolve(ctx, token, s.resolveToken)
}

// Generator compiles utility tokens into CSS. It is safe for concurrent use.
type Generator struct {
	state       atomic.Pointer[snapshot]
	mu          sync.Mutex
	log         zerolog.Logger
	events      *eventBus
	defaults    UserConfig
	concurrency int
}

// Option configures a Generator
type Option func(*Generator)

// WithLogger sets the logger, the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// WithDefaults sets the config merged under every config passed to New.
func WithDefaults(defaults UserConfig) Option {
	return func(g *Generator) { g.defaults = defaults }
}

// WithConcurrency bounds how many tokens resolve at once, overriding the
// config setting. Zero or less means unlimited.
func WithConcurrency(n int) Option {
	return func(g *Generator) { g.concurrency = n }
}

// New resolves config and returns a ready generator.
func New(config UserConfig, opts ...Option) (*Generator, error) {
	g := &Generator{
		log:    zerolog.Nop(),
		events: newEventBus(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.SetConfig(config, g.defaults); err != nil {
		return nil, err
	}
	return g, nil
}

// SetConfig replaces the configuration and drops every cached token. On error
// the previous configuration stays active.
func (g *Generator) SetConfig(config, defaults UserConfig) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	resolved, err := ResolveConfig(config, defaults)
	if err != nil {
		return err
	}

	var version uint64 = 1
	if prev := g.state.Load(); prev != nil {
		version = prev.version + 1
	}
	g.defaults = defaults
	g.state.Store(&snapshot{
		gen:     g,
		config:  resolved,
		cache:   newTokenCache(),
		version: version,
		log:     g.log,
	})

	g.log.Debug().
		Uint64("version", version).
		Int("rules", len(resolved.Rules)).
		Int("variants", len(resolved.Variants)).
		Int("shortcuts", len(resolved.Shortcuts)).
		Msg("config resolved")
	g.events.publish(Event{Type: EventConfigChanged, Version: version})
	return nil
}

// Config returns the active resolved config. It must not be modified.
func (g *Generator) Config() *ResolvedConfig {
	return g.state.Load().config
}

// Version increments on every successful SetConfig.
func (g *Generator) Version() uint64 {
	return g.state.Load().version
}

// CacheSize reports how many tokens the active config has memoized.
func (g *Generator) CacheSize() int {
	return g.state.Load().cache.len()
}

// Subscribe registers h for events of type t and returns a function that
// removes it.
func (g *Generator) Subscribe(t EventType, h EventHandler) func() {
	return g.events.subscribe(t, h)
}

// GenerateOptions tunes one Generate call.
type GenerateOptions struct {
	Preflights   *bool  // Include preflight CSS, default true
	Safelist     *bool  // Include safelisted tokens, default true
	Minify       bool   // Drop layer markers and newlines
	ID           string // Caller tag echoed in events
	Scope        string // Selector prefix for every rendered rule
	ExtendedInfo bool   // Fill GenerateResult.ExtendedInfo
}

// Bool returns a pointer to b, for optional settings.
func Bool(b bool) *bool { return &b }

func optional(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Generate compiles tokens into CSS.
func (g *Generator) Generate(ctx context.Context, tokens []string, opts GenerateOptions) (*GenerateResult, error) {
	s := g.state.Load()
	cfg := s.config

	counts := map[string]int{}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			counts[t]++
		}
	}
	if optional(opts.Safelist, true) {
		for _, t := range cfg.Safelist {
			if _, ok := counts[t]; !ok {
				counts[t] = 0
			}
		}
	}
	list := make([]string, 0, len(counts))
	for t := range counts {
		if !s.blocked(t) {
			list = append(list, t)
		}
	}
	sort.Strings(list)

	results := make([][]StringifiedUtil, len(list))
	failures := make([]error, len(list))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.limit(cfg))
	for i, token := range list {
		eg.Go(func() error {
			utils, err := s.parseToken(egctx, token)
			if err != nil {
				if cfg.IsolateErrors && ctx.Err() == nil {
					g.log.Warn().Err(err).Str("token", token).Msg("skipping token")
					failures[i] = err
					return nil
				}
				return err
			}
			results[i] = utils
			return nil
		})
	}

	includePreflights := optional(opts.Preflights, true)
	pctx, cancel := context.WithCancel(ctx)
	defer cancel()
	preflightDone := make(chan preflightResult, 1)
	if includePreflights {
		go func() {
			layers, err := s.buildPreflights(pctx, opts.Minify)
			preflightDone <- preflightResult{layers: layers, err: err}
		}()
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := 0
	for _, r := range results {
		if len(r) > 0 {
			matched++
		}
	}
	g.events.publish(Event{Type: EventTokensResolved, Version: s.version, ID: opts.ID, Tokens: len(list), Matched: matched})

	var preflights map[string]string
	if includePreflights {
		pr := <-preflightDone
		if pr.err != nil {
			return nil, pr.err
		}
		preflights = pr.layers
	}
	g.events.publish(Event{Type: EventPreflightsResolved, Version: s.version, ID: opts.ID})

	result := s.assemble(list, counts, results, preflights, opts)
	for _, err := range failures {
		if err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	g.events.publish(Event{Type: EventGenerated, Version: s.version, ID: opts.ID, Tokens: len(list), Matched: len(result.Matched)})
	return result, nil
}

func (g *Generator) limit(cfg *ResolvedConfig) int {
	n := g.concurrency
	if n == 0 {
		n = cfg.Concurrency
	}
	if n <= 0 {
		return -1
	}
	return n
}

type preflightResult struct {
	layers map[string]string
	err    error
}

// buildPreflights renders every preflight concurrently and joins them per
// layer in registration order.
func (s *snapshot) buildPreflights(ctx context.Context, minify bool) (map[string]string, error) {
	pfs := s.config.Preflights
	rendered := make([]string, len(pfs))
	eg, egctx := errgroup.WithContext(ctx)
	pctx := &PreflightContext{Theme: s.config.Theme, Generator: s.gen}
	for i, pf := range pfs {
		if pf.Func == nil {
			rendered[i] = strings.TrimSpace(pf.CSS)
			continue
		}
		eg.Go(func() error {
			css, err := pf.Func(egctx, pctx)
			if err != nil {
				return stageError(StagePreflight, "", fmt.Errorf("preflight %d: %w", i, err))
			}
			rendered[i] = strings.TrimSpace(css)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	nl := "\n"
	if minify {
		nl = ""
	}
	byLayer := map[string][]string{}
	for i, css := range rendered {
		if css == "" {
			continue
		}
		byLayer[pfs[i].Layer] = append(byLayer[pfs[i].Layer], css)
	}
	out := make(map[string]string, len(byLayer))
	for layer, parts := range byLayer {
		out[layer] = strings.Join(parts, nl)
	}
	return out, nil
}

// assemble renders resolved tokens and preflights into a result.
func (s *snapshot) assemble(tokens []string, counts map[string]int, results [][]StringifiedUtil, preflights map[string]string, opts GenerateOptions) *GenerateResult {
	ropts := renderOptions{minify: opts.Minify, scope: opts.Scope}
	nl := ropts.nl()
	result := &GenerateResult{layerCSS: map[string]string{}, nl: nl}
	if opts.ExtendedInfo {
		result.ExtendedInfo = map[string]TokenInfo{}
	}

	byLayer := map[string][]StringifiedUtil{}
	for i, token := range tokens {
		if len(results[i]) == 0 {
			continue
		}
		result.Matched = append(result.Matched, token)
		for _, u := range results[i] {
			byLayer[u.Layer] = append(byLayer[u.Layer], u)
		}
		if opts.ExtendedInfo {
			result.ExtendedInfo[token] = TokenInfo{Count: counts[token], Utils: slices.Clone(results[i])}
		}
	}

	names := make([]string, 0, len(byLayer)+len(preflights))
	for name := range byLayer {
		names = append(names, name)
	}
	for name := range preflights {
		if _, ok := byLayer[name]; !ok {
			names = append(names, name)
		}
	}
	s.config.sortLayers(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		var sections []string
		if css := preflights[name]; css != "" {
			sections = append(sections, css)
		}
		if utils := byLayer[name]; len(utils) > 0 {
			sections = append(sections, s.renderLayer(utils, ropts))
		}
		css := strings.Join(sections, nl)
		if css == "" {
			continue
		}
		if !opts.Minify {
			css = "/* layer: " + name + " */" + nl + css
		}
		result.layerCSS[name] = css
		result.Layers = append(result.Layers, name)
		parts = append(parts, css)
	}
	result.CSS = strings.Join(parts, nl)
	return result
}

// GenerateCode extracts tokens from code with the configured extractors and
// compiles them.
func (g *Generator) GenerateCode(ctx context.Context, code string, opts GenerateOptions) (*GenerateResult, error) {
	tokens, err := g.ApplyExtractors(ctx, code, opts.ID)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, tokens, opts)
}

// ApplyExtractors runs every configured extractor on code and returns the
// sorted, de-duplicated tokens.
func (g *Generator) ApplyExtractors(ctx context.Context, code, id string) ([]string, error) {
	cfg := g.state.Load().config
	ectx := &ExtractContext{Code: code, ID: id}
	set := map[string]bool{}
	for _, ex := range cfg.Extractors {
		tokens, err := ex.Extract(ctx, ectx)
		if err != nil {
			return nil, stageError(StageExtractor, id, fmt.Errorf("extractor %s: %w", ex.Name(), err))
		}
		for _, t := range tokens {
			set[t] = true
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// ParseToken resolves a single token without rendering. It returns nil for
// unmatched or blocked tokens.
func (g *Generator) ParseToken(ctx context.Context, token string) ([]StringifiedUtil, error) {
	utils, err := g.state.Load().parseToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return slices.Clone(utils), nil
}

// MatchVariants splits token into its variant handlers and residual token.
func (g *Generator) MatchVariants(ctx context.Context, token string) ([]VariantMatch, error) {
	return g.state.Load().matchVariants(ctx, token)
}
