// Package utilcss compiles utility-class tokens into CSS.
//
// A Generator is built from a UserConfig holding rules, variants, shortcuts,
// theme data and presets. Generate resolves every token concurrently, caches
// the result per config and renders the matched utilities into ordered
// layers.
//
// # Generation
//
//	gen, err := utilcss.New(utilcss.UserConfig{
//		Presets: []*utilcss.Preset{mini.New()},
//	})
//	result, err := gen.Generate(ctx, []string{"hover:text-red", "p-2"}, utilcss.GenerateOptions{})
//	fmt.Println(result.CSS)
//
// # Rules
//
// Static rules match a token exactly; dynamic rules match a regular
// expression and call a function:
//
//	utilcss.StaticRule("flex", utilcss.Decl("display", "flex"))
//	utilcss.DynamicRule(`^m-(\d+)$`, func(ctx context.Context, m []string, rc *utilcss.RuleContext) ([]utilcss.RuleOutput, error) {
//		return utilcss.Emit(utilcss.Decl("margin", m[1]+"px")), nil
//	})
//
// # Variants
//
// Variants peel prefixes such as "hover:" off a token and contribute a
// selector prefix, pseudo suffix, wrapping at-rule, layer, sort key or body
// transform. They are resolved in a loop until no variant applies.
//
// # CLI Tool
//
// utilcss also provides a CLI tool. Install with:
//
//	go install github.com/yacobolo/utilcss/cmd/utilcss@latest
package utilcss
