package mini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/utilcss"
)

func newGenerator(t *testing.T, opts ...Options) *utilcss.Generator {
	t.Helper()
	g, err := utilcss.New(utilcss.UserConfig{Presets: []*utilcss.Preset{New(opts...)}})
	require.NoError(t, err)
	return g
}

func utilities(t *testing.T, g *utilcss.Generator, tokens ...string) *utilcss.GenerateResult {
	t.Helper()
	res, err := g.Generate(context.Background(), tokens, utilcss.GenerateOptions{Preflights: utilcss.Bool(false)})
	require.NoError(t, err)
	return res
}

func TestRules(t *testing.T) {
	g := newGenerator(t)

	tests := []struct {
		token string
		want  string
	}{
		{"flex", ".flex{display:flex;}"},
		{"px-4", ".px-4{padding-left:1rem;padding-right:1rem;}"},
		{"mx-auto", ".mx-auto{margin-left:auto;margin-right:auto;}"},
		{"mt-px", ".mt-px{margin-top:1px;}"},
		{"w-full", ".w-full{width:100%;}"},
		{"h-screen", ".h-screen{height:100vh;}"},
		{"text-red", ".text-red{color:#f87171;}"},
		{"text-red-500", ".text-red-500{color:#ef4444;}"},
		{"c-white", ".c-white{color:#fff;}"},
		{"bg-[#123456]", `.bg-\[\#123456\]{background-color:#123456;}`},
		{"border-gray-900", ".border-gray-900{border-color:#111827;}"},
		{"op-50", ".op-50{opacity:0.5;}"},
		{"z-10", ".z-10{z-index:10;}"},
		{"[margin-top:10px]", `.\[margin-top\:10px\]{margin-top:10px;}`},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			res := utilities(t, g, tt.token)
			require.Equal(t, []string{tt.token}, res.Matched)
			assert.Equal(t, "/* layer: default */\n"+tt.want, res.GetLayer(utilcss.LayerDefault))
		})
	}
}

func TestUnknownTokens(t *testing.T) {
	g := newGenerator(t)
	res := utilities(t, g, "text-nope", "p-auto", "opacity-500", "hello")
	assert.Empty(t, res.Matched)
	assert.Empty(t, res.CSS)
}

func TestBreakpoints(t *testing.T) {
	g := newGenerator(t)
	res := utilities(t, g, "md:p-6", "p-2", "sm:p-4")

	want := "/* layer: default */\n" +
		".p-2{padding:0.5rem;}\n" +
		"@media (min-width: 640px){\n" + `.sm\:p-4{padding:1rem;}` + "\n}\n" +
		"@media (min-width: 768px){\n" + `.md\:p-6{padding:1.5rem;}` + "\n}"
	assert.Equal(t, want, res.CSS)
}

func TestPseudoOrdering(t *testing.T) {
	g := newGenerator(t)
	res := utilities(t, g, "dark:hover:file:marker:bg-red-600", "dark:file:marker:hover:bg-red-600")

	want := "/* layer: default */\n" +
		`.dark .dark\:file\:marker\:hover\:bg-red-600:hover::file-selector-button::marker,` + "\n" +
		`.dark .dark\:hover\:file\:marker\:bg-red-600:hover::file-selector-button::marker{background-color:#dc2626;}`
	assert.Equal(t, want, res.CSS)
}

func TestVariants(t *testing.T) {
	g := newGenerator(t, Options{DarkSelector: "html.dark "})

	tests := []struct {
		token string
		want  string
	}{
		{"!text-red", `.\!text-red{color:#f87171 !important;}`},
		{"group-hover:underline", `.group:hover .group-hover\:underline{text-decoration-line:underline;}`},
		{"dark:block", `html.dark .dark\:block{display:block;}`},
		{"focus-visible:hidden", `.focus-visible\:hidden:focus-visible{display:none;}`},
		{"focus:hidden", `.focus\:hidden:focus{display:none;}`},
		{"before:block", `.before\:block::before{display:block;}`},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			res := utilities(t, g, tt.token)
			assert.Equal(t, "/* layer: default */\n"+tt.want, res.GetLayer(utilcss.LayerDefault))
		})
	}
}

func TestLayerVariant(t *testing.T) {
	g := newGenerator(t)
	res := utilities(t, g, "layer-components:font-bold", "italic")

	assert.Equal(t, []string{"components", "default"}, res.Layers)
	assert.Equal(t, "/* layer: components */\n"+`.layer-components\:font-bold{font-weight:700;}`, res.GetLayer("components"))
}

func TestPreflight(t *testing.T) {
	res, err := newGenerator(t).Generate(context.Background(), []string{"flex"}, utilcss.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/* layer: preflights */\n"+
		"*,::before,::after{box-sizing:border-box;border-width:0;border-style:solid;}\n"+
		"/* layer: default */\n"+
		".flex{display:flex;}", res.CSS)

	res, err = newGenerator(t, Options{Preflight: utilcss.Bool(false)}).Generate(context.Background(), []string{"flex"}, utilcss.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/* layer: default */\n.flex{display:flex;}", res.CSS)
}

func TestBreakpointsFromTheme(t *testing.T) {
	bps := breakpoints(DefaultTheme())
	names := make([]string, 0, len(bps))
	for _, bp := range bps {
		names = append(names, bp.name)
	}
	assert.Equal(t, []string{"sm", "md", "lg", "xl", "2xl"}, names)
}
