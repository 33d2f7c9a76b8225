package utilcss

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenPresets(t *testing.T) {
	base := &Preset{Name: "base"}
	typo := &Preset{Name: "typo", Presets: []*Preset{base}}
	forms := &Preset{Name: "forms", Presets: []*Preset{base}}
	anon := &Preset{}

	got := flattenPresets([]*Preset{typo, forms, anon, anon, {Name: "typo"}})

	names := make([]string, 0, len(got))
	for _, p := range got {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"base", "typo", "forms", ""}, names)
}

func TestResolveConfigOrder(t *testing.T) {
	preset := &Preset{
		Name:  "p",
		Layer: "components",
		Rules: []Rule{
			StaticRule("a", Decl("color", "red")),
			StaticRule("b", Decl("color", "red")),
		},
		Layers: map[string]int{"components": 5},
	}
	rc, err := ResolveConfig(UserConfig{
		Presets: []*Preset{preset},
		Rules:   []Rule{StaticRule("a", Decl("color", "blue"))},
	}, UserConfig{})
	require.NoError(t, err)

	require.Len(t, rc.Rules, 2)
	assert.Equal(t, "b", rc.Rules[0].Key)
	assert.Equal(t, 0, rc.Rules[0].Index)
	assert.Equal(t, "components", rc.Rules[0].Meta.Layer)
	assert.Equal(t, "a", rc.Rules[1].Key)
	assert.Equal(t, "", rc.Rules[1].Meta.Layer)
	assert.Equal(t, "blue", rc.StaticRules["a"].Outputs[0].Entries[0].Value)

	assert.Equal(t, 5, rc.LayerOrder("components"))
	assert.Equal(t, -100, rc.LayerOrder(LayerPreflights))
	assert.Equal(t, []string{":", "-"}, rc.Separators)
	assert.Equal(t, LayerShortcuts, rc.ShortcutsLayer)
	assert.Equal(t, DefaultMaxShortcutDepth, rc.MaxShortcutDepth)
	assert.True(t, rc.MergeSelectors)
	require.Len(t, rc.Extractors, 1)
	assert.Equal(t, "split", rc.Extractors[0].Name())
}

func TestResolveConfigDefaults(t *testing.T) {
	off := false
	rc, err := ResolveConfig(
		UserConfig{ShortcutsLayer: "components"},
		UserConfig{ShortcutsLayer: "ignored", MergeSelectors: &off, MaxShortcutDepth: 3},
	)
	require.NoError(t, err)
	assert.Equal(t, "components", rc.ShortcutsLayer)
	assert.False(t, rc.MergeSelectors)
	assert.Equal(t, 3, rc.MaxShortcutDepth)
}

func TestThemeMergeLeavesPresetsUntouched(t *testing.T) {
	preset := &Preset{
		Name: "colors",
		Theme: Theme{"colors": map[string]any{
			"red":  "#f00",
			"blue": "#00f",
		}},
	}
	rc, err := ResolveConfig(UserConfig{
		Presets: []*Preset{preset},
		Theme:   Theme{"colors": map[string]any{"red": "#e00"}},
	}, UserConfig{})
	require.NoError(t, err)

	red, _ := rc.Theme.String("colors.red")
	blue, _ := rc.Theme.String("colors.blue")
	assert.Equal(t, "#e00", red)
	assert.Equal(t, "#00f", blue)

	orig, _ := preset.Theme.String("colors.red")
	assert.Equal(t, "#f00", orig)
}

func TestResolveConfigErrors(t *testing.T) {
	t.Run("aggregates problems", func(t *testing.T) {
		_, err := ResolveConfig(UserConfig{
			Rules:      []Rule{{Kind: RuleStatic}},
			Variants:   []Variant{{Name: "broken"}},
			Layers:     map[string]int{"bad layer": 1},
			Separators: []string{""},
		}, UserConfig{})
		require.Error(t, err)

		var cerr *ConfigError
		require.True(t, errors.As(err, &cerr))
		assert.Len(t, cerr.Errors(), 4)
		assert.Contains(t, err.Error(), "invalid config (4 problems)")
		assert.Contains(t, err.Error(), `layer "bad layer"`)
		assert.Contains(t, err.Error(), "broken")
	})

	t.Run("invalid preflight", func(t *testing.T) {
		for _, css := range []string{"a{color:red}}", "a{color:red"} {
			_, err := ResolveConfig(UserConfig{
				Preflights: []Preflight{{CSS: css}},
			}, UserConfig{})
			require.Error(t, err, css)
			assert.Contains(t, err.Error(), "preflight 0")
		}
	})

	t.Run("valid preflight", func(t *testing.T) {
		rc, err := ResolveConfig(UserConfig{
			Preflights: []Preflight{{CSS: "*,::before{box-sizing:border-box}@media (min-width:1px){a{color:red}}"}},
		}, UserConfig{})
		require.NoError(t, err)
		require.Len(t, rc.Preflights, 1)
		assert.Equal(t, LayerPreflights, rc.Preflights[0].Layer)
	})

	t.Run("shortcut cycle", func(t *testing.T) {
		_, err := ResolveConfig(UserConfig{
			Shortcuts: []Shortcut{
				StaticShortcut("a", "b"),
				StaticShortcut("b", "c x"),
				StaticShortcut("c", "a"),
			},
		}, UserConfig{})
		require.ErrorIs(t, err, ErrShortcutCycle)
		assert.Contains(t, err.Error(), "a -> b -> c -> a")
	})

	t.Run("depth out of range", func(t *testing.T) {
		_, err := ResolveConfig(UserConfig{MaxShortcutDepth: 1000}, UserConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MaxShortcutDepth")
	})
}

func TestConfigResolvedHooks(t *testing.T) {
	var seen []string
	preset := &Preset{
		Name: "hooked",
		ConfigResolved: func(rc *ResolvedConfig) {
			seen = append(seen, "preset")
		},
	}
	_, err := ResolveConfig(UserConfig{
		Presets: []*Preset{preset},
		ConfigResolved: func(rc *ResolvedConfig) {
			seen = append(seen, "config")
		},
	}, UserConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"preset", "config"}, seen)
}
