// Package presetfile loads declarative presets from YAML or TOML files.
//
// A preset file lists rules, variants, shortcuts and preflights as data.
// Dynamic entries use a regexp pattern, and their CSS or expansion is a
// template where ${1} (or $name) refers to a capture group:
//
//	name: brand
//	layer: components
//	rules:
//	  - match: btn
//	    css: "padding: 0.5rem 1rem; border-radius: 4px"
//	  - pattern: '^gap-(\d+)$'
//	    css: "gap: calc(${1} * 0.25rem)"
//	variants:
//	  - name: hover
//	    pseudo: ":hover"
//	shortcuts:
//	  - match: btn-primary
//	    expand: "btn bg-blue text-white"
package presetfile

// File is the on-disk shape of a preset.
type File struct {
	Name       string          `yaml:"name" toml:"name" validate:"required"`
	Layer      string          `yaml:"layer" toml:"layer" validate:"omitempty,layername"`
	Layers     map[string]int  `yaml:"layers" toml:"layers" validate:"dive,keys,layername,endkeys"`
	Theme      map[string]any  `yaml:"theme" toml:"theme"`
	Rules      []RuleSpec      `yaml:"rules" toml:"rules" validate:"dive"`
	Variants   []VariantSpec   `yaml:"variants" toml:"variants" validate:"dive"`
	Shortcuts  []ShortcutSpec  `yaml:"shortcuts" toml:"shortcuts" validate:"dive"`
	Preflights []PreflightSpec `yaml:"preflights" toml:"preflights" validate:"dive"`
	Safelist   []string        `yaml:"safelist" toml:"safelist" validate:"dive,required"`
	Blocklist  []string        `yaml:"blocklist" toml:"blocklist" validate:"dive,required"`
}

// RuleSpec is one static (match) or dynamic (pattern) rule.
type RuleSpec struct {
	Match    string `yaml:"match" toml:"match" validate:"required_without=Pattern,excluded_with=Pattern"`
	Pattern  string `yaml:"pattern" toml:"pattern" validate:"omitempty,regexp"`
	CSS      string `yaml:"css" toml:"css" validate:"required_without=Raw,excluded_with=Raw"`
	Raw      string `yaml:"raw" toml:"raw"` // Raw CSS text, e.g. an @font-face block
	Layer    string `yaml:"layer" toml:"layer" validate:"omitempty,layername"`
	Sort     int    `yaml:"sort" toml:"sort"`
	NoMerge  bool   `yaml:"no-merge" toml:"no-merge"`
	Internal bool   `yaml:"internal" toml:"internal"`
}

// VariantSpec is a prefix variant. Every non-empty field contributes to the
// handler it produces.
type VariantSpec struct {
	Name           string `yaml:"name" toml:"name" validate:"required"`
	Prefix         string `yaml:"prefix" toml:"prefix"` // Token prefix, defaults to Name
	Pseudo         string `yaml:"pseudo" toml:"pseudo" validate:"omitempty,startswith=:"`
	Parent         string `yaml:"parent" toml:"parent" validate:"omitempty,startswith=@"`
	ParentOrder    int    `yaml:"parent-order" toml:"parent-order"`
	SelectorPrefix string `yaml:"selector-prefix" toml:"selector-prefix"`
	Selector       string `yaml:"selector" toml:"selector" validate:"omitempty,contains=&"` // "&" is the current selector
	Layer          string `yaml:"layer" toml:"layer" validate:"omitempty,layername"`
	Order          int    `yaml:"order" toml:"order"`
	Important      bool   `yaml:"important" toml:"important"`
}

// ShortcutSpec is one static (match) or dynamic (pattern) shortcut.
type ShortcutSpec struct {
	Match   string `yaml:"match" toml:"match" validate:"required_without=Pattern,excluded_with=Pattern"`
	Pattern string `yaml:"pattern" toml:"pattern" validate:"omitempty,regexp"`
	Expand  string `yaml:"expand" toml:"expand" validate:"required"`
	Layer   string `yaml:"layer" toml:"layer" validate:"omitempty,layername"`
}

// PreflightSpec is static CSS emitted ahead of utilities.
type PreflightSpec struct {
	Layer string `yaml:"layer" toml:"layer" validate:"omitempty,layername"`
	CSS   string `yaml:"css" toml:"css" validate:"required"`
}
