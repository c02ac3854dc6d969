package resume

import "sort"

// DefaultStyle is used for unknown style names.
const DefaultStyle = "modern"

var stylePresets = map[string]Layout{
	"modern": {
		Style:       "modern",
		ColorScheme: "professional",
		Font:        &FontConfig{TitleSize: 16, HeadingSize: 10, SubheadingSize: 9, BodySize: 9, SmallSize: 8},
		Spacing:     &SpacingConfig{Margin: 0.4, SectionGap: 4, ItemGap: 1, LineHeight: 1.0},
		Visual:      &VisualElements{UseIcons: true, UseSkillBars: true},
	},
	"classic": {
		Style:       "classic",
		ColorScheme: "monochrome",
		Font:        &FontConfig{TitleSize: 14, HeadingSize: 11, SubheadingSize: 10, BodySize: 10, SmallSize: 9},
		Spacing:     &SpacingConfig{Margin: 0.5, SectionGap: 6, ItemGap: 2, LineHeight: 1.0},
		Visual:      &VisualElements{},
	},
	"minimal": {
		Style:       "minimal",
		ColorScheme: "elegant",
		Font:        &FontConfig{TitleSize: 14, HeadingSize: 10, SubheadingSize: 9, BodySize: 9, SmallSize: 8},
		Spacing:     &SpacingConfig{Margin: 0.4, SectionGap: 4, ItemGap: 1, LineHeight: 1.0},
		Visual:      &VisualElements{},
	},
	"creative": {
		Style:       "modern",
		ColorScheme: "vibrant",
		Font:        &FontConfig{TitleSize: 18, HeadingSize: 11, SubheadingSize: 10, BodySize: 9, SmallSize: 8},
		Spacing:     &SpacingConfig{Margin: 0.5, SectionGap: 6, ItemGap: 2, LineHeight: 1.0},
		Visual:      &VisualElements{UseIcons: true, UseSkillBars: true, UseTimeline: true},
	},
}

// StylePreset returns a copy of the named style preset, falling back to
// DefaultStyle. Only style, colors, fonts, spacing and visuals are set.
func StylePreset(name string) *Layout {
	p, ok := stylePresets[name]
	if !ok {
		p = stylePresets[DefaultStyle]
	}
	return p.Clone()
}

// StyleNames lists the style presets.
func StyleNames() []string {
	names := make([]string, 0, len(stylePresets))
	for n := range stylePresets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
