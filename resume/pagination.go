package resume

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// A4 page size in points.
const (
	A4WidthPt     = 595.0
	A4HeightPt    = 842.0
	pointsPerInch = 72.0
)

// Height heuristics in points.
const (
	lineHeightFactor    = 1.2
	charsPerLine        = 45.0
	sectionHeaderHeight = 20.0
	headerHeight        = 60.0
	itemBaseHeight      = 35.0
	highlightHeight     = 14.0
	skillLineHeight     = 20.0
	skillsPerLine       = 5.0
)

// Fallback style values for absent layout sections.
const (
	defaultBodySize   = 9.0
	defaultSmallSize  = 8.0
	defaultSubheading = 9.0
	defaultSectionGap = 4.0
	defaultItemGap    = 1.0
	defaultLineHeight = 1.0
	defaultMargin     = 0.4
)

// Density grades how much content a resume carries.
type Density string

const (
	DensityLow      Density = "low"
	DensityMedium   Density = "medium"
	DensityHigh     Density = "high"
	DensityVeryHigh Density = "very_high"
)

// Estimator converts resume content and a layout into a page count.
type Estimator struct{}

// UsableHeight returns the printable A4 height for a margin in inches.
func UsableHeight(marginInch float64) float64 {
	return A4HeightPt - 2*marginInch*pointsPerInch
}

// EstimatePages returns the estimated number of A4 pages, e.g. 1.3 for a
// little over one page.
func (Estimator) EstimatePages(data map[string]any, layout *Layout) float64 {
	font, spacing := styleOf(layout)
	return estimateHeight(data, font, spacing) / UsableHeight(spacing.Margin)
}

func estimateHeight(data map[string]any, font FontConfig, spacing SpacingConfig) float64 {
	body, gap, item, lh := font.BodySize, spacing.SectionGap, spacing.ItemGap, spacing.LineHeight

	textHeight := func(s string) float64 {
		lines := math.Max(1, float64(utf8.RuneCountInString(s))/charsPerLine)
		return lines * body * lh * lineHeightFactor
	}

	total := headerHeight

	if s := text(data, KeySummary); s != "" {
		total += sectionHeaderHeight + gap + textHeight(s)
	}

	for _, key := range []string{KeyExperience, KeyProjects} {
		items := list(data, key)
		if len(items) == 0 {
			continue
		}
		total += sectionHeaderHeight + gap
		for _, it := range items {
			h := itemBaseHeight
			if m, ok := it.(map[string]any); ok {
				if d := text(m, "description"); d != "" {
					h += textHeight(d)
				}
				h += float64(len(list(m, KeyHighlights))) * highlightHeight
				if len(list(m, "tech_stack")) > 0 {
					h += skillLineHeight * 0.7
				}
			}
			total += h + item
		}
	}

	if edu := list(data, KeyEducation); len(edu) > 0 {
		total += sectionHeaderHeight + gap + float64(len(edu))*itemBaseHeight*0.8
	}

	if skills := list(data, KeySkills); len(skills) > 0 {
		total += sectionHeaderHeight + gap + math.Max(1, float64(len(skills))/skillsPerLine)*skillLineHeight
	}

	for _, key := range []string{"certificates", "awards", "languages"} {
		if len(list(data, key)) > 0 {
			total += sectionHeaderHeight + gap + skillLineHeight
		}
	}

	return total
}

// Density grades the content volume of data.
func (Estimator) Density(data map[string]any) Density {
	exp, proj := list(data, KeyExperience), list(data, KeyProjects)

	highlights := 0
	for _, it := range append(append([]any(nil), exp...), proj...) {
		if m, ok := it.(map[string]any); ok {
			highlights += len(list(m, KeyHighlights))
		}
	}

	score := float64(len(exp))*3 + float64(len(proj))*2.5 + float64(highlights)*0.5 + float64(len(list(data, KeySkills)))*0.2

	switch {
	case score < 10:
		return DensityLow
	case score < 18:
		return DensityMedium
	case score < 28:
		return DensityHigh
	default:
		return DensityVeryHigh
	}
}

// Recommendation is a page-break suggestion.
type Recommendation struct {
	EstimatedPages float64 `json:"estimated_pages"`
	Density        Density `json:"content_density"`
	Recommendation string  `json:"recommendation"`
	Notes          string  `json:"notes"`
}

// Recommend suggests whether data fits one page, should be compressed, or
// needs two pages.
func (e Estimator) Recommend(data map[string]any, layout *Layout) Recommendation {
	pages := e.EstimatePages(data, layout)
	density := e.Density(data)

	r := Recommendation{EstimatedPages: math.Round(pages*100) / 100, Density: density}
	switch {
	case pages <= 1.0:
		r.Recommendation, r.Notes = "single_page", "content fits on one page"
	case pages <= 1.2 && (density == DensityLow || density == DensityMedium):
		r.Recommendation, r.Notes = "compress_to_one", "compress to one page"
	case pages <= 1.5:
		r.Recommendation, r.Notes = "compress_or_two", "compress to one page or use two pages"
	default:
		r.Recommendation, r.Notes = "two_pages", "use two pages"
	}
	return r
}

// Adjustment limits.
const (
	MinBodySize   = 8.0
	MaxBodySize   = 11.0
	MinSectionGap = 2.0
	MaxSectionGap = 10.0
	MinMargin     = 0.3
	MaxMargin     = 0.6
)

// DefaultMaxIterations bounds Optimize.
const DefaultMaxIterations = 5

// Optimization is the outcome of fitting a resume to a page target.
type Optimization struct {
	Data        map[string]any `json:"resume"`
	Layout      *Layout        `json:"layout_config"`
	Target      string         `json:"target"`
	Pages       float64        `json:"estimated_pages"`
	Adjustments []string       `json:"adjustments,omitempty"`
	Notes       string         `json:"notes"`
}

// Optimizer adjusts layout and content until the estimate lands in the
// target range.
type Optimizer struct {
	Estimator Estimator
}

// Optimize fits data to target (one_page, two_pages or auto) in at most
// maxIter adjustments. Compression reduces section gap, then item gap, then
// margin, then font size, then trims content. Expansion grows the gap, then
// the font. Inputs are not modified.
func (o Optimizer) Optimize(data map[string]any, layout *Layout, target string, maxIter int) (*Optimization, error) {
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	data = cloneObject(data)
	if data == nil {
		data = map[string]any{}
	}
	layout = layout.Clone()
	if layout == nil {
		layout = &Layout{}
	}
	fillStyle(layout)

	pages := o.Estimator.EstimatePages(data, layout)

	lo, hi, desc, err := targetRange(target, pages)
	if err != nil {
		return nil, err
	}

	var adjustments []string
	for i := 0; i < maxIter; i++ {
		pages = o.Estimator.EstimatePages(data, layout)
		if pages >= lo && pages <= hi {
			break
		}

		var adj string
		if pages > hi {
			adj = compress(data, layout)
		} else {
			adj = expand(layout)
		}
		if adj == "" {
			break
		}
		adjustments = append(adjustments, adj)
	}

	pages = o.Estimator.EstimatePages(data, layout)

	notes := fmt.Sprintf("layout already fits %s (estimated %.1f pages)", desc, pages)
	if len(adjustments) > 0 {
		notes = fmt.Sprintf("optimized for %s (estimated %.1f pages); adjustments: %s", desc, pages, strings.Join(adjustments, "; "))
	}

	return &Optimization{
		Data:        data,
		Layout:      layout,
		Target:      target,
		Pages:       math.Round(pages*100) / 100,
		Adjustments: adjustments,
		Notes:       notes,
	}, nil
}

func targetRange(target string, pages float64) (lo, hi float64, desc string, err error) {
	switch target {
	case PagesOne:
		return 0.85, 1.0, "one page", nil
	case PagesTwo:
		return 1.5, 2.0, "two pages", nil
	case PagesAuto, "":
		switch {
		case pages <= 1.1:
			return 0.85, 1.0, "one page", nil
		case pages <= 1.6:
			return 0.9, 1.05, "a compact page", nil
		default:
			return 1.5, 2.0, "two pages", nil
		}
	}
	return 0, 0, "", fmt.Errorf("unknown page target %q (want %s, %s or %s)", target, PagesOne, PagesTwo, PagesAuto)
}

func compress(data map[string]any, layout *Layout) string {
	sp, f := layout.Spacing, layout.Font

	if sp.SectionGap > MinSectionGap {
		old := sp.SectionGap
		sp.SectionGap = math.Max(MinSectionGap, old-1)
		return fmt.Sprintf("section gap %g→%g", old, sp.SectionGap)
	}
	if sp.ItemGap > 0 {
		sp.ItemGap = 0
		return "item gap→0"
	}
	if sp.Margin > MinMargin+1e-9 {
		old := sp.Margin
		sp.Margin = math.Max(MinMargin, math.Round((old-0.05)*100)/100)
		return fmt.Sprintf("margin %g→%g", old, sp.Margin)
	}
	if f.BodySize > MinBodySize {
		old := f.BodySize
		f.BodySize = old - 1
		f.SubheadingSize = math.Max(f.BodySize, f.SubheadingSize-1)
		f.SmallSize = math.Max(7, f.SmallSize-1)
		return fmt.Sprintf("font %g→%g", old, f.BodySize)
	}
	return trimForSpace(data)
}

// trimForSpace removes one increment of content.
func trimForSpace(data map[string]any) string {
	for _, sec := range []struct{ key, label string }{{KeyExperience, "experience"}, {KeyProjects, "project"}} {
		for _, it := range list(data, sec.key) {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			if hl := list(m, KeyHighlights); len(hl) > 3 {
				m[KeyHighlights] = hl[:3]
				return sec.label + " highlights→3"
			}
		}
	}
	if p := list(data, KeyProjects); len(p) > 2 {
		data[KeyProjects] = p[:2]
		return "projects→2"
	}
	if s := list(data, KeySkills); len(s) > 12 {
		data[KeySkills] = s[:12]
		return "skills→12"
	}
	return ""
}

func expand(layout *Layout) string {
	sp, f := layout.Spacing, layout.Font

	if sp.SectionGap < MaxSectionGap {
		old := sp.SectionGap
		sp.SectionGap = math.Min(MaxSectionGap, old+2)
		return fmt.Sprintf("section gap %g→%g", old, sp.SectionGap)
	}
	if f.BodySize < MaxBodySize {
		old := f.BodySize
		f.BodySize = old + 1
		return fmt.Sprintf("font %g→%g", old, f.BodySize)
	}
	return ""
}

// styleOf returns the font and spacing of layout. Absent sections take the
// defaults, as do non-positive sizes, margins and line heights.
func styleOf(layout *Layout) (FontConfig, SpacingConfig) {
	font := FontConfig{BodySize: defaultBodySize, SubheadingSize: defaultSubheading, SmallSize: defaultSmallSize}
	spacing := SpacingConfig{Margin: defaultMargin, SectionGap: defaultSectionGap, ItemGap: defaultItemGap, LineHeight: defaultLineHeight}

	if layout != nil && layout.Font != nil {
		f := *layout.Font
		if f.BodySize <= 0 {
			f.BodySize = defaultBodySize
		}
		if f.SubheadingSize <= 0 {
			f.SubheadingSize = defaultSubheading
		}
		if f.SmallSize <= 0 {
			f.SmallSize = defaultSmallSize
		}
		font = f
	}
	if layout != nil && layout.Spacing != nil {
		sp := *layout.Spacing
		if sp.Margin <= 0 {
			sp.Margin = defaultMargin
		}
		if sp.LineHeight <= 0 {
			sp.LineHeight = defaultLineHeight
		}
		sp.SectionGap = math.Max(0, sp.SectionGap)
		sp.ItemGap = math.Max(0, sp.ItemGap)
		spacing = sp
	}
	return font, spacing
}

func fillStyle(layout *Layout) {
	font, spacing := styleOf(layout)
	layout.Font, layout.Spacing = &font, &spacing
}
