// Package style resolves the three-state appearance of a prefecture.
package style

// Style is a fully populated visual appearance.
type Style struct {
	Fill        string  `json:"fill" yaml:"fill" doc:"Fill color (CSS)" example:"#e8e8e8"`
	Stroke      string  `json:"stroke" yaml:"stroke" doc:"Stroke color (CSS)" example:"#ffffff"`
	StrokeWidth float64 `json:"strokeWidth" yaml:"strokeWidth" minimum:"0" doc:"Stroke width in pixels" example:"0.5"`
	Outline     string  `json:"outline,omitempty" yaml:"outline,omitempty" doc:"Outline value, none when absent"`
}

// OutlineOrNone returns the outline, or "none" when unset.
func (s Style) OutlineOrNone() string {
	if s.Outline == "" {
		return "none"
	}
	return s.Outline
}

// Set is the complete default/hover/selected bundle for one region.
// All three states are always present in a Set.
type Set struct {
	Default  Style `json:"default" yaml:"default" doc:"Resting appearance"`
	Hover    Style `json:"hover" yaml:"hover" doc:"Appearance under the pointer"`
	Selected Style `json:"selected" yaml:"selected" doc:"Appearance while selected"`
}

// Partial is a Style where any field may be absent.
type Partial struct {
	Fill        *string  `json:"fill,omitempty" yaml:"fill,omitempty"`
	Stroke      *string  `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	Outline     *string  `json:"outline,omitempty" yaml:"outline,omitempty"`
}

// Override is a partial Set scoped to a single region.
type Override struct {
	Default  *Partial `json:"default,omitempty" yaml:"default,omitempty"`
	Hover    *Partial `json:"hover,omitempty" yaml:"hover,omitempty"`
	Selected *Partial `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// Overlay returns base with every field present in p replaced.
// A nil p returns base unchanged.
func Overlay(base Style, p *Partial) Style {
	if p == nil {
		return base
	}
	if p.Fill != nil {
		base.Fill = *p.Fill
	}
	if p.Stroke != nil {
		base.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		base.StrokeWidth = *p.StrokeWidth
	}
	if p.Outline != nil {
		base.Outline = *p.Outline
	}
	return base
}

// Resolve computes the final Set for a region.
//
// A selected region uses the selected style for both its resting and hover
// states, so the pointer never hides a selection. Overrides are layered per
// field on top of base; fields an override leaves out fall through to base.
func Resolve(regionID int, isSelected bool, base Set, overrides map[int]Override) Set {
	current, hoverBase := base.Default, base.Hover
	if isSelected {
		// Selection beats hover: both states take the selected look.
		current, hoverBase = base.Selected, base.Selected
	}

	ov, ok := overrides[regionID]
	if !ok {
		return Set{Default: current, Hover: hoverBase, Selected: base.Selected}
	}

	defaultPatch, hoverPatch := ov.Default, ov.Hover
	if isSelected {
		defaultPatch, hoverPatch = ov.Selected, ov.Selected
	}

	return Set{
		Default:  Overlay(current, defaultPatch),
		Hover:    Overlay(hoverBase, hoverPatch),
		Selected: Overlay(base.Selected, ov.Selected),
	}
}

// DefaultConfig returns the built-in neutral gray/purple palette.
func DefaultConfig() Set {
	return Set{
		Default:  Style{Fill: "#e8e8e8", Stroke: "#ffffff", StrokeWidth: 0.5, Outline: "none"},
		Hover:    Style{Fill: "#c4b5fd", Stroke: "#ffffff", StrokeWidth: 0.75, Outline: "none"},
		Selected: Style{Fill: "#7c3aed", Stroke: "#ffffff", StrokeWidth: 1, Outline: "none"},
	}
}

// String returns a pointer to s, for building Partial values.
func String(s string) *string { return &s }

// Float returns a pointer to f, for building Partial values.
func Float(f float64) *float64 { return &f }
