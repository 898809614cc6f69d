package style

import "testing"

func testBase() Set {
	return Set{
		Default:  Style{Fill: "#e5e7eb", Stroke: "#ffffff", StrokeWidth: 0.5},
		Hover:    Style{Fill: "#a78bfa", Stroke: "#ffffff", StrokeWidth: 0.75},
		Selected: Style{Fill: "#7c3aed", Stroke: "#ffffff", StrokeWidth: 1},
	}
}

func TestResolveWithoutOverride(t *testing.T) {
	base := testBase()
	overrides := map[int]Override{
		1: {Default: &Partial{Fill: String("#93c5fd")}},
	}

	tests := []struct {
		name     string
		selected bool
		want     Set
	}{
		{"idle", false, Set{Default: base.Default, Hover: base.Hover, Selected: base.Selected}},
		{"selected", true, Set{Default: base.Selected, Hover: base.Selected, Selected: base.Selected}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(5, tt.selected, base, overrides)
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveNilOverrides(t *testing.T) {
	base := testBase()
	got := Resolve(12, false, base, nil)
	if got.Default != base.Default || got.Hover != base.Hover || got.Selected != base.Selected {
		t.Errorf("nil overrides should yield base, got %+v", got)
	}
}

func TestResolveDefaultOnlyOverride(t *testing.T) {
	base := testBase()
	overrides := map[int]Override{
		12: {Default: &Partial{Fill: String("#fca5a5"), Stroke: String("#ffffff"), StrokeWidth: Float(0.5)}},
	}

	got := Resolve(12, false, base, overrides)
	if got.Default.Fill != "#fca5a5" {
		t.Errorf("default fill = %s, want #fca5a5", got.Default.Fill)
	}
	if got.Hover != base.Hover {
		t.Errorf("hover leaked override: %+v", got.Hover)
	}
	if got.Selected != base.Selected {
		t.Errorf("selected leaked override: %+v", got.Selected)
	}
}

func TestResolveSelectedBeatsHover(t *testing.T) {
	base := testBase()
	overrides := map[int]Override{
		7: {
			Default:  &Partial{Fill: String("#86efac")},
			Hover:    &Partial{Fill: String("#00ff00")},
			Selected: &Partial{Stroke: String("#000000")},
		},
	}

	got := Resolve(7, true, base, overrides)

	want := base.Selected
	want.Stroke = "#000000"
	if got.Default != want {
		t.Errorf("default = %+v, want %+v", got.Default, want)
	}
	if got.Hover != want {
		t.Errorf("hover = %+v, want %+v", got.Hover, want)
	}
	if got.Selected != want {
		t.Errorf("selected = %+v, want %+v", got.Selected, want)
	}
}

func TestResolveHoverOverride(t *testing.T) {
	base := testBase()
	overrides := map[int]Override{
		3: {Hover: &Partial{StrokeWidth: Float(2)}},
	}

	got := Resolve(3, false, base, overrides)
	if got.Default != base.Default {
		t.Errorf("default = %+v, want base default", got.Default)
	}
	if got.Hover.StrokeWidth != 2 || got.Hover.Fill != base.Hover.Fill {
		t.Errorf("hover = %+v, want base hover with width 2", got.Hover)
	}
}

func TestOutlineOrNone(t *testing.T) {
	if got := (Style{}).OutlineOrNone(); got != "none" {
		t.Errorf("OutlineOrNone() = %q, want none", got)
	}
	if got := (Style{Outline: "1px solid red"}).OutlineOrNone(); got != "1px solid red" {
		t.Errorf("OutlineOrNone() = %q", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Default.Fill != "#e8e8e8" {
		t.Errorf("default fill = %s", cfg.Default.Fill)
	}
	if cfg.Selected.Fill != "#7c3aed" {
		t.Errorf("selected fill = %s", cfg.Selected.Fill)
	}
}
