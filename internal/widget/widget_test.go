package widget

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-japanmap/internal/geometry"
	"github.com/joeblew999/plat-japanmap/internal/projection"
	"github.com/joeblew999/plat-japanmap/internal/selection"
	"github.com/joeblew999/plat-japanmap/internal/style"
)

func square(lon, lat float64) orb.MultiPolygon {
	return orb.MultiPolygon{{{
		{lon, lat}, {lon + 0.5, lat}, {lon + 0.5, lat + 0.5}, {lon, lat + 0.5}, {lon, lat},
	}}}
}

func testData(t *testing.T, ids ...int) *geometry.Dataset {
	t.Helper()
	regions := make([]geometry.Region, 0, len(ids))
	for i, id := range ids {
		regions = append(regions, geometry.Region{
			Properties: geometry.Properties{ID: id, Name: "Pref", NameJa: "県"},
			Geometry:   square(135+float64(i), 35),
		})
	}
	ds, err := geometry.NewDataset(regions)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func shapeByID(f Frame, id int) (Shape, bool) {
	for _, s := range f.Shapes {
		if s.Properties.ID == id {
			return s, true
		}
	}
	return Shape{}, false
}

func TestUncontrolledMultiSelect(t *testing.T) {
	var clicked []int
	w := New(testData(t, 3, 7), Options{
		MultiSelect:       true,
		OnPrefectureClick: func(p geometry.Properties) { clicked = append(clicked, p.ID) },
	})

	for _, id := range []int{3, 3, 7} {
		if err := w.Click(id); err != nil {
			t.Fatal(err)
		}
	}
	if got := w.ctrl.Current(); !slices.Equal(got, selection.Selection{7}) {
		t.Errorf("selection = %v, want [7]", got)
	}
	if !slices.Equal(clicked, []int{3, 3, 7}) {
		t.Errorf("click notifications = %v", clicked)
	}
	if w.Controlled() {
		t.Error("widget without Selected should be uncontrolled")
	}
}

func TestUncontrolledSingleSelect(t *testing.T) {
	w := New(testData(t, 5, 9), Options{})
	for _, id := range []int{5, 9, 9} {
		w.Click(id)
	}
	if got := w.ctrl.Current(); len(got) != 0 {
		t.Errorf("selection = %v, want empty", got)
	}
}

func TestControlledDefersToCaller(t *testing.T) {
	owned := selection.Selection{}
	var got []geometry.Properties
	w := New(testData(t, 1, 2), Options{
		Selected: func() selection.Selection { return owned },
		OnPrefectureClick: func(p geometry.Properties) {
			got = append(got, p)
		},
	})

	w.Click(2)
	if len(owned) != 0 {
		t.Errorf("controlled widget mutated caller selection: %v", owned)
	}
	if len(got) != 1 || got[0].ID != 2 || got[0].NameJa != "県" {
		t.Errorf("click handler got %+v", got)
	}

	owned = selection.Toggle(owned, 2, true)
	f, _ := w.Frame()
	if s, _ := shapeByID(f, 2); !s.Selected {
		t.Error("shape 2 should render selected from the caller's state")
	}
}

func TestHoverAndLeave(t *testing.T) {
	var events []*geometry.Properties
	w := New(testData(t, 4, 8), Options{
		OnPrefectureHover: func(p *geometry.Properties) { events = append(events, p) },
	})

	w.Hover(4)
	w.Leave()
	w.Hover(8)
	w.Leave()

	if len(events) != 4 {
		t.Fatalf("got %d hover events, want 4", len(events))
	}
	if events[0] == nil || events[0].ID != 4 {
		t.Errorf("first event = %+v, want id 4", events[0])
	}
	if events[1] != nil || events[3] != nil {
		t.Error("leave must notify with nil, not the previous region")
	}
}

func TestUnknownRegion(t *testing.T) {
	w := New(testData(t, 1), Options{})
	if err := w.Click(99); !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("Click(99) error = %v, want ErrUnknownRegion", err)
	}
	if err := w.Hover(99); !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("Hover(99) error = %v, want ErrUnknownRegion", err)
	}

	empty := New(nil, Options{})
	if err := empty.Click(1); !errors.Is(err, ErrUnknownRegion) {
		t.Errorf("Click on empty widget error = %v", err)
	}
}

func TestFrameSuppressedForDegenerateViewport(t *testing.T) {
	w := New(testData(t, 1), Options{})
	if _, ok := w.Frame(); !ok {
		t.Fatal("default 800x600 viewport should render")
	}
	w.Resize(0, 600)
	if _, ok := w.Frame(); ok {
		t.Error("zero width should suppress rendering")
	}
	w.Resize(1200, 800)
	f, ok := w.Frame()
	if !ok {
		t.Fatal("expected a frame after resize")
	}
	if f.Width != 1200 || f.Height != 800 {
		t.Errorf("frame size = %dx%d", f.Width, f.Height)
	}
	if f.Scale < 2133.33 || f.Scale > 2133.34 {
		t.Errorf("frame scale = %v, want ~2133.33", f.Scale)
	}
}

func TestFrameShapes(t *testing.T) {
	overrides := map[int]style.Override{
		12: {Default: &style.Partial{Fill: style.String("#fca5a5")}},
	}
	w := New(testData(t, 12, 13), Options{PrefectureStyles: overrides, MultiSelect: true})
	w.Click(13)

	f, _ := w.Frame()
	if len(f.Shapes) != 2 {
		t.Fatalf("got %d shapes, want 2", len(f.Shapes))
	}

	kanto, _ := shapeByID(f, 12)
	if kanto.Style.Default.Fill != "#fca5a5" {
		t.Errorf("12 default fill = %s, want #fca5a5", kanto.Style.Default.Fill)
	}
	if kanto.Selected {
		t.Error("12 should not be selected")
	}
	if !strings.HasPrefix(kanto.Path, "M") || !strings.HasSuffix(kanto.Path, "Z") {
		t.Errorf("unexpected path %q", kanto.Path)
	}

	tokyo, _ := shapeByID(f, 13)
	want := style.DefaultConfig().Selected
	if !tokyo.Selected || tokyo.Style.Default != want || tokyo.Style.Hover != want {
		t.Errorf("13 selected style = %+v", tokyo.Style)
	}
}

func TestSetStylesTakesEffectNextFrame(t *testing.T) {
	w := New(testData(t, 12), Options{})
	f, _ := w.Frame()
	if s, _ := shapeByID(f, 12); s.Style.Default.Fill != style.DefaultConfig().Default.Fill {
		t.Fatalf("fill = %s", s.Style.Default.Fill)
	}

	w.SetStyles(nil, map[int]style.Override{12: {Default: &style.Partial{Fill: style.String("#000")}}})
	f, _ = w.Frame()
	if s, _ := shapeByID(f, 12); s.Style.Default.Fill != "#000" {
		t.Errorf("fill after SetStyles = %s, want #000", s.Style.Default.Fill)
	}

	w.SetStyles(nil, nil)
	f, _ = w.Frame()
	if s, _ := shapeByID(f, 12); s.Style.Default.Fill != style.DefaultConfig().Default.Fill {
		t.Errorf("fill after clearing overrides = %s", s.Style.Default.Fill)
	}
}

func TestZoomClamp(t *testing.T) {
	w := New(nil, Options{})
	if w.zoom != 1 {
		t.Errorf("initial zoom = %v, want 1", w.zoom)
	}
	if z := w.ZoomBy(2); z != 2 {
		t.Errorf("ZoomBy(2) = %v", z)
	}
	if z := w.SetZoom(100); z != DefaultMaxZoom {
		t.Errorf("SetZoom(100) = %v, want %v", z, DefaultMaxZoom)
	}
	if z := w.ZoomBy(0.001); z != DefaultMinZoom {
		t.Errorf("ZoomBy(0.001) = %v, want %v", z, DefaultMinZoom)
	}
	if z := w.ZoomBy(-1); z != DefaultMinZoom {
		t.Errorf("ZoomBy(-1) = %v", z)
	}

	bounded := New(nil, Options{MinZoom: 2, MaxZoom: 4})
	if bounded.zoom != 2 || bounded.SetZoom(5) != 4 {
		t.Errorf("custom bounds not honoured")
	}
}

func TestPathsReprojectOnResize(t *testing.T) {
	w := New(testData(t, 1), Options{})
	f1, _ := w.Frame()
	w.Resize(400, 300)
	f2, _ := w.Frame()
	if f1.Shapes[0].Path == f2.Shapes[0].Path {
		t.Error("path should change when the viewport changes")
	}
	w.Close()
	w.Resize(1000, 1000)
	if vp := w.observer.Current(); vp.Width != 400 {
		t.Errorf("resize after Close changed viewport to %+v", vp)
	}
}

func TestPanBringsRegionIntoView(t *testing.T) {
	ds, err := geometry.NewDataset([]geometry.Region{
		{Properties: geometry.Properties{ID: 15, Name: "Niigata Ken"}, Geometry: square(137.75, 37.75)},
		{Properties: geometry.Properties{ID: 1, Name: "Hokkai Do"}, Geometry: square(143, 43)},
	})
	if err != nil {
		t.Fatal(err)
	}
	w := New(ds, Options{})
	w.PanBy(500, 500) // before the first measurement: ignored
	w.Resize(800, 600)
	w.SetZoom(8)

	f, _ := w.Frame()
	if f.CenterX != 400 || f.CenterY != 300 {
		t.Fatalf("initial centre = %v,%v, want 400,300", f.CenterX, f.CenterY)
	}

	target := projection.New(800, 600, projection.BaseScale).Project(orb.Point{143.25, 43.25})
	inView := func(f Frame) bool {
		x, y := f.FrameToScreen(target[0], target[1])
		return x >= 0 && x <= float64(f.Width) && y >= 0 && y <= float64(f.Height)
	}
	if inView(f) {
		t.Fatal("region 1 should be off screen at zoom 8 before panning")
	}

	w.PanBy((target[0]-f.CenterX)*f.Zoom, (target[1]-f.CenterY)*f.Zoom)
	f, _ = w.Frame()
	if !inView(f) {
		x, y := f.FrameToScreen(target[0], target[1])
		t.Errorf("region 1 at screen %.1f,%.1f after pan, want inside 800x600", x, y)
	}
	if x, y := f.ScreenToFrame(f.FrameToScreen(target[0], target[1])); math.Abs(x-target[0]) > 1e-9 || math.Abs(y-target[1]) > 1e-9 {
		t.Errorf("ScreenToFrame(FrameToScreen(p)) = %v,%v, want %v", x, y, target)
	}

	w.ResetPan()
	if f, _ = w.Frame(); f.CenterX != 400 || f.CenterY != 300 {
		t.Errorf("centre after ResetPan = %v,%v", f.CenterX, f.CenterY)
	}
}

func TestPanClampsToData(t *testing.T) {
	w := New(testData(t, 1, 2), Options{})
	w.Resize(800, 600)
	w.SetZoom(4)

	w.PanBy(1e6, -1e6)
	f, _ := w.Frame()
	m := projection.New(800, 600, projection.BaseScale)
	var corners orb.MultiPoint
	for _, ll := range []orb.Point{{135, 35}, {136.5, 35}, {135, 35.5}, {136.5, 35.5}} {
		corners = append(corners, m.Project(ll))
	}
	box := corners.Bound()
	if math.Abs(f.CenterX-box.Max[0]) > 1e-6 || math.Abs(f.CenterY-box.Min[1]) > 1e-6 {
		t.Errorf("centre = %.3f,%.3f, want the data's north-east corner %.3f,%.3f", f.CenterX, f.CenterY, box.Max[0], box.Min[1])
	}

	empty := New(nil, Options{})
	empty.Resize(200, 100)
	empty.PanBy(-1e6, 1e6)
	if f, _ := empty.Frame(); math.Abs(f.CenterX) > 1e-6 || math.Abs(f.CenterY-100) > 1e-6 {
		t.Errorf("centre without data = %v,%v, want the frame corner 0,100", f.CenterX, f.CenterY)
	}
}
