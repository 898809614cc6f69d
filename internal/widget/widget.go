// Package widget composes the prefecture map: viewport tracking, projection,
// style resolution and selection handling.
//
// A Widget is not safe for concurrent use. Callers serialize events for one
// widget the way a UI thread would.
package widget

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-japanmap/internal/geometry"
	"github.com/joeblew999/plat-japanmap/internal/projection"
	"github.com/joeblew999/plat-japanmap/internal/selection"
	"github.com/joeblew999/plat-japanmap/internal/style"
	"github.com/joeblew999/plat-japanmap/internal/viewport"
)

// Zoom bounds used when Options leaves them unset.
const (
	DefaultMinZoom = 1
	DefaultMaxZoom = 8
)

// DefaultTolerance is the simplification tolerance in pixels.
const DefaultTolerance = 0.35

// ErrUnknownRegion is returned for ids the dataset does not contain.
var ErrUnknownRegion = errors.New("unknown prefecture")

// ClickFunc receives the clicked prefecture.
type ClickFunc func(geometry.Properties)

// HoverFunc receives the hovered prefecture, or nil when the pointer leaves.
type HoverFunc func(*geometry.Properties)

// Options configures a Widget. Every field is optional.
type Options struct {
	StyleConfig      *style.Set
	PrefectureStyles map[int]style.Override
	// Selected makes the widget controlled: the caller owns the selection
	// and changes it from OnPrefectureClick.
	Selected          selection.Source
	OnPrefectureClick ClickFunc
	OnPrefectureHover HoverFunc
	MultiSelect       bool
	MinZoom           float64
	MaxZoom           float64
	ClassName         string
	BaseScale         float64
	Tolerance         float64
}

// Shape is one prefecture ready to draw.
type Shape struct {
	Properties geometry.Properties
	Selected   bool
	Style      style.Set
	Path       string
}

// Frame is a complete render of the widget. Shapes are in unzoomed frame
// pixels; the view shows them scaled by Zoom about (CenterX, CenterY), which
// lands on the middle of the viewport.
type Frame struct {
	Width     int
	Height    int
	Scale     float64
	Zoom      float64
	CenterX   float64
	CenterY   float64
	ClassName string
	Shapes    []Shape
}

// ScreenToFrame maps a viewport position to unzoomed frame pixels.
func (f Frame) ScreenToFrame(x, y float64) (float64, float64) {
	return f.CenterX + (x-float64(f.Width)/2)/f.Zoom,
		f.CenterY + (y-float64(f.Height)/2)/f.Zoom
}

// FrameToScreen maps unzoomed frame pixels to a viewport position.
func (f Frame) FrameToScreen(x, y float64) (float64, float64) {
	return float64(f.Width)/2 + (x-f.CenterX)*f.Zoom,
		float64(f.Height)/2 + (y-f.CenterY)*f.Zoom
}

// Widget is one mounted map instance.
type Widget struct {
	data     *geometry.Dataset
	opts     Options
	styles   style.Set
	ctrl     selection.Controller
	observer *viewport.Observer
	zoom     float64
	// center is the lon/lat shown in the middle of the viewport; nil until
	// the first pan.
	center *orb.Point

	paths     map[int]string
	pathsFor  viewport.Viewport
	unobserve func()
}

// New mounts a widget over data, which may be nil when no geometry loaded.
func New(data *geometry.Dataset, opts Options) *Widget {
	if opts.MinZoom <= 0 {
		opts.MinZoom = DefaultMinZoom
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = DefaultMaxZoom
	}
	if opts.MaxZoom < opts.MinZoom {
		opts.MaxZoom = opts.MinZoom
	}
	if opts.BaseScale <= 0 {
		opts.BaseScale = projection.BaseScale
	}
	if opts.Tolerance < 0 {
		opts.Tolerance = 0
	} else if opts.Tolerance == 0 {
		opts.Tolerance = DefaultTolerance
	}

	styles := style.DefaultConfig()
	if opts.StyleConfig != nil {
		styles = *opts.StyleConfig
	}

	w := &Widget{
		data:     data,
		opts:     opts,
		styles:   styles,
		ctrl:     selection.NewController(opts.Selected, opts.MultiSelect),
		observer: viewport.NewObserver(),
		zoom:     opts.MinZoom,
	}
	w.unobserve = w.observer.Subscribe(func(viewport.Viewport) { w.paths = nil })
	return w
}

// Controlled reports whether the caller owns the selection.
func (w *Widget) Controlled() bool {
	return w.ctrl.Controlled()
}

// Click applies the selection transition for id and then notifies the
// click handler.
func (w *Widget) Click(id int) error {
	region, err := w.region(id)
	if err != nil {
		return err
	}
	w.ctrl.ApplyClick(id)
	if w.opts.OnPrefectureClick != nil {
		w.opts.OnPrefectureClick(region.Properties)
	}
	return nil
}

// Hover notifies the hover handler that the pointer entered id.
func (w *Widget) Hover(id int) error {
	region, err := w.region(id)
	if err != nil {
		return err
	}
	if w.opts.OnPrefectureHover != nil {
		props := region.Properties
		w.opts.OnPrefectureHover(&props)
	}
	return nil
}

// Leave notifies the hover handler that no prefecture is hovered.
func (w *Widget) Leave() {
	if w.opts.OnPrefectureHover != nil {
		w.opts.OnPrefectureHover(nil)
	}
}

// Resize reports a container measurement.
func (w *Widget) Resize(width, height float64) {
	w.observer.Observe(width, height)
}

// SetStyles replaces the base style set (nil restores the default) and the
// per-prefecture overrides.
func (w *Widget) SetStyles(cfg *style.Set, overrides map[int]style.Override) {
	if cfg == nil {
		w.styles = style.DefaultConfig()
	} else {
		w.styles = *cfg
	}
	w.opts.PrefectureStyles = overrides
}

// SetZoom sets the zoom level, clamped to the configured bounds.
func (w *Widget) SetZoom(z float64) float64 {
	w.zoom = min(max(z, w.opts.MinZoom), w.opts.MaxZoom)
	return w.zoom
}

// ZoomBy multiplies the zoom level by factor.
func (w *Widget) ZoomBy(factor float64) float64 {
	if factor <= 0 {
		return w.zoom
	}
	return w.SetZoom(w.zoom * factor)
}

// PanBy moves the view by dx, dy viewport pixels at the current zoom. The
// centre is clamped to the dataset's projected bounds (the frame itself when
// there is no data). Pans before the first measurement are ignored.
func (w *Widget) PanBy(dx, dy float64) {
	vp := w.observer.Current()
	if !vp.Renderable() {
		return
	}
	m := projection.New(vp.Width, vp.Height, w.opts.BaseScale)
	c := w.centerPixel(m)
	minX, minY, maxX, maxY := w.panBounds(m, vp)
	p := orb.Point{
		min(max(c[0]+dx/w.zoom, minX), maxX),
		min(max(c[1]+dy/w.zoom, minY), maxY),
	}
	ll := m.Invert(p)
	w.center = &ll
}

// ResetPan recentres the view on the projection's centre.
func (w *Widget) ResetPan() {
	w.center = nil
}

func (w *Widget) centerPixel(m projection.Mercator) orb.Point {
	if w.center == nil {
		return orb.Point{m.Translate[0], m.Translate[1]}
	}
	return m.Project(*w.center)
}

// panBounds is the pixel box the view centre may move within.
func (w *Widget) panBounds(m projection.Mercator, vp viewport.Viewport) (minX, minY, maxX, maxY float64) {
	if w.data == nil {
		return 0, 0, float64(vp.Width), float64(vp.Height)
	}
	b := w.data.Bound()
	var px orb.MultiPoint
	for _, ll := range []orb.Point{b.Min, b.Max, {b.Min[0], b.Max[1]}, {b.Max[0], b.Min[1]}} {
		px = append(px, m.Project(ll))
	}
	pb := px.Bound()
	return pb.Min[0], pb.Min[1], pb.Max[0], pb.Max[1]
}

// Resolve returns the style set for one prefecture as it would render now.
func (w *Widget) Resolve(id int, isSelected bool) style.Set {
	return style.Resolve(id, isSelected, w.styles, w.opts.PrefectureStyles)
}

// Frame renders the widget. It reports false while the viewport has a
// non-positive side, since a zero scale would collapse the projection.
func (w *Widget) Frame() (Frame, bool) {
	vp := w.observer.Current()
	if !vp.Renderable() {
		return Frame{}, false
	}

	m := projection.New(vp.Width, vp.Height, w.opts.BaseScale)
	c := w.centerPixel(m)
	f := Frame{
		Width:     vp.Width,
		Height:    vp.Height,
		Scale:     m.Scale,
		Zoom:      w.zoom,
		CenterX:   c[0],
		CenterY:   c[1],
		ClassName: w.opts.ClassName,
	}
	if w.data == nil {
		return f, true
	}

	paths := w.projectedPaths(vp)
	sel := w.ctrl.Current()
	f.Shapes = make([]Shape, 0, w.data.Len())
	for _, r := range w.data.Regions() {
		isSelected := sel.Contains(r.ID)
		f.Shapes = append(f.Shapes, Shape{
			Properties: r.Properties,
			Selected:   isSelected,
			Style:      w.Resolve(r.ID, isSelected),
			Path:       paths[r.ID],
		})
	}
	return f, true
}

// Close unmounts the widget; later resizes are ignored.
func (w *Widget) Close() {
	w.unobserve()
	w.observer.Close()
}

// projectedPaths returns SVG path data per region, reusing the previous
// projection while the viewport is unchanged.
func (w *Widget) projectedPaths(vp viewport.Viewport) map[int]string {
	if w.paths != nil && w.pathsFor == vp {
		return w.paths
	}
	m := projection.New(vp.Width, vp.Height, w.opts.BaseScale)
	paths := make(map[int]string, w.data.Len())
	for _, r := range w.data.Regions() {
		paths[r.ID] = projection.PathData(m.ProjectMultiPolygon(r.Geometry, w.opts.Tolerance))
	}
	w.paths, w.pathsFor = paths, vp
	return paths
}

func (w *Widget) region(id int) (geometry.Region, error) {
	if w.data == nil {
		return geometry.Region{}, fmt.Errorf("%w: %d", ErrUnknownRegion, id)
	}
	r, ok := w.data.Get(id)
	if !ok {
		return geometry.Region{}, fmt.Errorf("%w: %d", ErrUnknownRegion, id)
	}
	return r, nil
}
