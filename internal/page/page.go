package page

import (
	"log/slog"

	"github.com/joeblew999/plat-japanmap/internal/geometry"
	"github.com/joeblew999/plat-japanmap/internal/selection"
	"github.com/joeblew999/plat-japanmap/internal/style"
	"github.com/joeblew999/plat-japanmap/internal/widget"
)

// Page owns the demo state and drives a controlled widget.
// Like the widget, it is not safe for concurrent use.
type Page struct {
	cfg         Config
	data        *geometry.Dataset
	widget      *widget.Widget
	groupStyles map[int]style.Override
	logger      *slog.Logger

	hovered  *geometry.Properties
	selected selection.Selection
	grouped  bool
}

// Options tunes the embedded widget.
type Options struct {
	BaseScale float64
	MinZoom   float64
	MaxZoom   float64
	ClassName string
}

// New builds a page over data, which may be nil.
func New(data *geometry.Dataset, cfg Config, opts Options, logger *slog.Logger) *Page {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Page{
		cfg:         cfg,
		data:        data,
		groupStyles: BuildGroupStyles(cfg),
		logger:      logger,
		selected:    selection.Selection{},
		grouped:     true,
	}
	styles := cfg.Styles
	p.widget = widget.New(data, widget.Options{
		StyleConfig:       &styles,
		PrefectureStyles:  p.groupStyles,
		Selected:          func() selection.Selection { return p.selected },
		OnPrefectureClick: p.handleClick,
		OnPrefectureHover: p.handleHover,
		MultiSelect:       cfg.MultiSelect,
		MinZoom:           opts.MinZoom,
		MaxZoom:           opts.MaxZoom,
		ClassName:         opts.ClassName,
		BaseScale:         opts.BaseScale,
	})
	return p
}

func (p *Page) handleClick(props geometry.Properties) {
	p.selected = selection.Toggle(p.selected, props.ID, p.cfg.MultiSelect)
	p.logger.Debug("prefecture clicked", "id", props.ID, "name", props.Name, "selected", len(p.selected))
}

func (p *Page) handleHover(props *geometry.Properties) {
	p.hovered = props
}

// Click forwards a click to the widget.
func (p *Page) Click(id int) error { return p.widget.Click(id) }

// Hover forwards pointer-enter to the widget.
func (p *Page) Hover(id int) error { return p.widget.Hover(id) }

// Leave forwards pointer-leave to the widget.
func (p *Page) Leave() { p.widget.Leave() }

// Resize forwards a container measurement to the widget.
func (p *Page) Resize(width, height float64) { p.widget.Resize(width, height) }

// Zoom multiplies the widget zoom by factor and returns the new level.
func (p *Page) Zoom(factor float64) float64 { return p.widget.ZoomBy(factor) }

// Pan moves the view by dx, dy viewport pixels.
func (p *Page) Pan(dx, dy float64) { p.widget.PanBy(dx, dy) }

// ResetPan recentres the view.
func (p *Page) ResetPan() { p.widget.ResetPan() }

// ToggleGrouping switches between grouped and flat coloring.
func (p *Page) ToggleGrouping() bool {
	p.grouped = !p.grouped
	styles := p.cfg.Styles
	if p.grouped {
		p.widget.SetStyles(&styles, p.groupStyles)
	} else {
		p.widget.SetStyles(&styles, nil)
	}
	return p.grouped
}

// Clear empties the selection. It reports whether anything was cleared.
func (p *Page) Clear() bool {
	if len(p.selected) == 0 {
		return false
	}
	p.selected = selection.Selection{}
	return true
}

// Close unmounts the widget.
func (p *Page) Close() { p.widget.Close() }

// View is a read-only snapshot for rendering.
type View struct {
	Frame      widget.Frame
	Renderable bool
	Available  bool
	Hovered    *geometry.Properties
	Grouped    bool
	Selected   selection.Selection
	Legend     []LegendItem
}

// SelectedCount returns the number of selected prefectures.
func (v View) SelectedCount() int { return len(v.Selected) }

// View renders the current state.
func (p *Page) View() View {
	frame, ok := p.widget.Frame()
	v := View{
		Frame:      frame,
		Renderable: ok,
		Available:  p.data != nil,
		Grouped:    p.grouped,
		Selected:   p.selected.Clone(),
	}
	if p.hovered != nil {
		h := *p.hovered
		v.Hovered = &h
	}
	if p.grouped {
		v.Legend = Legend(p.cfg)
	}
	return v
}

// Resolve returns the style set a prefecture renders with right now.
func (p *Page) Resolve(id int) style.Set {
	return p.widget.Resolve(id, p.selected.Contains(id))
}

// Region looks up a prefecture in the page's dataset.
func (p *Page) Region(id int) (geometry.Region, bool) {
	if p.data == nil {
		return geometry.Region{}, false
	}
	return p.data.Get(id)
}
