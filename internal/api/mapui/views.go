package mapui

import (
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"github.com/joeblew999/plat-japanmap/internal/page"
	"github.com/joeblew999/plat-japanmap/internal/style"
)

// part selects which page fragments an update re-renders.
type part uint8

const (
	partMap part = 1 << iota
	partTooltip
	partControls
	partLegend

	partAll = partMap | partTooltip | partControls | partLegend
)

// actionParts lists the fragments each map action can change.
var actionParts = map[string]part{
	"click":  partMap | partControls,
	"hover":  partTooltip,
	"leave":  partTooltip,
	"resize": partMap,
	"zoom":   partMap,
	"pan":    partMap,
	"groups": partMap | partControls | partLegend,
	"clear":  partMap | partControls,
}

// Fragment roots, replaced in outer mode.
const (
	selectorMap      = "#map"
	selectorTooltip  = "#map-tooltip"
	selectorControls = "#map-controls"
	selectorLegend   = "#map-legend"
)

type mapData struct {
	Available  bool
	Renderable bool
	Width      int
	Height     int
	Zoom       float64
	CenterX    float64
	CenterY    float64
	ClassName  string
	Shapes     []shapeView
}

type shapeView struct {
	ID       int
	Name     string
	NameJa   string
	Selected bool
	Path     string
	Style    template.CSS
}

type legendData struct {
	Items []legendView
}

type legendView struct {
	Label  string
	Count  int
	Swatch template.CSS
}

// pageData feeds the index shell.
type pageData struct {
	ClassName string
	Map       mapData
	View      page.View
	Legend    legendData
}

func newMapData(v page.View) mapData {
	d := mapData{
		Available:  v.Available,
		Renderable: v.Renderable,
		Width:      v.Frame.Width,
		Height:     v.Frame.Height,
		Zoom:       v.Frame.Zoom,
		CenterX:    v.Frame.CenterX,
		CenterY:    v.Frame.CenterY,
		ClassName:  v.Frame.ClassName,
	}
	for _, s := range v.Frame.Shapes {
		d.Shapes = append(d.Shapes, shapeView{
			ID:       s.Properties.ID,
			Name:     s.Properties.Name,
			NameJa:   s.Properties.NameJa,
			Selected: s.Selected,
			Path:     s.Path,
			Style:    cssVars(s.Style),
		})
	}
	return d
}

func newLegendData(v page.View) legendData {
	d := legendData{}
	for _, item := range v.Legend {
		d.Items = append(d.Items, legendView{
			Label:  item.Label,
			Count:  item.Count,
			Swatch: template.CSS("background:" + cssValue(item.Color)),
		})
	}
	return d
}

func newPageData(v page.View) pageData {
	return pageData{
		ClassName: v.Frame.ClassName,
		Map:       newMapData(v),
		View:      v,
		Legend:    newLegendData(v),
	}
}

// cssVars encodes the three interaction states as custom properties read by
// the .prefecture rules in map.css.
func cssVars(s style.Set) template.CSS {
	var b strings.Builder
	writeState(&b, "", s.Default)
	writeState(&b, "hover-", s.Hover)
	writeState(&b, "selected-", s.Selected)
	return template.CSS(b.String())
}

func writeState(b *strings.Builder, prefix string, s style.Style) {
	fmt.Fprintf(b, "--%sfill:%s;", prefix, cssValue(s.Fill))
	fmt.Fprintf(b, "--%sstroke:%s;", prefix, cssValue(s.Stroke))
	fmt.Fprintf(b, "--%sstroke-width:%s;", prefix, strconv.FormatFloat(s.StrokeWidth, 'f', -1, 64))
	fmt.Fprintf(b, "--%soutline:%s;", prefix, cssValue(s.OutlineOrNone()))
}

var cssSafe = regexp.MustCompile(`^[#a-zA-Z0-9(),.% -]+$`)

// cssValue passes color-like values through and replaces anything else with
// "none".
func cssValue(v string) string {
	if !cssSafe.MatchString(v) || strings.Contains(v, "--") {
		return "none"
	}
	return v
}
