// Package page is the demo surface around the map widget: grouped coloring,
// a hover tooltip and a clear-selection control.
package page

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-japanmap/internal/style"
)

// Config is the page's coloring and selection setup. It is passed in
// explicitly; nothing here is process-wide.
type Config struct {
	// Groups maps a prefecture id to a group name.
	Groups map[int]string `yaml:"groups"`
	// Colors maps a group name to its fill color.
	Colors map[string]string `yaml:"colors"`
	// Styles is the base style set for every prefecture.
	Styles      style.Set `yaml:"styles"`
	MultiSelect bool      `yaml:"multiSelect"`
	// GroupStroke and GroupStrokeWidth apply to grouped fills.
	GroupStroke      string  `yaml:"groupStroke"`
	GroupStrokeWidth float64 `yaml:"groupStrokeWidth"`
}

// DefaultConfig returns the eight-region palette.
func DefaultConfig() Config {
	groups := make(map[int]string, 47)
	assign := func(name string, from, to int) {
		for id := from; id <= to; id++ {
			groups[id] = name
		}
	}
	assign("hokkaido", 1, 1)
	assign("tohoku", 2, 7)
	assign("kanto", 8, 14)
	assign("chubu", 15, 23)
	assign("kansai", 24, 30)
	assign("chugoku", 31, 35)
	assign("shikoku", 36, 39)
	assign("kyushu", 40, 47)

	return Config{
		Groups: groups,
		Colors: map[string]string{
			"hokkaido": "#93c5fd",
			"tohoku":   "#86efac",
			"kanto":    "#fca5a5",
			"chubu":    "#fde68a",
			"kansai":   "#c4b5fd",
			"chugoku":  "#fdba74",
			"shikoku":  "#67e8f9",
			"kyushu":   "#f9a8d4",
		},
		Styles: style.Set{
			Default:  style.Style{Fill: "#e5e7eb", Stroke: "#ffffff", StrokeWidth: 0.5},
			Hover:    style.Style{Fill: "#a78bfa", Stroke: "#ffffff", StrokeWidth: 0.75},
			Selected: style.Style{Fill: "#7c3aed", Stroke: "#ffffff", StrokeWidth: 1},
		},
		MultiSelect:      true,
		GroupStroke:      "#ffffff",
		GroupStrokeWidth: 0.5,
	}
}

// LoadConfig reads a YAML file over the defaults. Keys absent from the file
// keep their default values; a groups or colors map in the file replaces the
// default map entirely.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading page config: %w", err)
	}

	var file Config
	file.Styles = cfg.Styles
	file.MultiSelect = cfg.MultiSelect
	file.GroupStroke = cfg.GroupStroke
	file.GroupStrokeWidth = cfg.GroupStrokeWidth
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parsing page config %s: %w", path, err)
	}
	if file.Groups == nil {
		file.Groups = cfg.Groups
	}
	if file.Colors == nil {
		file.Colors = cfg.Colors
	}
	return file, nil
}

// BuildGroupStyles gives every grouped prefecture a default-state override
// colored by its group. Prefectures whose group has no color are left out.
func BuildGroupStyles(cfg Config) map[int]style.Override {
	out := make(map[int]style.Override, len(cfg.Groups))
	for id, group := range cfg.Groups {
		color, ok := cfg.Colors[group]
		if !ok {
			continue
		}
		out[id] = style.Override{
			Default: &style.Partial{
				Fill:        style.String(color),
				Stroke:      style.String(cfg.GroupStroke),
				StrokeWidth: style.Float(cfg.GroupStrokeWidth),
			},
		}
	}
	return out
}

// LegendItem is one group swatch.
type LegendItem struct {
	Label string `json:"label" doc:"Group name"`
	Color string `json:"color" doc:"Group fill color (CSS)"`
	Count int    `json:"count" doc:"Number of prefectures in the group"`
}

// Legend lists the colored groups by name.
func Legend(cfg Config) []LegendItem {
	counts := make(map[string]int)
	for _, g := range cfg.Groups {
		counts[g]++
	}
	items := make([]LegendItem, 0, len(cfg.Colors))
	for name, color := range cfg.Colors {
		items = append(items, LegendItem{Label: name, Color: color, Count: counts[name]})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}
