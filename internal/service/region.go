package service

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/joeblew999/plat-japanmap/internal/geometry"
	"github.com/joeblew999/plat-japanmap/internal/page"
	"github.com/joeblew999/plat-japanmap/internal/style"
)

// RegionService answers catalog queries over the loaded dataset.
type RegionService struct {
	data   *geometry.Dataset
	cfg    page.Config
	groups map[int]style.Override
	infos  []RegionInfo
	index  map[int]int
}

// NewRegionService indexes data, which may be nil when geometry is missing.
func NewRegionService(data *geometry.Dataset, cfg page.Config) *RegionService {
	s := &RegionService{data: data, cfg: cfg, groups: page.BuildGroupStyles(cfg), index: map[int]int{}}
	if data == nil {
		return s
	}
	for i, r := range data.Regions() {
		group := cfg.Groups[r.ID]
		b := r.Geometry.Bound()
		s.infos = append(s.infos, RegionInfo{
			Properties: r.Properties,
			Group:      group,
			Color:      cfg.Colors[group],
			AreaKm2:    math.Abs(geo.Area(r.Geometry)) / 1e6,
			BBox:       [4]float64{b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()},
		})
		s.index[r.ID] = i
	}
	return s
}

// Available reports whether geometry was loaded.
func (s *RegionService) Available() bool {
	return s.data != nil
}

// Len returns the number of loaded prefectures.
func (s *RegionService) Len() int {
	return len(s.infos)
}

// List returns every prefecture ordered by id.
func (s *RegionService) List() []RegionInfo {
	out := make([]RegionInfo, len(s.infos))
	copy(out, s.infos)
	return out
}

// Get returns one prefecture.
func (s *RegionService) Get(id int) (RegionInfo, bool) {
	i, ok := s.index[id]
	if !ok {
		return RegionInfo{}, false
	}
	return s.infos[i], true
}

// Locate returns the prefecture containing lon/lat.
func (s *RegionService) Locate(lon, lat float64) (RegionInfo, bool) {
	if s.data == nil {
		return RegionInfo{}, false
	}
	r, ok := s.data.Locate(orb.Point{lon, lat})
	if !ok {
		return RegionInfo{}, false
	}
	return s.Get(r.ID)
}

// Style resolves the style set a prefecture renders with on a fresh page,
// given its selection state and whether group coloring is on.
func (s *RegionService) Style(id int, selected, grouped bool) (style.Set, bool) {
	if _, ok := s.index[id]; !ok {
		return style.Set{}, false
	}
	var overrides map[int]style.Override
	if grouped {
		overrides = s.groups
	}
	return style.Resolve(id, selected, s.cfg.Styles, overrides), true
}

// Groups returns the configured groups ordered by name.
func (s *RegionService) Groups() []GroupInfo {
	byName := map[string]*GroupInfo{}
	for name, color := range s.cfg.Colors {
		byName[name] = &GroupInfo{Name: name, Color: color, Prefectures: []int{}}
	}
	for id, name := range s.cfg.Groups {
		if g, ok := byName[name]; ok {
			g.Prefectures = append(g.Prefectures, id)
		}
	}

	out := make([]GroupInfo, 0, len(byName))
	for _, g := range byName {
		sort.Ints(g.Prefectures)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
