// Package geometry loads the prefecture boundary dataset.
//
// Two encodings are understood: a GeoJSON FeatureCollection and a TopoJSON
// Topology (as published by dataofjapan/land). Every feature must carry the
// properties id, nam and nam_ja; nothing else in the schema is checked.
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultObjectKey is the TopoJSON object holding the prefectures.
const DefaultObjectKey = "japan"

var (
	ErrUnsupportedFormat = errors.New("unsupported geometry format")
	ErrObjectNotFound    = errors.New("topojson object not found")
	ErrNoFeatures        = errors.New("dataset contains no prefectures")
)

// Properties identifies one prefecture.
type Properties struct {
	ID     int    `json:"id" doc:"Prefecture code" example:"13"`
	Name   string `json:"nam" doc:"Romanized name" example:"Tokyo To"`
	NameJa string `json:"nam_ja" doc:"Name in Japanese" example:"東京都"`
}

// Region is an immutable prefecture boundary.
type Region struct {
	Properties
	Geometry orb.MultiPolygon `json:"-"`
}

// Dataset is the loaded, read-only collection of regions ordered by id.
type Dataset struct {
	regions []Region
	byID    map[int]int
}

// Load reads and decodes the dataset at path.
func Load(path, objectKey string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading geometry: %w", err)
	}
	ds, err := Decode(data, objectKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Decode detects the encoding of data and builds a Dataset.
func Decode(data []byte, objectKey string) (*Dataset, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parsing geometry: %w", err)
	}

	var (
		regions []Region
		err     error
	)
	switch head.Type {
	case "FeatureCollection":
		regions, err = decodeGeoJSON(data)
	case "Topology":
		if objectKey == "" {
			objectKey = DefaultObjectKey
		}
		regions, err = decodeTopoJSON(data, objectKey)
	default:
		return nil, fmt.Errorf("%w: type %q", ErrUnsupportedFormat, head.Type)
	}
	if err != nil {
		return nil, err
	}
	return NewDataset(regions)
}

// NewDataset indexes regions by id. Regions sharing an id are merged into one
// multipolygon.
func NewDataset(regions []Region) (*Dataset, error) {
	if len(regions) == 0 {
		return nil, ErrNoFeatures
	}

	ds := &Dataset{byID: make(map[int]int, len(regions))}
	for _, r := range regions {
		if i, ok := ds.byID[r.ID]; ok {
			ds.regions[i].Geometry = append(ds.regions[i].Geometry, r.Geometry...)
			continue
		}
		ds.byID[r.ID] = len(ds.regions)
		ds.regions = append(ds.regions, r)
	}

	sort.Slice(ds.regions, func(i, j int) bool { return ds.regions[i].ID < ds.regions[j].ID })
	for i, r := range ds.regions {
		ds.byID[r.ID] = i
	}
	return ds, nil
}

// Regions returns every region ordered by id. The slice must not be modified.
func (d *Dataset) Regions() []Region {
	return d.regions
}

// Len returns the number of regions.
func (d *Dataset) Len() int {
	return len(d.regions)
}

// Get returns the region with the given id.
func (d *Dataset) Get(id int) (Region, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Region{}, false
	}
	return d.regions[i], true
}

// Locate returns the region containing the lon/lat point.
func (d *Dataset) Locate(p orb.Point) (Region, bool) {
	for _, r := range d.regions {
		if !r.Geometry.Bound().Contains(p) {
			continue
		}
		if planar.MultiPolygonContains(r.Geometry, p) {
			return r, true
		}
	}
	return Region{}, false
}

// Bound returns the bounding box of the whole dataset.
func (d *Dataset) Bound() orb.Bound {
	b := d.regions[0].Geometry.Bound()
	for _, r := range d.regions[1:] {
		b = b.Union(r.Geometry.Bound())
	}
	return b
}

// toMultiPolygon normalizes polygonal geometry. Other types yield nil.
func toMultiPolygon(g orb.Geometry) orb.MultiPolygon {
	switch v := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{v}
	case orb.MultiPolygon:
		return v
	}
	return nil
}

func propInt(props map[string]any, key string) (int, bool) {
	switch v := props[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	}
	return 0, false
}

func propString(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func propertiesFrom(props map[string]any) (Properties, error) {
	id, ok := propInt(props, "id")
	if !ok {
		return Properties{}, fmt.Errorf("feature without integer id property")
	}
	return Properties{
		ID:     id,
		Name:   propString(props, "nam"),
		NameJa: propString(props, "nam_ja"),
	}, nil
}
