package geometry

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
)

type topology struct {
	Type      string                  `json:"type"`
	Transform *topoTransform          `json:"transform"`
	Objects   map[string]topoGeometry `json:"objects"`
	Arcs      [][][2]float64          `json:"arcs"`
}

type topoTransform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoGeometry struct {
	Type       string          `json:"type"`
	Arcs       json.RawMessage `json:"arcs"`
	Properties map[string]any  `json:"properties"`
	Geometries []topoGeometry  `json:"geometries"`
}

func decodeTopoJSON(data []byte, objectKey string) ([]Region, error) {
	var topo topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("parsing topojson: %w", err)
	}

	obj, ok := topo.Objects[objectKey]
	if !ok {
		if len(topo.Objects) != 1 {
			return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, objectKey)
		}
		for _, only := range topo.Objects {
			obj = only
		}
	}

	arcs := decodeArcs(topo.Arcs, topo.Transform)

	geoms := obj.Geometries
	if obj.Type != "GeometryCollection" {
		geoms = []topoGeometry{obj}
	}

	regions := make([]Region, 0, len(geoms))
	for i, g := range geoms {
		mp, err := g.multiPolygon(arcs)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		if mp == nil {
			continue
		}
		props, err := propertiesFrom(g.Properties)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		regions = append(regions, Region{Properties: props, Geometry: mp})
	}
	return regions, nil
}

// decodeArcs turns quantized, delta-encoded arcs into absolute positions.
func decodeArcs(raw [][][2]float64, t *topoTransform) [][]orb.Point {
	arcs := make([][]orb.Point, len(raw))
	for i, arc := range raw {
		points := make([]orb.Point, len(arc))
		var x, y float64
		for j, p := range arc {
			if t == nil {
				points[j] = orb.Point{p[0], p[1]}
				continue
			}
			x += p[0]
			y += p[1]
			points[j] = orb.Point{x*t.Scale[0] + t.Translate[0], y*t.Scale[1] + t.Translate[1]}
		}
		arcs[i] = points
	}
	return arcs
}

func (g topoGeometry) multiPolygon(arcs [][]orb.Point) (orb.MultiPolygon, error) {
	switch g.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return nil, fmt.Errorf("polygon arcs: %w", err)
		}
		poly, err := stitchPolygon(rings, arcs)
		if err != nil {
			return nil, err
		}
		return orb.MultiPolygon{poly}, nil
	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return nil, fmt.Errorf("multipolygon arcs: %w", err)
		}
		mp := make(orb.MultiPolygon, 0, len(polys))
		for _, rings := range polys {
			poly, err := stitchPolygon(rings, arcs)
			if err != nil {
				return nil, err
			}
			mp = append(mp, poly)
		}
		return mp, nil
	}
	return nil, nil
}

func stitchPolygon(rings [][]int, arcs [][]orb.Point) (orb.Polygon, error) {
	poly := make(orb.Polygon, 0, len(rings))
	for _, refs := range rings {
		ring, err := stitchRing(refs, arcs)
		if err != nil {
			return nil, err
		}
		poly = append(poly, ring)
	}
	return poly, nil
}

// stitchRing joins arcs into one ring. A negative index ~i means arc i
// reversed. Consecutive arcs share an endpoint, which is kept once.
func stitchRing(refs []int, arcs [][]orb.Point) (orb.Ring, error) {
	var ring orb.Ring
	for _, ref := range refs {
		idx, reversed := ref, false
		if ref < 0 {
			idx, reversed = ^ref, true
		}
		if idx >= len(arcs) {
			return nil, fmt.Errorf("arc index %d out of range", idx)
		}
		arc := arcs[idx]
		if len(ring) > 0 {
			ring = ring[:len(ring)-1]
		}
		if reversed {
			for k := len(arc) - 1; k >= 0; k-- {
				ring = append(ring, arc[k])
			}
		} else {
			ring = append(ring, arc...)
		}
	}
	return ring, nil
}
