// Package projection sizes and applies the Mercator projection that frames
// Japan inside the viewport.
package projection

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// BaseScale was authored against a 600px short side.
const BaseScale = 1600

// referenceSide is the short-side length BaseScale was tuned for.
const referenceSide = 600

// Rotation (λ, φ, γ in degrees) centres the archipelago in view.
var Rotation = [3]float64{-138, -38, 0}

// ComputeScale scales baseScale by the viewport's short side. Callers never
// pass a non-positive dimension.
func ComputeScale(width, height, baseScale float64) float64 {
	return math.Min(width, height) / referenceSide * baseScale
}

// Mercator is a rotated spherical Mercator projection with pixel output.
type Mercator struct {
	Scale     float64
	Translate [2]float64
	Rotate    [3]float64
}

// New returns the projection for a width×height viewport, centred in it.
func New(width, height int, baseScale float64) Mercator {
	w, h := float64(width), float64(height)
	return Mercator{
		Scale:     ComputeScale(w, h, baseScale),
		Translate: [2]float64{w / 2, h / 2},
		Rotate:    Rotation,
	}
}

// Project maps a lon/lat point in degrees to pixel coordinates.
func (m Mercator) Project(p orb.Point) orb.Point {
	lambda, phi := m.rotate(p[0]*math.Pi/180, p[1]*math.Pi/180)
	x := lambda
	y := math.Log(math.Tan((math.Pi/2 + phi) / 2))
	return orb.Point{m.Translate[0] + x*m.Scale, m.Translate[1] - y*m.Scale}
}

// Invert maps pixel coordinates back to lon/lat in degrees.
func (m Mercator) Invert(p orb.Point) orb.Point {
	x := (p[0] - m.Translate[0]) / m.Scale
	y := (m.Translate[1] - p[1]) / m.Scale
	lambda, phi := m.unrotate(x, 2*math.Atan(math.Exp(y))-math.Pi/2)
	return orb.Point{lambda * 180 / math.Pi, phi * 180 / math.Pi}
}

// rotate applies the λ rotation followed by the φ/γ rotation, all in radians.
func (m Mercator) rotate(lambda, phi float64) (float64, float64) {
	lambda += m.Rotate[0] * math.Pi / 180
	if lambda > math.Pi {
		lambda -= 2 * math.Pi
	} else if lambda < -math.Pi {
		lambda += 2 * math.Pi
	}

	dPhi := m.Rotate[1] * math.Pi / 180
	dGamma := m.Rotate[2] * math.Pi / 180
	if dPhi == 0 && dGamma == 0 {
		return lambda, phi
	}

	cosDPhi, sinDPhi := math.Cos(dPhi), math.Sin(dPhi)
	cosDGamma, sinDGamma := math.Cos(dGamma), math.Sin(dGamma)

	cosPhi := math.Cos(phi)
	x := math.Cos(lambda) * cosPhi
	y := math.Sin(lambda) * cosPhi
	z := math.Sin(phi)
	k := z*cosDPhi + x*sinDPhi

	return math.Atan2(y*cosDGamma-k*sinDGamma, x*cosDPhi-z*sinDPhi),
		math.Asin(clamp(k*cosDGamma+y*sinDGamma, -1, 1))
}

// unrotate undoes rotate.
func (m Mercator) unrotate(lambda, phi float64) (float64, float64) {
	dPhi := m.Rotate[1] * math.Pi / 180
	dGamma := m.Rotate[2] * math.Pi / 180
	if dPhi != 0 || dGamma != 0 {
		cosDPhi, sinDPhi := math.Cos(dPhi), math.Sin(dPhi)
		cosDGamma, sinDGamma := math.Cos(dGamma), math.Sin(dGamma)

		cosPhi := math.Cos(phi)
		x := math.Cos(lambda) * cosPhi
		y := math.Sin(lambda) * cosPhi
		z := math.Sin(phi)
		k := z*cosDGamma - y*sinDGamma

		lambda = math.Atan2(y*cosDGamma+z*sinDGamma, x*cosDPhi+k*sinDPhi)
		phi = math.Asin(clamp(k*cosDPhi-x*sinDPhi, -1, 1))
	}

	lambda -= m.Rotate[0] * math.Pi / 180
	if lambda > math.Pi {
		lambda -= 2 * math.Pi
	} else if lambda < -math.Pi {
		lambda += 2 * math.Pi
	}
	return lambda, phi
}

// ProjectMultiPolygon projects every ring, then simplifies in pixel space
// with the given tolerance. Rings that collapse below a triangle are dropped.
// A tolerance of zero keeps every vertex.
func (m Mercator) ProjectMultiPolygon(mp orb.MultiPolygon, tolerance float64) orb.MultiPolygon {
	out := make(orb.MultiPolygon, 0, len(mp))
	for _, poly := range mp {
		projected := make(orb.Polygon, 0, len(poly))
		for _, ring := range poly {
			r := make(orb.Ring, len(ring))
			for i, p := range ring {
				r[i] = m.Project(p)
			}
			projected = append(projected, r)
		}
		out = append(out, projected)
	}

	if tolerance > 0 {
		out = simplify.DouglasPeucker(tolerance).MultiPolygon(out)
	}

	kept := out[:0]
	for _, poly := range out {
		rings := poly[:0]
		for _, r := range poly {
			if len(r) >= 4 {
				rings = append(rings, r)
			}
		}
		if len(rings) > 0 {
			kept = append(kept, rings)
		}
	}
	return kept
}

// PathData encodes projected polygons as an SVG path "d" attribute.
func PathData(mp orb.MultiPolygon) string {
	var b strings.Builder
	buf := make([]byte, 0, 16)
	for _, poly := range mp {
		for _, ring := range poly {
			for i, p := range ring {
				if i == 0 {
					b.WriteByte('M')
				} else {
					b.WriteByte('L')
				}
				buf = strconv.AppendFloat(buf[:0], p[0], 'f', 2, 64)
				b.Write(buf)
				b.WriteByte(',')
				buf = strconv.AppendFloat(buf[:0], p[1], 'f', 2, 64)
				b.Write(buf)
			}
			if len(ring) > 0 {
				b.WriteByte('Z')
			}
		}
	}
	return b.String()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
