package render

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Projection is a spherical Mercator projection scaled and translated to fit
// a width x height viewport. Screen y grows downward.
type Projection struct {
	Scale float64
	TX    float64
	TY    float64
}

// mercator projects lon/lat in degrees onto the unit Mercator plane with y
// pointing down.
func mercator(lon, lat float64) (float64, float64) {
	lambda := lon * math.Pi / 180
	phi := lat * math.Pi / 180
	return lambda, -math.Log(math.Tan(math.Pi/4 + phi/2))
}

// FitSize returns the projection that centers b in the viewport at the
// largest scale that keeps it fully visible.
func FitSize(b *geom.Bounds, width, height float64) Projection {
	if b == nil || b.IsEmpty() {
		return Projection{Scale: 1}
	}
	x0, y1 := mercator(b.Min(0), b.Min(1))
	x1, y0 := mercator(b.Max(0), b.Max(1))

	dx, dy := x1-x0, y1-y0
	var k float64
	switch {
	case dx == 0 && dy == 0:
		k = 1
	case dx == 0:
		k = height / dy
	case dy == 0:
		k = width / dx
	default:
		k = math.Min(width/dx, height/dy)
	}
	return Projection{
		Scale: k,
		TX:    (width - k*(x0+x1)) / 2,
		TY:    (height - k*(y0+y1)) / 2,
	}
}

// Project maps lon/lat to viewport coordinates.
func (p Projection) Project(lon, lat float64) (float64, float64) {
	x, y := mercator(lon, lat)
	return p.Scale*x + p.TX, p.Scale*y + p.TY
}

// Rings projects every ring of g. Polygons contribute their outer ring
// followed by their holes.
func (p Projection) Rings(g geom.T) [][][2]float64 {
	var polys []*geom.Polygon
	switch t := g.(type) {
	case *geom.Polygon:
		polys = []*geom.Polygon{t}
	case *geom.MultiPolygon:
		for i := 0; i < t.NumPolygons(); i++ {
			polys = append(polys, t.Polygon(i))
		}
	}

	var out [][][2]float64
	for _, poly := range polys {
		stride := poly.Stride()
		for i := 0; i < poly.NumLinearRings(); i++ {
			flat := poly.LinearRing(i).FlatCoords()
			ring := make([][2]float64, 0, len(flat)/stride)
			for j := 0; j+1 < len(flat); j += stride {
				x, y := p.Project(flat[j], flat[j+1])
				ring = append(ring, [2]float64{x, y})
			}
			out = append(out, ring)
		}
	}
	return out
}
