// Package boundary reads community boundary polygons from GeoJSON or ESRI
// shapefiles.
package boundary

import (
	"sort"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Property names carrying the community code and display name.
const (
	CodeProperty = "comm_code"
	NameProperty = "name"
)

// Feature is one community boundary. Geometry is a *geom.Polygon or
// *geom.MultiPolygon in longitude/latitude.
type Feature struct {
	Code     string
	Name     string
	Geometry geom.T
}

// Centroid returns the feature's area centroid.
func (f Feature) Centroid() (geom.Coord, error) {
	return xy.Centroid(f.Geometry)
}

// Polygons returns the feature's polygons, splitting multipolygons.
func (f Feature) Polygons() []*geom.Polygon {
	switch g := f.Geometry.(type) {
	case *geom.Polygon:
		return []*geom.Polygon{g}
	case *geom.MultiPolygon:
		out := make([]*geom.Polygon, 0, g.NumPolygons())
		for i := 0; i < g.NumPolygons(); i++ {
			out = append(out, g.Polygon(i))
		}
		return out
	}
	return nil
}

// Contains reports whether the point lies inside the feature, honoring holes.
func (f Feature) Contains(lon, lat float64) bool {
	pt := geom.Coord{lon, lat}
	for _, p := range f.Polygons() {
		if p.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(p.Layout(), pt, p.LinearRing(0).FlatCoords()) {
			continue
		}
		inHole := false
		for i := 1; i < p.NumLinearRings(); i++ {
			if xy.IsPointInRing(p.Layout(), pt, p.LinearRing(i).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}

// Collection is the set of community boundaries, in source order.
type Collection struct {
	Features []Feature
}

// Codes returns every feature's community code in source order.
func (c *Collection) Codes() []string {
	out := make([]string, len(c.Features))
	for i, f := range c.Features {
		out[i] = f.Code
	}
	return out
}

// Find returns the feature with the given code.
func (c *Collection) Find(code string) (Feature, bool) {
	for _, f := range c.Features {
		if f.Code == code {
			return f, true
		}
	}
	return Feature{}, false
}

// Bounds returns the extent of every feature.
func (c *Collection) Bounds() *geom.Bounds {
	b := geom.NewBounds(geom.XY)
	for _, f := range c.Features {
		if f.Geometry != nil {
			b.Extend(f.Geometry)
		}
	}
	return b
}

// Locate returns the feature containing the point.
func (c *Collection) Locate(lon, lat float64) (Feature, bool) {
	for _, f := range c.Features {
		if f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bounds()
		if lon < b.Min(0) || lon > b.Max(0) || lat < b.Min(1) || lat > b.Max(1) {
			continue
		}
		if f.Contains(lon, lat) {
			return f, true
		}
	}
	return Feature{}, false
}

// Names maps community codes to display names.
func (c *Collection) Names() map[string]string {
	out := make(map[string]string, len(c.Features))
	for _, f := range c.Features {
		out[f.Code] = f.Name
	}
	return out
}

// SortedCodes returns the feature codes in lexical order.
func (c *Collection) SortedCodes() []string {
	out := c.Codes()
	sort.Strings(out)
	return out
}
