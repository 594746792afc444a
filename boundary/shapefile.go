package boundary

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
)

// ReadShapefile reads community polygons from an ESRI shapefile. The .dbf
// must carry COMM_CODE and NAME attributes (matched case-insensitively).
func ReadShapefile(path string) (*Collection, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	codeIdx := fieldIndex(reader, CodeProperty)
	nameIdx := fieldIndex(reader, NameProperty)
	if codeIdx < 0 {
		return nil, eris.Errorf("boundary: shapefile %s has no %s attribute", path, CodeProperty)
	}

	c := &Collection{}
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		code := attribute(reader, codeIdx)
		g := polygonToMultiPolygon(poly)
		if code == "" || g == nil {
			skipped++
			continue
		}
		f := Feature{Code: code, Geometry: g}
		if nameIdx >= 0 {
			f.Name = attribute(reader, nameIdx)
		}
		c.Features = append(c.Features, f)
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	if len(c.Features) == 0 {
		return nil, eris.Errorf("boundary: no community polygons in %s", path)
	}
	return c, nil
}

func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

func attribute(reader *shp.Reader, idx int) string {
	return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
}

// polygonToMultiPolygon groups shapefile parts into polygons. Clockwise
// parts are outer rings; counter-clockwise parts are holes of the outer ring
// that contains them, or polygons of their own when no outer ring does.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	var polys []*geom.Polygon
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if len(flat) >= 8 && xy.IsRingCounterClockwise(geom.XY, flat) {
			if outer := enclosing(polys, geom.Coord{flat[0], flat[1]}); outer != nil {
				if err := outer.Push(ring); err != nil {
					zap.L().Debug("boundary: skipping malformed hole", zap.Int32("part", i), zap.Error(err))
				}
				continue
			}
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		polys = append(polys, poly)
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i, poly := range polys {
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed part", zap.Int("polygon", i), zap.Error(err))
		}
	}
	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// enclosing returns the last polygon whose outer ring contains pt.
func enclosing(polys []*geom.Polygon, pt geom.Coord) *geom.Polygon {
	for i := len(polys) - 1; i >= 0; i-- {
		if xy.IsPointInRing(geom.XY, pt, polys[i].LinearRing(0).FlatCoords()) {
			return polys[i]
		}
	}
	return nil
}
