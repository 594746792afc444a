package render

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/zalepa/commutemap/classify"
	"github.com/zalepa/commutemap/dataset"
)

// Region is one community projected into viewport coordinates (y down),
// with its fill and tooltip resolved.
type Region struct {
	Code           string                  `json:"code"`
	Name           string                  `json:"name"`
	Rings          [][][2]float64          `json:"-"`
	Path           string                  `json:"path"`
	Fill           string                  `json:"fill"`
	Label          [2]float64              `json:"label"`
	HasLabel       bool                    `json:"hasLabel"`
	Tooltip        Tooltip                 `json:"tooltip"`
	Classification classify.Classification `json:"classification"`

	style Style
}

// Regions projects every mapped community of d into a width x height
// viewport.
func Regions(d *dataset.Dataset, res *classify.Result, pal *Palette, width, height float64) []Region {
	proj := FitSize(d.Boundaries.Bounds(), width, height)

	out := make([]Region, 0, len(d.Boundaries.Features))
	for _, f := range d.Boundaries.Features {
		c := res.Get(f.Code)
		style := pal.Fill(c)
		name := d.Name(f.Code)
		r := Region{
			Code:           f.Code,
			Name:           name,
			Rings:          proj.Rings(f.Geometry),
			Fill:           Hex(style.Color),
			Tooltip:        NewTooltip(name, c, d.Designated, d.Categories),
			Classification: c,
			style:          style,
		}
		r.Path = svgPath(r.Rings)

		if centroid, err := f.Centroid(); err == nil {
			x, y := proj.Project(centroid.X(), centroid.Y())
			r.Label = [2]float64{x, y}
			r.HasLabel = true
		} else {
			zap.L().Debug("render: no centroid", zap.String("code", f.Code), zap.Error(err))
		}
		out = append(out, r)
	}
	return out
}

// svgPath renders rings as an SVG path with one closed subpath per ring.
func svgPath(rings [][][2]float64) string {
	var sb strings.Builder
	buf := make([]byte, 0, 16)
	for _, ring := range rings {
		for i, pt := range ring {
			if i == 0 {
				sb.WriteByte('M')
			} else {
				sb.WriteByte('L')
			}
			sb.Write(strconv.AppendFloat(buf[:0], pt[0], 'f', 1, 64))
			sb.WriteByte(',')
			sb.Write(strconv.AppendFloat(buf[:0], pt[1], 'f', 1, 64))
		}
		if len(ring) > 0 {
			sb.WriteByte('Z')
		}
	}
	return sb.String()
}
