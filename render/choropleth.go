package render

import (
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/zalepa/commutemap/census"
	"github.com/zalepa/commutemap/classify"
	"github.com/zalepa/commutemap/dataset"
)

// Caption credits the census source.
const Caption = "Source: Calgary Civic Census 2016"

const (
	legendWidth  = 200
	swatchSize   = 16
	legendRow    = 20
	mapMargin    = 10
	labelSize    = 5
	legendFont   = 9
	captionFont  = 9
	outlineWidth = 0.5
)

var (
	outlineColor = color.White
	textColor    = color.Gray{Y: 30}
)

// Map is a choropleth ready to draw.
type Map struct {
	Dataset *dataset.Dataset
	Result  *classify.Result
	Palette *Palette
	// Labels draws each community code at its centroid.
	Labels bool
	Caption string
}

// WriteMap draws m at width x height pixels and writes it to w in format.
func WriteMap(w io.Writer, format string, width, height int, m *Map) error {
	return write(w, format, Pixels(width), Pixels(height), m.Draw)
}

// Draw renders the map, legend and caption onto c.
func (m *Map) Draw(c draw.Canvas) {
	fillRect(c, c.Rectangle, color.White)

	mapArea := draw.Crop(c, Pixels(mapMargin), -Pixels(legendWidth), Pixels(mapMargin), -Pixels(mapMargin))
	if m.Result.Mode == classify.ModeBreakdown {
		mapArea = draw.Crop(c, Pixels(mapMargin), -Pixels(mapMargin), Pixels(mapMargin), -Pixels(mapMargin))
	}
	w := float64(mapArea.Max.X - mapArea.Min.X)
	h := float64(mapArea.Max.Y - mapArea.Min.Y)

	regions := Regions(m.Dataset, m.Result, m.Palette, w, h)
	toCanvas := func(pt [2]float64) vg.Point {
		return vg.Point{X: mapArea.Min.X + vg.Length(pt[0]), Y: mapArea.Max.Y - vg.Length(pt[1])}
	}

	for _, r := range regions {
		var path vg.Path
		for _, ring := range r.Rings {
			for i, pt := range ring {
				if i == 0 {
					path.Move(toCanvas(pt))
				} else {
					path.Line(toCanvas(pt))
				}
			}
			path.Close()
		}
		c.SetColor(r.style.Color)
		c.Fill(path)

		lines := make([][]vg.Point, 0, len(r.Rings))
		for _, ring := range r.Rings {
			pts := make([]vg.Point, len(ring))
			for i, pt := range ring {
				pts[i] = toCanvas(pt)
			}
			lines = append(lines, pts)
		}
		c.StrokeLines(draw.LineStyle{Color: outlineColor, Width: vg.Points(outlineWidth)}, lines...)
	}

	if m.Labels {
		for _, r := range regions {
			if r.HasLabel {
				fillCenteredText(c, r.Code, vg.Points(labelSize), toCanvas(r.Label), textColor)
			}
		}
	}

	m.drawLegend(c)

	if m.Caption != "" {
		fillText(c, m.Caption, vg.Points(captionFont), c.Min.X+Pixels(mapMargin), c.Min.Y+Pixels(mapMargin), textColor)
	}
}

func (m *Map) drawLegend(c draw.Canvas) {
	entries := m.Palette.Legend(m.Result.Mode, m.Dataset.Categories)
	if len(entries) == 0 {
		return
	}

	x := c.Max.X - Pixels(legendWidth) + Pixels(mapMargin)
	y := c.Max.Y - Pixels(mapMargin)
	for _, line := range LegendTitle(m.Result.Mode, m.Result.Designated) {
		y -= vg.Points(legendFont + 3)
		fillText(c, line, vg.Points(legendFont), x, y, textColor)
	}
	y -= Pixels(legendRow / 2)

	for _, e := range entries {
		y -= Pixels(legendRow)
		sw := vg.Rectangle{
			Min: vg.Point{X: x, Y: y},
			Max: vg.Point{X: x + Pixels(swatchSize), Y: y + Pixels(swatchSize)},
		}
		fillRect(c, sw, e.Color)
		if e.Color == m.Palette.Unavailable.Color || e.Label == classify.NonResidential.String() {
			strokeRect(c, sw, color.Black, vg.Points(outlineWidth))
		}
		fillText(c, e.Label, vg.Points(legendFont+1), x+Pixels(swatchSize+8), y+Pixels(4), textColor)
	}
}

// LegendTitle returns the legend heading lines for mode.
func LegendTitle(mode classify.Mode, designated census.Category) []string {
	switch mode {
	case classify.ModeDominant:
		return []string{"MAJORITY MODE OF", "TRAVEL TO WORK"}
	case classify.ModePercentage:
		if designated == census.Bicycle {
			return []string{"PERCENTAGE OF CYCLING TO WORK", "(OF TOTAL THAT CYCLE TO WORK", "IN CALGARY)"}
		}
		label := strings.ToUpper(CategoryLabel(designated))
		return []string{"PERCENTAGE OF " + label, "(OF CITYWIDE TOTAL)"}
	}
	return nil
}
