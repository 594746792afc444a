package render

import (
	"image/color"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/zalepa/commutemap/census"
	"github.com/zalepa/commutemap/classify"
)

const (
	tooltipOffsetX    = 10
	tooltipOffsetY    = 20
	tooltipLineHeight = 20
	tooltipPadding    = 20
	tooltipFontSize   = 12
)

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatPercent renders pct with two decimals.
func FormatPercent(pct float64) string {
	return printer.Sprintf("%.2f%%", pct)
}

// commutePhrases completes "N people who live here ..." per category.
var commutePhrases = map[census.Category]string{
	census.DroveAlone: "drive alone to work",
	census.NoWork:     "are not employed",
	census.Transit:    "take transit to work",
	census.CarpoolDr:  "drive a carpool to work",
	census.CarpoolPa:  "ride in a carpool to work",
	census.Bicycle:    "bicycle to work",
	census.Motorcycle: "ride a motorcycle to work",
	census.Walk:       "walk to work",
	census.WorkAtHome: "work at home",
}

// Tooltip is the hover box for one community. Width and Height are in
// points; Width is the widest line plus padding.
type Tooltip struct {
	Lines  []string `json:"lines"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
}

// NewTooltip builds the tooltip for a classified community.
func NewTooltip(name string, c classify.Classification, designated census.Category, categories []census.Category) Tooltip {
	lines := []string{name}
	switch c.Mode {
	case classify.ModePercentage:
		if c.HasData {
			lines = append(lines, FormatCount(c.Count)+" people who live here "+commutePhrase(designated))
		} else {
			lines = append(lines, "non-residential community")
		}
	case classify.ModeBreakdown:
		if c.HasData {
			for _, cat := range categories {
				lines = append(lines, string(cat)+": "+FormatCount(c.Record.Count(cat)))
			}
		}
	}

	sty := tooltipStyle()
	var widest float64
	for _, l := range lines {
		w := math.Round(float64(sty.Width(l)))
		if w > widest {
			widest = w
		}
	}
	return Tooltip{
		Lines:  lines,
		Width:  widest + tooltipPadding,
		Height: float64(tooltipLineHeight * len(lines)),
	}
}

// At returns the tooltip's top-left corner for a pointer at (x, y).
func (t Tooltip) At(x, y float64) (float64, float64) {
	return x + tooltipOffsetX, y + tooltipOffsetY
}

func commutePhrase(c census.Category) string {
	if p, ok := commutePhrases[c]; ok {
		return p
	}
	return string(c) + " to work"
}

func tooltipStyle() draw.TextStyle {
	sty := draw.TextStyle{
		Color:   color.White,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
	}
	sty.Font.Size = vg.Points(tooltipFontSize)
	return sty
}
