package render

import (
	"image/color"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/zalepa/commutemap/census"
	"github.com/zalepa/commutemap/classify"
	"github.com/zalepa/commutemap/dataset"
)

// maxCodeTicks bounds how many community codes label the x axis.
const maxCodeTicks = 120

// BarChart plots the designated category count of every community in index
// order, each bar colored by its percentage bucket.
func BarChart(d *dataset.Dataset, res *classify.Result, pal *Palette) (*plot.Plot, error) {
	codes := d.Index.Codes()
	if len(codes) == 0 {
		return nil, eris.New("render: no communities to chart")
	}

	p := plot.New()
	p.BackgroundColor = color.White
	p.Title.Text = ChartTitle(d.Designated)
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.X.Label.Text = "Communities"
	p.Y.Label.Text = ChartYLabel(d.Designated)

	for i, code := range codes {
		rec, _ := d.Index.Get(code)
		bar, err := plotter.NewBarChart(plotter.Values{float64(rec.Count(d.Designated))}, vg.Points(3))
		if err != nil {
			return nil, eris.Wrapf(err, "render: bar for %s", code)
		}
		bar.XMin = float64(i)
		bar.LineStyle.Width = 0
		bar.Color = barColor(code, d, res, pal)
		p.Add(bar)
	}

	for _, b := range classify.Buckets {
		p.Legend.Add(pal.Buckets[b].Label, swatch(pal.Buckets[b].Color))
	}
	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(8)

	p.X.Min = -1
	p.X.Max = float64(len(codes))
	p.X.Tick.Marker = codeTicks(codes)
	p.X.Tick.Label.Font.Size = vg.Points(5)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0
	p.Y.Tick.Marker = countTicks{}
	p.Add(plotter.NewGrid())

	return p, nil
}

// WriteChart renders the bar chart at width x height pixels.
func WriteChart(w io.Writer, format string, width, height int, p *plot.Plot) error {
	return write(w, format, Pixels(width), Pixels(height), p.Draw)
}

// ChartTitle is the heading of the bar chart.
func ChartTitle(designated census.Category) string {
	return "Residents who " + commutePhrase(designated) + ", by community"
}

// ChartYLabel is the bar chart's y axis label.
func ChartYLabel(designated census.Category) string {
	if designated == census.Bicycle {
		return "Amount of people riding Bicycle to work"
	}
	return "Amount of people who " + commutePhrase(designated)
}

// barColor colors a bar by its community's bucket. Census rows absent from
// res, such as rows without a boundary, are bucketed from the index.
func barColor(code string, d *dataset.Dataset, res *classify.Result, pal *Palette) color.Color {
	if c := res.Get(code); c.Mode == classify.ModePercentage && c.HasData {
		return pal.Buckets[c.Bucket].Color
	}
	rec, ok := d.Index.Get(code)
	if !ok {
		return pal.Buckets[classify.NonResidential].Color
	}
	pct, err := classify.Percent(rec.Count(d.Designated), d.CitywideTotal)
	if err != nil {
		return pal.Buckets[classify.NonResidential].Color
	}
	return pal.Buckets[classify.BucketFor(pct)].Color
}

// swatch is a legend thumbnail filled with one color.
type swatch color.RGBA

func (s swatch) Thumbnail(c *draw.Canvas) {
	fillRect(*c, c.Rectangle, color.RGBA(s))
}

// codeTicks labels bar positions with community codes, thinning labels
// when there are too many to read.
type codeTicks []string

func (ct codeTicks) Ticks(min, max float64) []plot.Tick {
	n := len(ct)
	step := 1
	if n > maxCodeTicks {
		step = (n + maxCodeTicks - 1) / maxCodeTicks
	}

	ticks := make([]plot.Tick, 0, n)
	for i := 0; i < n; i++ {
		t := plot.Tick{Value: float64(i)}
		if i%step == 0 {
			t.Label = ct[i]
		}
		ticks = append(ticks, t)
	}
	return ticks
}

type countTicks struct{}

func (countTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = FormatCount(int(math.Round(ticks[i].Value)))
		}
	}
	return ticks
}
