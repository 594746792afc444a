package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/zalepa/commutemap/boundary"
	"github.com/zalepa/commutemap/census"
	"github.com/zalepa/commutemap/classify"
	"github.com/zalepa/commutemap/dataset"
)

const boundariesJSON = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"comm_code":"ABB","name":"ABBEYDALE"},
 "geometry":{"type":"Polygon","coordinates":[[[-114.10,51.00],[-114.10,51.05],[-114.05,51.05],[-114.05,51.00],[-114.10,51.00]]]}},
{"type":"Feature","properties":{"comm_code":"BNF","name":"BANFF TRAIL"},
 "geometry":{"type":"Polygon","coordinates":[[[-114.05,51.00],[-114.05,51.05],[-114.00,51.05],[-114.00,51.00],[-114.05,51.00]]]}},
{"type":"Feature","properties":{"comm_code":"01B","name":"01B"},
 "geometry":{"type":"Polygon","coordinates":[[[-114.00,51.00],[-114.00,51.05],[-113.95,51.05],[-113.95,51.00],[-114.00,51.00]]]}}
]}`

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	col, err := boundary.DecodeGeoJSON(strings.NewReader(boundariesJSON))
	require.NoError(t, err)
	rows, err := census.ReadCSV(strings.NewReader("comm_code,drovealone,transit,bicycle\nABB,\"1,200\",300,25\nBNF,400,500,75\n"))
	require.NoError(t, err)
	d, err := dataset.Build(col, rows, dataset.Options{})
	require.NoError(t, err)
	return d
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#469990")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x46), c.R)
	assert.Equal(t, uint8(0x99), c.G)
	assert.Equal(t, uint8(0x90), c.B)
	assert.Equal(t, "#469990", Hex(c))

	c, err = ParseHex("fff")
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", Hex(c))

	_, err = ParseHex("#12345")
	assert.Error(t, err)
	_, err = ParseHex("#zzzzzz")
	assert.Error(t, err)
}

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	assert.Len(t, p.Categories, len(census.Categories))
	assert.Len(t, p.Buckets, len(classify.Buckets)+1)
	assert.Equal(t, "#ebebe4", Hex(p.Unavailable.Color))

	p.Categories[census.Bicycle] = Style{Label: "changed"}
	assert.Equal(t, "bicycle", CategoryStyles[census.Bicycle].Label)
}

func TestPalette_Fill(t *testing.T) {
	p := DefaultPalette()

	s := p.Fill(classify.Classification{Mode: classify.ModeDominant, Dominant: census.DroveAlone})
	assert.Equal(t, "#469990", Hex(s.Color))
	assert.Equal(t, "drove alone", s.Label)

	s = p.Fill(classify.Classification{Mode: classify.ModeDominant, Dominant: classify.None})
	assert.Equal(t, "unavailable", s.Label)

	s = p.Fill(classify.Classification{Mode: classify.ModePercentage, HasData: true, Bucket: classify.FourPlus})
	assert.Equal(t, "#084594", Hex(s.Color))

	s = p.Fill(classify.Classification{Mode: classify.ModePercentage})
	assert.Equal(t, "#f7fbff", Hex(s.Color))
	assert.NotEqual(t, Hex(p.Buckets[classify.BelowHalf].Color), Hex(s.Color))

	s = p.Fill(classify.Classification{Mode: classify.ModeBreakdown, HasData: true})
	assert.Equal(t, "#ebebe4", Hex(s.Color))
}

func TestPalette_Legend(t *testing.T) {
	p := DefaultPalette()

	dom := p.Legend(classify.ModeDominant, census.Categories)
	require.Len(t, dom, len(census.Categories)+1)
	assert.Equal(t, "drove alone", dom[0].Label)
	assert.Equal(t, "unemployed", dom[1].Label)
	assert.Equal(t, "unavailable", dom[len(dom)-1].Label)

	pct := p.Legend(classify.ModePercentage, census.Categories)
	require.Len(t, pct, 7)
	assert.Equal(t, "<0.50%", pct[0].Label)
	assert.Equal(t, ">4.00%", pct[5].Label)
	assert.Equal(t, "non-residential", pct[6].Label)

	assert.Nil(t, p.Legend(classify.ModeBreakdown, census.Categories))
}

func TestLoadPalette(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`categories:
  bicycle: "#ff0000"
buckets:
  "<0.50%": "#00ff00"
unavailable: "#000000"
`), 0o644))

	p, err := LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", Hex(p.Categories[census.Bicycle].Color))
	assert.Equal(t, "bicycle", p.Categories[census.Bicycle].Label)
	assert.Equal(t, "#00ff00", Hex(p.Buckets[classify.BelowHalf].Color))
	assert.Equal(t, "#000000", Hex(p.Unavailable.Color))
	assert.Equal(t, "#469990", Hex(p.Categories[census.DroveAlone].Color))

	def, err := LoadPalette("")
	require.NoError(t, err)
	assert.Equal(t, "#f58231", Hex(def.Categories[census.Bicycle].Color))
}

func TestLoadPalette_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"unknown category": "categories:\n  scooter: \"#ffffff\"\n",
		"unknown bucket":   "buckets:\n  \"9%\": \"#ffffff\"\n",
		"bad color":        "categories:\n  walk: \"blue\"\n",
		"bad yaml":         "categories: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := LoadPalette(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadPalette(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestFitSize(t *testing.T) {
	b := geom.NewBounds(geom.XY).Set(-114.3, 50.8, -113.8, 51.2)
	p := FitSize(b, 760, 700)

	x0, y0 := p.Project(-114.3, 51.2)
	x1, y1 := p.Project(-113.8, 50.8)

	assert.Less(t, x0, x1)
	assert.Less(t, y0, y1, "north is up")
	for _, v := range []float64{x0, x1} {
		assert.GreaterOrEqual(t, v, -1e-6)
		assert.LessOrEqual(t, v, 760+1e-6)
	}
	for _, v := range []float64{y0, y1} {
		assert.GreaterOrEqual(t, v, -1e-6)
		assert.LessOrEqual(t, v, 700+1e-6)
	}

	fillsWidth := x1-x0 > 759.9
	fillsHeight := y1-y0 > 699.9
	assert.True(t, fillsWidth || fillsHeight)
	assert.InDelta(t, 760/2.0, (x0+x1)/2, 1e-6)
	assert.InDelta(t, 700/2.0, (y0+y1)/2, 1e-6)
}

func TestFitSize_Empty(t *testing.T) {
	p := FitSize(geom.NewBounds(geom.XY), 100, 100)
	assert.Equal(t, 1.0, p.Scale)
}

func TestNewTooltip(t *testing.T) {
	rec := census.Record{
		Code:   "ABB",
		Counts: map[census.Category]int{census.Bicycle: 1200, census.Walk: 3},
		Total:  1203,
	}

	tip := NewTooltip("ABBEYDALE", classify.Classification{Mode: classify.ModePercentage, HasData: true, Count: 1200}, census.Bicycle, census.Categories)
	assert.Equal(t, []string{"ABBEYDALE", "1,200 people who live here bicycle to work"}, tip.Lines)
	assert.Equal(t, 40.0, tip.Height)
	assert.Greater(t, tip.Width, 20.0)

	tip = NewTooltip("01B", classify.Classification{Mode: classify.ModePercentage}, census.Bicycle, census.Categories)
	assert.Equal(t, []string{"01B", "non-residential community"}, tip.Lines)

	tip = NewTooltip("ABBEYDALE", classify.Classification{Mode: classify.ModeBreakdown, HasData: true, Record: rec}, census.Bicycle, []census.Category{census.Bicycle, census.Walk})
	assert.Equal(t, []string{"ABBEYDALE", "bicycle: 1,200", "walk: 3"}, tip.Lines)
	assert.Equal(t, 60.0, tip.Height)

	tip = NewTooltip("ABBEYDALE", classify.Classification{Mode: classify.ModeDominant, HasData: true}, census.Bicycle, census.Categories)
	assert.Equal(t, []string{"ABBEYDALE"}, tip.Lines)
	assert.Equal(t, 20.0, tip.Height)

	x, y := tip.At(100, 50)
	assert.Equal(t, 110.0, x)
	assert.Equal(t, 70.0, y)
}

func TestTooltip_WidthTracksLongestLine(t *testing.T) {
	short := NewTooltip("A", classify.Classification{Mode: classify.ModeDominant}, census.Bicycle, nil)
	long := NewTooltip("A MUCH LONGER COMMUNITY NAME", classify.Classification{Mode: classify.ModeDominant}, census.Bicycle, nil)
	assert.Greater(t, long.Width, short.Width)
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "1,200", FormatCount(1200))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "0.45%", FormatPercent(0.45))
}

func TestSVGPath(t *testing.T) {
	got := svgPath([][][2]float64{{{0, 0}, {10, 0}, {10, 5.3}}, {{1, 1}, {2, 2}}})
	assert.Equal(t, "M0.0,0.0L10.0,0.0L10.0,5.3ZM1.0,1.0L2.0,2.0Z", got)
	assert.Equal(t, "", svgPath(nil))
}

func TestRegions(t *testing.T) {
	d := testDataset(t)
	res, err := d.Classify(classify.ModeDominant)
	require.NoError(t, err)

	regions := Regions(d, res, DefaultPalette(), 760, 700)
	require.Len(t, regions, 3)

	assert.Equal(t, "ABB", regions[0].Code)
	assert.Equal(t, "ABBEYDALE", regions[0].Name)
	assert.Equal(t, "#469990", regions[0].Fill)
	assert.Equal(t, "#fffac8", regions[1].Fill)
	assert.Equal(t, "#ebebe4", regions[2].Fill)
	assert.True(t, strings.HasPrefix(regions[0].Path, "M"))
	assert.True(t, regions[0].HasLabel)

	assert.Less(t, regions[0].Label[0], regions[1].Label[0])
	assert.Less(t, regions[1].Label[0], regions[2].Label[0])
}

func TestWriteMap(t *testing.T) {
	d := testDataset(t)
	for _, mode := range classify.Modes {
		res, err := d.Classify(mode)
		require.NoError(t, err)
		m := &Map{Dataset: d, Result: res, Palette: DefaultPalette(), Labels: true, Caption: Caption}

		for _, format := range []string{"png", "svg", "pdf"} {
			t.Run(string(mode)+"/"+format, func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, WriteMap(&buf, format, 760, 700, m))
				assert.NotZero(t, buf.Len())
			})
		}
	}
}

func TestWriteMap_UnsupportedFormat(t *testing.T) {
	d := testDataset(t)
	res, err := d.Classify(classify.ModeDominant)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WriteMap(&buf, "gif", 100, 100, &Map{Dataset: d, Result: res, Palette: DefaultPalette()})
	assert.Error(t, err)
}

func TestBarChart(t *testing.T) {
	d := testDataset(t)
	res, err := d.Classify(classify.ModePercentage)
	require.NoError(t, err)

	p, err := BarChart(d, res, DefaultPalette())
	require.NoError(t, err)
	assert.Equal(t, "Communities", p.X.Label.Text)
	assert.Equal(t, "Amount of people riding Bicycle to work", p.Y.Label.Text)

	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, "png", 1024, 768, p))
	assert.NotZero(t, buf.Len())

	dom, err := d.Classify(classify.ModeDominant)
	require.NoError(t, err)
	assert.Equal(t, BucketStyles[classify.FourPlus].Color, barColor("ABB", d, dom, DefaultPalette()))
}

func TestBarColor_RowWithoutBoundary(t *testing.T) {
	col, err := boundary.DecodeGeoJSON(strings.NewReader(`{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"comm_code":"ABB","name":"ABBEYDALE"},
 "geometry":{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]}}]}`))
	require.NoError(t, err)
	rows, err := census.ReadCSV(strings.NewReader("comm_code,drovealone,bicycle\nABB,100,50\nZZZ,100,50\nQQQ,100,0\n"))
	require.NoError(t, err)
	d, err := dataset.Build(col, rows, dataset.Options{})
	require.NoError(t, err)

	res, err := d.Classify(classify.ModePercentage)
	require.NoError(t, err)
	pal := DefaultPalette()

	want := BucketStyles[classify.FourPlus].Color
	assert.Equal(t, want, barColor("ABB", d, res, pal))
	assert.Equal(t, want, barColor("ZZZ", d, res, pal))
	assert.Equal(t, BucketStyles[classify.BelowHalf].Color, barColor("QQQ", d, res, pal))
	assert.Equal(t, BucketStyles[classify.NonResidential].Color, barColor("NOPE", d, res, pal))
}

func TestCodeTicks(t *testing.T) {
	ticks := codeTicks{"A", "B", "C"}.Ticks(0, 2)
	require.Len(t, ticks, 3)
	assert.Equal(t, "B", ticks[1].Label)

	many := make(codeTicks, 300)
	for i := range many {
		many[i] = "X"
	}
	labeled := 0
	for _, tk := range many.Ticks(0, 299) {
		if tk.Label != "" {
			labeled++
		}
	}
	assert.LessOrEqual(t, labeled, maxCodeTicks)
}

func TestLegendTitle(t *testing.T) {
	assert.Equal(t, []string{"MAJORITY MODE OF", "TRAVEL TO WORK"}, LegendTitle(classify.ModeDominant, census.Bicycle))
	assert.Equal(t, "PERCENTAGE OF CYCLING TO WORK", LegendTitle(classify.ModePercentage, census.Bicycle)[0])
	assert.Equal(t, "PERCENTAGE OF WALK", LegendTitle(classify.ModePercentage, census.Walk)[0])
	assert.Nil(t, LegendTitle(classify.ModeBreakdown, census.Bicycle))
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "png", FormatFromPath("out/map.PNG"))
	assert.Equal(t, "pdf", FormatFromPath("report.pdf"))
	assert.Equal(t, "", FormatFromPath("noext"))
}
