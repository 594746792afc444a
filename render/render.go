// Package render draws classified communities as choropleth maps and bar
// charts, and prepares projected regions for the web dashboard.
package render

import (
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Formats lists the supported output formats.
var Formats = []string{"png", "jpg", "svg", "pdf"}

// Pixels converts a screen size at 96 DPI to a vg.Length.
func Pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / vgimg.DefaultDPI
}

// FormatFromPath returns the lower-case extension of path without the dot.
func FormatFromPath(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// ValidFormat reports an error for formats NewCanvas cannot produce.
func ValidFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	if format == "jpeg" {
		return nil
	}
	return eris.Errorf("render: unsupported format %q; valid options: %s", format, strings.Join(Formats, ", "))
}

// NewCanvas creates an output canvas for format.
func NewCanvas(format string, w, h vg.Length) (vg.CanvasWriterTo, error) {
	switch format {
	case "png":
		return vgimg.PngCanvas{Canvas: vgimg.New(w, h)}, nil
	case "jpg", "jpeg":
		return vgimg.JpegCanvas{Canvas: vgimg.New(w, h)}, nil
	case "svg":
		return vgsvg.New(w, h), nil
	case "pdf":
		return vgpdf.New(w, h), nil
	}
	return nil, eris.Errorf("render: unsupported format %q; valid options: %s", format, strings.Join(Formats, ", "))
}

// write draws onto a fresh canvas and writes the encoded result to w.
func write(w io.Writer, format string, width, height vg.Length, fn func(draw.Canvas)) error {
	c, err := NewCanvas(format, width, height)
	if err != nil {
		return err
	}
	fn(draw.New(c))
	if _, err := c.WriteTo(w); err != nil {
		return eris.Wrapf(err, "render: write %s", format)
	}
	return nil
}

func fillText(c draw.Canvas, txt string, size vg.Length, x, y vg.Length, clr color.Color) {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
	}
	sty.Font.Size = size
	c.FillText(sty, vg.Point{X: x, Y: y}, txt)
}

func fillCenteredText(c draw.Canvas, txt string, size vg.Length, pt vg.Point, clr color.Color) {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
	}
	sty.Font.Size = size
	c.FillText(sty, pt, txt)
}

func fillRect(c draw.Canvas, r vg.Rectangle, clr color.Color) {
	c.FillPolygon(clr, []vg.Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	})
}

func strokeRect(c draw.Canvas, r vg.Rectangle, clr color.Color, width vg.Length) {
	c.StrokeLines(draw.LineStyle{Color: clr, Width: width}, []vg.Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
		r.Min,
	})
}
