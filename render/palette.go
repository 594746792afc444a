package render

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/zalepa/commutemap/census"
	"github.com/zalepa/commutemap/classify"
)

// Style is how one legend entry is drawn.
type Style struct {
	Label string
	Color color.RGBA
}

// CategoryStyles maps each travel mode to its dominant-mode legend entry.
var CategoryStyles = map[census.Category]Style{
	census.DroveAlone: {"drove alone", mustHex("#469990")},
	census.NoWork:     {"unemployed", mustHex("#aaffc3")},
	census.Transit:    {"transit", mustHex("#fffac8")},
	census.CarpoolDr:  {"carpool (driver)", mustHex("#ffd8b1")},
	census.CarpoolPa:  {"carpool (rider)", mustHex("#fabebe")},
	census.Bicycle:    {"bicycle", mustHex("#f58231")},
	census.Motorcycle: {"motorcycle", mustHex("#ffe119")},
	census.Walk:       {"walk", mustHex("#42d4f4")},
	census.WorkAtHome: {"works at home", mustHex("#9A6324")},
}

// BucketStyles maps each percentage bucket, and NonResidential, to its
// legend entry.
var BucketStyles = map[classify.Bucket]Style{
	classify.NonResidential: {classify.NonResidential.String(), mustHex("#f7fbff")},
	classify.BelowHalf:      {classify.BelowHalf.String(), mustHex("#c6dbef")},
	classify.HalfToOne:      {classify.HalfToOne.String(), mustHex("#9ecae1")},
	classify.OneToTwo:       {classify.OneToTwo.String(), mustHex("#6baed6")},
	classify.TwoToThree:     {classify.TwoToThree.String(), mustHex("#4292c6")},
	classify.ThreeToFour:    {classify.ThreeToFour.String(), mustHex("#2171b5")},
	classify.FourPlus:       {classify.FourPlus.String(), mustHex("#084594")},
}

// Unavailable is the fill of a community with no dominant mode.
var Unavailable = Style{"unavailable", mustHex("#EBEBE4")}

// Palette is the set of fills used by one render.
type Palette struct {
	Categories  map[census.Category]Style
	Buckets     map[classify.Bucket]Style
	Unavailable Style
}

// DefaultPalette returns a copy of the built-in styles.
func DefaultPalette() *Palette {
	p := &Palette{
		Categories:  make(map[census.Category]Style, len(CategoryStyles)),
		Buckets:     make(map[classify.Bucket]Style, len(BucketStyles)),
		Unavailable: Unavailable,
	}
	for k, v := range CategoryStyles {
		p.Categories[k] = v
	}
	for k, v := range BucketStyles {
		p.Buckets[k] = v
	}
	return p
}

// paletteFile is the YAML layout of a palette override file. Keys are
// category names and bucket labels; values are #rrggbb colors.
type paletteFile struct {
	Categories  map[string]string `yaml:"categories"`
	Buckets     map[string]string `yaml:"buckets"`
	Unavailable string            `yaml:"unavailable"`
}

// LoadPalette reads a YAML palette file and applies it over the defaults.
// An empty path returns the defaults.
func LoadPalette(path string) (*Palette, error) {
	p := DefaultPalette()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "render: read palette %s", path)
	}
	var pf paletteFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, eris.Wrapf(err, "render: parse palette %s", path)
	}

	for name, hex := range pf.Categories {
		cat, ok := census.ParseCategory(strings.ToLower(name))
		if !ok {
			return nil, eris.Errorf("render: palette %s: unknown category %q", path, name)
		}
		c, err := ParseHex(hex)
		if err != nil {
			return nil, eris.Wrapf(err, "render: palette %s: category %s", path, name)
		}
		s := p.Categories[cat]
		s.Color = c
		p.Categories[cat] = s
	}

	for label, hex := range pf.Buckets {
		b, ok := bucketByLabel(label)
		if !ok {
			return nil, eris.Errorf("render: palette %s: unknown bucket %q", path, label)
		}
		c, err := ParseHex(hex)
		if err != nil {
			return nil, eris.Wrapf(err, "render: palette %s: bucket %s", path, label)
		}
		s := p.Buckets[b]
		s.Color = c
		p.Buckets[b] = s
	}

	if pf.Unavailable != "" {
		c, err := ParseHex(pf.Unavailable)
		if err != nil {
			return nil, eris.Wrapf(err, "render: palette %s: unavailable", path)
		}
		p.Unavailable.Color = c
	}
	return p, nil
}

// Fill returns the fill style for a classified community.
func (p *Palette) Fill(c classify.Classification) Style {
	switch c.Mode {
	case classify.ModeDominant:
		if c.Dominant == classify.None {
			return p.Unavailable
		}
		if s, ok := p.Categories[c.Dominant]; ok {
			return s
		}
		return p.Unavailable
	case classify.ModePercentage:
		return p.Buckets[c.Bucket]
	}
	return p.Unavailable
}

// Legend returns the legend entries for mode, in display order.
func (p *Palette) Legend(mode classify.Mode, categories []census.Category) []Style {
	switch mode {
	case classify.ModeDominant:
		out := make([]Style, 0, len(categories)+1)
		for _, c := range categories {
			out = append(out, p.Categories[c])
		}
		return append(out, p.Unavailable)
	case classify.ModePercentage:
		out := make([]Style, 0, len(classify.Buckets)+1)
		for _, b := range classify.Buckets {
			out = append(out, p.Buckets[b])
		}
		return append(out, p.Buckets[classify.NonResidential])
	}
	return nil
}

// CategoryLabel returns the display name of c.
func CategoryLabel(c census.Category) string {
	if s, ok := CategoryStyles[c]; ok {
		return s.Label
	}
	return string(c)
}

func bucketByLabel(label string) (classify.Bucket, bool) {
	for b := range BucketStyles {
		if b.String() == label {
			return b, true
		}
	}
	return 0, false
}

// ParseHex parses a #rgb or #rrggbb color.
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func mustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}
