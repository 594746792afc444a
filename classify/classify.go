// Package classify derives a per-community classification from the census
// index: the dominant travel mode, or the share of one mode against the
// citywide total.
package classify

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/zalepa/commutemap/census"
)

// Mode selects how communities are classified.
type Mode string

const (
	// ModeDominant colors each community by its most common travel mode.
	ModeDominant Mode = "dominant"
	// ModePercentage colors each community by its share of the citywide
	// total of one designated mode.
	ModePercentage Mode = "percentage"
	// ModeBreakdown leaves communities uncolored and lists every count.
	ModeBreakdown Mode = "breakdown"
)

// Modes lists the valid modes.
var Modes = []Mode{ModeDominant, ModePercentage, ModeBreakdown}

// ParseMode validates s as a Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid mode %q; valid options: dominant, percentage, breakdown", s)
}

// None is the dominant category of a community with no data or no
// nonzero counts.
const None census.Category = ""

// Dominant returns the category with the strictly largest count, scanning in
// categories order so the earlier category wins a tie. It returns None when
// the record is absent (ok is false) or the largest count is zero.
func Dominant(rec census.Record, ok bool, categories []census.Category) census.Category {
	if !ok || len(categories) == 0 {
		return None
	}
	best := categories[0]
	for _, c := range categories[1:] {
		if rec.Count(c) > rec.Count(best) {
			best = c
		}
	}
	if rec.Count(best) == 0 {
		return None
	}
	return best
}

// Classification is the derived state of one community.
type Classification struct {
	Code     string          `json:"code"`
	HasData  bool            `json:"hasData"`
	Mode     Mode            `json:"mode"`
	Record   census.Record   `json:"record"`
	Dominant census.Category `json:"dominant,omitempty"`
	Count    int             `json:"count"`
	Percent  float64         `json:"percent"`
	Bucket   Bucket          `json:"bucket"`
}

// Options configures Classify.
type Options struct {
	Mode       Mode
	Designated census.Category
	Categories []census.Category
}

// Result holds the classification of every requested community plus the
// citywide total used as the percentage denominator.
type Result struct {
	Mode          Mode
	Designated    census.Category
	CitywideTotal int
	Communities   map[string]Classification
}

// Get returns the classification for code. Codes that were not requested
// are reported as having no data.
func (r *Result) Get(code string) Classification {
	if c, ok := r.Communities[code]; ok {
		return c
	}
	return Classification{Code: code, Mode: r.Mode}
}

// Classify classifies each code against idx. A code with no record is not an
// error: it is reported with HasData false, Dominant None and Bucket
// NonResidential. In percentage mode a zero citywide total returns
// ErrDivisionByZero as soon as a community with data needs a share.
func Classify(codes []string, idx *census.Index, citywideTotal int, opts Options) (*Result, error) {
	cats := opts.Categories
	if len(cats) == 0 {
		cats = census.Categories
	}
	res := &Result{
		Mode:          opts.Mode,
		Designated:    opts.Designated,
		CitywideTotal: citywideTotal,
		Communities:   make(map[string]Classification, len(codes)),
	}

	for _, code := range codes {
		rec, ok := idx.Get(code)
		c := Classification{
			Code:    code,
			HasData: ok,
			Mode:    opts.Mode,
			Record:  rec,
			Count:   rec.Count(opts.Designated),
		}

		switch opts.Mode {
		case ModeDominant:
			c.Dominant = Dominant(rec, ok, cats)
		case ModePercentage:
			if ok {
				pct, err := Percent(c.Count, citywideTotal)
				if err != nil {
					return nil, eris.Wrapf(err, "classify: community %s", code)
				}
				c.Percent = pct
				c.Bucket = BucketFor(pct)
			}
		case ModeBreakdown:
		default:
			return nil, eris.Errorf("classify: unknown mode %q", opts.Mode)
		}

		res.Communities[code] = c
	}
	return res, nil
}
