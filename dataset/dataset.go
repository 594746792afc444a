// Package dataset joins community boundaries with census travel counts.
package dataset

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/zalepa/commutemap/boundary"
	"github.com/zalepa/commutemap/census"
	"github.com/zalepa/commutemap/classify"
	"github.com/zalepa/commutemap/fetch"
)

// Sources names the boundary file and the travel CSV. Either may be a local
// path or an http(s) URL; shapefiles must be local.
type Sources struct {
	Boundaries string
	Travel     string
}

// Options selects which categories are loaded and which one is summed into
// the citywide total.
type Options struct {
	Categories []census.Category
	Designated census.Category
}

// Dataset is the loaded map state.
type Dataset struct {
	Boundaries    *boundary.Collection
	Index         *census.Index
	CitywideTotal int
	Designated    census.Category
	Categories    []census.Category

	names map[string]string
}

// Load fetches both sources concurrently, then decodes and joins them.
func Load(ctx context.Context, c *fetch.Client, src Sources, opts Options) (*Dataset, error) {
	start := time.Now()

	var (
		col    *boundary.Collection
		travel []byte
		err    error
	)
	if isShapefile(src.Boundaries) {
		if fetch.IsURL(src.Boundaries) {
			return nil, eris.Errorf("dataset: shapefile %s must be a local path", src.Boundaries)
		}
		if travel, err = c.Bytes(ctx, src.Travel); err != nil {
			return nil, err
		}
		if col, err = boundary.ReadShapefile(src.Boundaries); err != nil {
			return nil, err
		}
	} else {
		geo, csv, err := c.Both(ctx, src.Boundaries, src.Travel)
		if err != nil {
			return nil, err
		}
		travel = csv
		if col, err = boundary.DecodeGeoJSON(bytes.NewReader(geo)); err != nil {
			return nil, err
		}
	}

	rows, err := census.ReadCSV(bytes.NewReader(travel))
	if err != nil {
		return nil, err
	}

	d, err := Build(col, rows, opts)
	if err != nil {
		return nil, err
	}

	zap.L().Info("dataset: loaded",
		zap.Int("features", len(col.Features)),
		zap.Int("communities", d.Index.Len()),
		zap.String("designated", string(d.Designated)),
		zap.Int("citywide_total", d.CitywideTotal),
		zap.Duration("elapsed", time.Since(start)),
	)
	return d, nil
}

// Build normalizes rows and joins them with col.
func Build(col *boundary.Collection, rows []census.Row, opts Options) (*Dataset, error) {
	cats := opts.Categories
	if len(cats) == 0 {
		cats = census.Categories
	}
	designated := opts.Designated
	if designated == "" {
		designated = census.Bicycle
	}
	if !contains(cats, designated) {
		return nil, eris.Errorf("dataset: designated category %q is not among the loaded categories", designated)
	}

	idx, total, err := census.Normalize(rows, cats, designated)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: normalize travel data")
	}
	if dups := idx.Duplicates(); len(dups) > 0 {
		zap.L().Warn("dataset: duplicate community codes, last row kept", zap.Strings("codes", dups))
	}

	d := &Dataset{
		Boundaries:    col,
		Index:         idx,
		CitywideTotal: total,
		Designated:    designated,
		Categories:    cats,
		names:         col.Names(),
	}
	return d, nil
}

// Name returns the display name for code, preferring the boundary file and
// falling back to the census row.
func (d *Dataset) Name(code string) string {
	if n := d.names[code]; n != "" {
		return n
	}
	if rec, ok := d.Index.Get(code); ok && rec.Name != "" {
		return rec.Name
	}
	return code
}

// Classify classifies every mapped community in mode. Joined records carry
// the boundary file's community name.
func (d *Dataset) Classify(mode classify.Mode) (*classify.Result, error) {
	res, err := classify.Classify(d.Boundaries.Codes(), d.Index, d.CitywideTotal, classify.Options{
		Mode:       mode,
		Designated: d.Designated,
		Categories: d.Categories,
	})
	if err != nil {
		return nil, err
	}
	for code, c := range res.Communities {
		if !c.HasData {
			continue
		}
		c.Record.Name = d.Name(code)
		res.Communities[code] = c
	}
	return res, nil
}

// Mismatch lists codes present on one side of the join only.
type Mismatch struct {
	// NoData are mapped communities without a census row.
	NoData []string
	// NoBoundary are census rows without a mapped community.
	NoBoundary []string
}

// Mismatches compares boundary codes with census codes.
func (d *Dataset) Mismatches() Mismatch {
	var m Mismatch
	mapped := make(map[string]bool, len(d.Boundaries.Features))
	for _, code := range d.Boundaries.SortedCodes() {
		mapped[code] = true
		if _, ok := d.Index.Get(code); !ok {
			m.NoData = append(m.NoData, code)
		}
	}
	for _, code := range d.Index.SortedCodes() {
		if !mapped[code] {
			m.NoBoundary = append(m.NoBoundary, code)
		}
	}
	return m
}

func isShapefile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".shp")
}

func contains(cats []census.Category, c census.Category) bool {
	for _, x := range cats {
		if x == c {
			return true
		}
	}
	return false
}
