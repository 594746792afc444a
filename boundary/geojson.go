package boundary

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// DecodeGeoJSON reads a FeatureCollection. Features without a community code
// or without polygonal geometry are skipped.
func DecodeGeoJSON(r io.Reader) (*Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: read geojson")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "boundary: decode geojson")
	}

	c := &Collection{Features: make([]Feature, 0, len(fc.Features))}
	var skipped int
	for _, f := range fc.Features {
		if f == nil {
			skipped++
			continue
		}
		code := property(f.Properties, CodeProperty)
		if code == "" {
			skipped++
			continue
		}
		switch f.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon:
		default:
			skipped++
			continue
		}
		c.Features = append(c.Features, Feature{
			Code:     code,
			Name:     property(f.Properties, NameProperty),
			Geometry: f.Geometry,
		})
	}

	if skipped > 0 {
		zap.L().Debug("boundary: skipped geojson features", zap.Int("skipped", skipped))
	}
	if len(c.Features) == 0 {
		return nil, eris.New("boundary: no community features in geojson")
	}
	return c, nil
}

// property looks up a feature property case-insensitively and renders it as
// a trimmed string.
func property(props map[string]interface{}, name string) string {
	v, ok := props[name]
	if !ok {
		for k, pv := range props {
			if strings.EqualFold(k, name) {
				v, ok = pv, true
				break
			}
		}
	}
	if !ok || v == nil {
		return ""
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
