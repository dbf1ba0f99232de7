package dataset

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type PointFeature struct {
	ID          string
	Coordinates orb.Point
	Magnitude   float64
	Title       string
	Time        int64
}

func (f PointFeature) Lon() float64 {
	return f.Coordinates.Lon()
}

func (f PointFeature) Lat() float64 {
	return f.Coordinates.Lat()
}

// Feature converts f into a GeoJSON point feature with the mag, title and time
// properties used by the map layers and popups.
func (f PointFeature) Feature() *geojson.Feature {
	gf := geojson.NewFeature(f.Coordinates)
	if f.ID != "" {
		gf.ID = f.ID
	}
	gf.Properties["mag"] = f.Magnitude
	gf.Properties["title"] = f.Title
	gf.Properties["time"] = f.Time
	return gf
}

func Collection(features []PointFeature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(features))

	for _, f := range features {
		fc.Append(f.Feature())
	}

	return fc
}

// LoadFeatures reads a GeoJSON FeatureCollection of earthquakes. Features that
// are not points are skipped.
func LoadFeatures(r io.Reader) ([]PointFeature, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal feature collection: %w", err)
	}

	features := make([]PointFeature, 0, len(fc.Features))

	for _, f := range fc.Features {
		pf, ok := FromFeature(f)
		if !ok {
			continue
		}
		features = append(features, pf)
	}

	return features, nil
}

func FromFeature(f *geojson.Feature) (PointFeature, bool) {
	if f == nil {
		return PointFeature{}, false
	}

	p, ok := f.Geometry.(orb.Point)
	if !ok {
		return PointFeature{}, false
	}

	return PointFeature{
		ID:          featureID(f),
		Coordinates: p,
		Magnitude:   Number(f.Properties, "mag"),
		Title:       String(f.Properties, "title"),
		Time:        int64(Number(f.Properties, "time")),
	}, true
}

func featureID(f *geojson.Feature) string {
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	return String(f.Properties, "id")
}

// Number reads a numeric property regardless of whether it was decoded from
// JSON (float64) or set in memory, returning 0 when absent.
func Number(p geojson.Properties, key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint32:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

func String(p geojson.Properties, key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
