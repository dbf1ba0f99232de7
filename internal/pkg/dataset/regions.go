package dataset

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/diwise/quakemap/internal/pkg/geometry"
	"github.com/paulmach/orb/geojson"
)

const DefaultNameProperty string = "ADMIN"

var ErrMissingName = errors.New("region is missing a name")

// Region is a named area. A nil Boundary means the geometry has not been loaded.
type Region struct {
	Name     string
	Boundary *geometry.Boundary
}

func (r Region) HasGeometry() bool {
	return r.Boundary != nil && !r.Boundary.IsEmpty()
}

type Regions []Region

func (rs Regions) Find(name string) (Region, bool) {
	i := slices.IndexFunc(rs, func(r Region) bool {
		return strings.EqualFold(r.Name, name)
	})
	if i < 0 {
		return Region{}, false
	}
	return rs[i], true
}

func (rs Regions) Names() []string {
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Name)
	}
	return names
}

// LoadRegions reads a GeoJSON FeatureCollection of Polygon or MultiPolygon
// features, named by nameProperty. Features without geometry are kept as
// regions without a boundary.
func LoadRegions(r io.Reader, nameProperty string) (Regions, error) {
	if nameProperty == "" {
		nameProperty = DefaultNameProperty
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal feature collection: %w", err)
	}

	regions := make(Regions, 0, len(fc.Features))

	for i, f := range fc.Features {
		name := String(f.Properties, nameProperty)
		if name == "" {
			return nil, fmt.Errorf("feature %d: %w", i, ErrMissingName)
		}

		region, err := NewRegion(name, f)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", name, err)
		}

		regions = append(regions, region)
	}

	return regions, nil
}

func NewRegion(name string, f *geojson.Feature) (Region, error) {
	if f.Geometry == nil {
		return Region{Name: name}, nil
	}

	boundary, err := geometry.FromGeometry(f.Geometry)
	if err != nil {
		if errors.Is(err, geometry.ErrEmptyGeometry) {
			return Region{Name: name}, nil
		}
		return Region{}, err
	}

	return Region{
		Name:     name,
		Boundary: &boundary,
	}, nil
}
