package dataset

import (
	"strings"

	"github.com/diwise/quakemap/internal/pkg/geometry"
	"github.com/paulmach/orb"
)

const AllRegionsLabel string = "All Regions"

// Selection is either AllRegions or a single region.
type Selection struct {
	region *Region
}

var AllRegions = Selection{}

func Select(r Region) Selection {
	return Selection{region: &r}
}

func (s Selection) IsAll() bool {
	return s.region == nil
}

func (s Selection) Region() (Region, bool) {
	if s.region == nil {
		return Region{}, false
	}
	return *s.region, true
}

func (s Selection) Label() string {
	if s.region == nil {
		return AllRegionsLabel
	}
	return s.region.Name
}

func (s Selection) Equal(other Selection) bool {
	if s.IsAll() || other.IsAll() {
		return s.IsAll() == other.IsAll()
	}
	return strings.EqualFold(s.region.Name, other.region.Name)
}

// Bound returns the bounding box of the selected region, if there is one to
// fit the camera to.
func (s Selection) Bound() (orb.Bound, bool) {
	if s.region == nil || !s.region.HasGeometry() {
		return orb.Bound{}, false
	}
	return s.region.Boundary.Bound(), true
}

// Filter returns the features visible for the selection. AllRegions returns
// all as is, a region without geometry returns an empty slice and any other
// region returns the features inside its boundary in their original order.
func Filter(all []PointFeature, selection Selection) []PointFeature {
	if selection.IsAll() {
		return all
	}

	filtered := make([]PointFeature, 0)

	region, _ := selection.Region()
	if !region.HasGeometry() {
		return filtered
	}

	for _, f := range all {
		if geometry.Contains(*region.Boundary, f.Coordinates) {
			filtered = append(filtered, f)
		}
	}

	return filtered
}
