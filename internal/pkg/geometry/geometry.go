package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

type Kind int

const (
	KindPolygon Kind = iota
	KindMultiPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var ErrUnsupportedGeometry = errors.New("unsupported geometry type")
var ErrEmptyGeometry = errors.New("geometry contains no polygons")

// Boundary is a region outline, either a single polygon or a multi polygon.
// The first ring of every polygon is the outer ring, the following rings are holes.
type Boundary struct {
	kind     Kind
	polygons []orb.Polygon
	bound    orb.Bound
}

func NewPolygon(p orb.Polygon) (Boundary, error) {
	if len(p) == 0 || len(p[0]) == 0 {
		return Boundary{}, ErrEmptyGeometry
	}

	closed := closePolygon(p)

	return Boundary{
		kind:     KindPolygon,
		polygons: []orb.Polygon{closed},
		bound:    closed.Bound(),
	}, nil
}

func NewMultiPolygon(mp orb.MultiPolygon) (Boundary, error) {
	polygons := make([]orb.Polygon, 0, len(mp))

	for _, p := range mp {
		if len(p) == 0 || len(p[0]) == 0 {
			continue
		}
		polygons = append(polygons, closePolygon(p))
	}

	if len(polygons) == 0 {
		return Boundary{}, ErrEmptyGeometry
	}

	bound := polygons[0].Bound()
	for _, p := range polygons[1:] {
		bound = bound.Union(p.Bound())
	}

	return Boundary{
		kind:     KindMultiPolygon,
		polygons: polygons,
		bound:    bound,
	}, nil
}

// FromGeometry converts a decoded GeoJSON geometry into a Boundary.
func FromGeometry(g orb.Geometry) (Boundary, error) {
	switch v := g.(type) {
	case orb.Polygon:
		return NewPolygon(v)
	case orb.MultiPolygon:
		return NewMultiPolygon(v)
	case nil:
		return Boundary{}, ErrEmptyGeometry
	default:
		return Boundary{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

func (b Boundary) Kind() Kind {
	return b.kind
}

func (b Boundary) Polygons() []orb.Polygon {
	return b.polygons
}

func (b Boundary) Bound() orb.Bound {
	return b.bound
}

func (b Boundary) IsEmpty() bool {
	return len(b.polygons) == 0
}

// Geometry returns the boundary as an orb geometry suitable for GeoJSON encoding.
func (b Boundary) Geometry() orb.Geometry {
	if b.kind == KindPolygon && len(b.polygons) == 1 {
		return b.polygons[0]
	}
	return orb.MultiPolygon(b.polygons)
}

// Contains reports whether p lies inside the boundary.
//
// A point on an outer ring edge or vertex is inside. A point on a hole edge is
// outside, the hole claims its own boundary. Rings with fewer than three
// distinct vertices, or with zero area, contain nothing: a degenerate outer
// ring makes its polygon empty and a degenerate hole is ignored.
func Contains(b Boundary, p orb.Point) bool {
	if b.IsEmpty() || !b.bound.Contains(p) {
		return false
	}

	for _, polygon := range b.polygons {
		if PolygonContains(polygon, p) {
			return true
		}
	}

	return false
}

func PolygonContains(polygon orb.Polygon, p orb.Point) bool {
	if len(polygon) == 0 || !RingContains(polygon[0], p) {
		return false
	}

	for _, hole := range polygon[1:] {
		if RingContains(hole, p) {
			return false
		}
	}

	return true
}

func RingContains(r orb.Ring, p orb.Point) bool {
	if degenerate(r) {
		return false
	}
	return planar.RingContains(r, p)
}

func degenerate(r orb.Ring) bool {
	distinct := make(map[orb.Point]struct{}, len(r))
	for _, v := range r {
		distinct[v] = struct{}{}
	}

	if len(distinct) < 3 {
		return true
	}

	return planar.Area(r) == 0
}

func closePolygon(p orb.Polygon) orb.Polygon {
	closed := make(orb.Polygon, 0, len(p))
	for _, r := range p {
		closed = append(closed, closeRing(r))
	}
	return closed
}

func closeRing(r orb.Ring) orb.Ring {
	if len(r) == 0 || r[0] == r[len(r)-1] {
		return r
	}

	ring := make(orb.Ring, len(r), len(r)+1)
	copy(ring, r)
	return append(ring, r[0])
}
