package geometry

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/paulmach/orb"
)

func TestContainsConvexPolygon(t *testing.T) {
	is := is.New(t)

	b, err := NewPolygon(square(0, 0, 10))
	is.NoErr(err)

	for _, p := range []orb.Point{{5, 5}, {0.1, 0.1}, {9.9, 9.9}, {1, 8}} {
		is.True(Contains(b, p))
	}

	for _, p := range []orb.Point{{-1, 5}, {11, 5}, {5, -0.1}, {5, 10.1}, {-170, 80}} {
		is.True(!Contains(b, p))
	}
}

func TestContainsIsDeterministic(t *testing.T) {
	is := is.New(t)

	b, _ := NewPolygon(square(0, 0, 10))
	p := orb.Point{3.3, 7.7}

	first := Contains(b, p)
	for range 100 {
		is.Equal(Contains(b, p), first)
	}
}

func TestContainsOnEdge(t *testing.T) {
	is := is.New(t)

	b, _ := NewPolygon(orb.Polygon{
		ring(0, 0, 10),
		ring(4, 4, 2),
	})

	is.True(Contains(b, orb.Point{0, 5}))  // outer edge
	is.True(Contains(b, orb.Point{10, 10})) // outer vertex
	is.True(!Contains(b, orb.Point{4, 5})) // hole edge
}

func TestContainsRespectsHoles(t *testing.T) {
	is := is.New(t)

	b, err := NewPolygon(orb.Polygon{
		ring(0, 0, 10),
		ring(4, 4, 2),
	})
	is.NoErr(err)

	is.True(Contains(b, orb.Point{2, 2}))
	is.True(!Contains(b, orb.Point{5, 5}))
}

func TestMultiPolygonContainsIfAnyMemberContains(t *testing.T) {
	is := is.New(t)

	a := square(0, 0, 10)
	c := square(20, 20, 5)
	withHole := orb.Polygon{ring(40, 0, 10), ring(44, 4, 2)}

	b, err := NewMultiPolygon(orb.MultiPolygon{a, c, withHole})
	is.NoErr(err)
	is.Equal(b.Kind(), KindMultiPolygon)

	points := []orb.Point{{5, 5}, {22, 22}, {15, 15}, {42, 2}, {45, 5}, {-5, -5}}
	for _, p := range points {
		expected := PolygonContains(a, p) || PolygonContains(c, p) || PolygonContains(withHole, p)
		is.Equal(Contains(b, p), expected)
	}

	is.True(Contains(b, orb.Point{22, 22}))
	is.True(!Contains(b, orb.Point{45, 5}))
}

func TestDegeneratePolygonsContainNothing(t *testing.T) {
	is := is.New(t)

	line, err := NewPolygon(orb.Polygon{{{0, 0}, {10, 10}, {0, 0}}})
	is.NoErr(err)
	is.True(!Contains(line, orb.Point{5, 5}))

	point, err := NewPolygon(orb.Polygon{{{1, 1}}})
	is.NoErr(err)
	is.True(!Contains(point, orb.Point{1, 1}))

	repeated, err := NewPolygon(orb.Polygon{{{0, 0}, {0, 0}, {2, 2}, {0, 0}}})
	is.NoErr(err)
	is.True(!Contains(repeated, orb.Point{1, 1})) // two distinct vertices

	flat, err := NewPolygon(orb.Polygon{{{0, 0}, {1, 1}, {2, 2}, {0, 0}}})
	is.NoErr(err)
	is.True(!Contains(flat, orb.Point{1, 1})) // collinear, zero area

	is.True(!RingContains(orb.Ring{}, orb.Point{0, 0}))
	is.True(!PolygonContains(orb.Polygon{}, orb.Point{0, 0}))
	is.True(!Contains(Boundary{}, orb.Point{0, 0}))
}

func TestDegenerateHoleIsIgnored(t *testing.T) {
	is := is.New(t)

	b, _ := NewPolygon(orb.Polygon{
		ring(0, 0, 10),
		{{5, 5}, {6, 6}},
	})

	is.True(Contains(b, orb.Point{5.5, 5.5}))
}

func TestEmptyOuterRingsAreDropped(t *testing.T) {
	is := is.New(t)

	_, err := NewPolygon(orb.Polygon{{}})
	is.True(errors.Is(err, ErrEmptyGeometry))

	b, err := NewMultiPolygon(orb.MultiPolygon{{{}}, square(5, 5, 1)})
	is.NoErr(err)
	is.Equal(len(b.Polygons()), 1)
	is.Equal(b.Bound(), orb.Bound{Min: orb.Point{5, 5}, Max: orb.Point{6, 6}})

	_, err = NewMultiPolygon(orb.MultiPolygon{{{}}})
	is.True(errors.Is(err, ErrEmptyGeometry))
}

func TestUnclosedRingsAreClosed(t *testing.T) {
	is := is.New(t)

	b, err := NewPolygon(orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}}})
	is.NoErr(err)

	outer := b.Polygons()[0][0]
	is.Equal(len(outer), 5)
	is.Equal(outer[0], outer[4])
	is.True(Contains(b, orb.Point{5, 5}))
}

func TestFromGeometry(t *testing.T) {
	is := is.New(t)

	b, err := FromGeometry(square(0, 0, 1))
	is.NoErr(err)
	is.Equal(b.Kind(), KindPolygon)

	b, err = FromGeometry(orb.MultiPolygon{square(0, 0, 1), square(5, 5, 1)})
	is.NoErr(err)
	is.Equal(b.Kind(), KindMultiPolygon)
	is.Equal(b.Bound(), orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{6, 6}})

	_, err = FromGeometry(orb.Point{1, 1})
	is.True(errors.Is(err, ErrUnsupportedGeometry))

	_, err = FromGeometry(orb.MultiPolygon{})
	is.True(errors.Is(err, ErrEmptyGeometry))
}

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{ring(x, y, size)}
}

func ring(x, y, size float64) orb.Ring {
	return orb.Ring{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}, {x, y}}
}
