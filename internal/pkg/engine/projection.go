package engine

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	tileSize   float64 = 512
	maxLat     float64 = 85.051129
	maxZoom    float64 = 22
	fitPadding float64 = 20
)

func worldSize(zoom float64) float64 {
	return tileSize * math.Pow(2, zoom)
}

// project converts a point to Web Mercator pixel coordinates at zoom.
func project(p orb.Point, zoom float64) (float64, float64) {
	ws := worldSize(zoom)
	lat := math.Max(-maxLat, math.Min(maxLat, p.Lat()))

	x := (p.Lon() + 180) / 360 * ws
	sin := math.Sin(lat * math.Pi / 180)
	y := (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * ws

	return x, y
}

func unproject(x, y, zoom float64) orb.Point {
	ws := worldSize(zoom)

	lon := x/ws*360 - 180
	n := math.Pi - 2*math.Pi*y/ws
	lat := 180 / math.Pi * math.Atan(math.Sinh(n))

	return orb.Point{lon, lat}
}

type viewport struct {
	width  float64
	height float64
}

// toScreen returns the screen position of p as seen by the camera. Points are
// drawn at the world copy closest to the camera center.
func (v viewport) toScreen(c Camera, p orb.Point) ScreenPoint {
	ws := worldSize(c.Zoom)
	cx, cy := project(c.Center, c.Zoom)
	px, py := project(p, c.Zoom)

	dx := math.Mod(px-cx, ws)
	if dx > ws/2 {
		dx -= ws
	} else if dx < -ws/2 {
		dx += ws
	}

	return ScreenPoint{
		X: v.width/2 + dx,
		Y: v.height/2 + (py - cy),
	}
}

// fromScreen returns the geographic position of a screen point. The
// longitude is not wrapped and may fall outside [-180, 180].
func (v viewport) fromScreen(c Camera, sp ScreenPoint) orb.Point {
	cx, cy := project(c.Center, c.Zoom)
	return unproject(cx+sp.X-v.width/2, cy+sp.Y-v.height/2, c.Zoom)
}

// fit returns a camera that frames b within the viewport.
func (v viewport) fit(b orb.Bound) Camera {
	minX, maxY := project(b.Min, 0)
	maxX, minY := project(b.Max, 0)

	w := maxX - minX
	h := maxY - minY

	zoom := maxZoom
	if w > 0 {
		zoom = math.Min(zoom, math.Log2((v.width-2*fitPadding)/w))
	}
	if h > 0 {
		zoom = math.Min(zoom, math.Log2((v.height-2*fitPadding)/h))
	}
	zoom = math.Max(0, zoom)

	return Camera{
		Center: unproject((minX+maxX)/2, (minY+maxY)/2, 0),
		Zoom:   zoom,
	}
}

func distance(a, b ScreenPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
