package engine

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	DefaultClusterMaxZoom int     = 14
	DefaultClusterRadius  float64 = 50
)

type node struct {
	id       int
	zoom     int
	center   orb.Point
	count    int
	feature  *geojson.Feature
	children []*node
}

func (n *node) isCluster() bool {
	return n.id >= 0
}

// clusterIndex groups the point features of a source into a hierarchy of
// clusters, one level per integer zoom from 0 to maxZoom. Level maxZoom+1
// holds the unclustered points.
type clusterIndex struct {
	maxZoom  int
	radius   float64
	levels   [][]*node
	clusters map[int]*node
}

func newClusterIndex(fc *geojson.FeatureCollection, opts ClusterOptions) *clusterIndex {
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = DefaultClusterMaxZoom
	}
	if opts.Radius <= 0 {
		opts.Radius = DefaultClusterRadius
	}

	idx := &clusterIndex{
		maxZoom:  opts.MaxZoom,
		radius:   opts.Radius,
		levels:   make([][]*node, opts.MaxZoom+2),
		clusters: map[int]*node{},
	}

	points := make([]*node, 0, len(fc.Features))
	for _, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		points = append(points, &node{id: -1, zoom: idx.maxZoom + 1, center: p, count: 1, feature: f})
	}

	level := points
	idx.levels[idx.maxZoom+1] = level

	for z := idx.maxZoom; z >= 0; z-- {
		level = idx.cluster(level, z)
		idx.levels[z] = level
	}

	return idx
}

type cell struct {
	x, y int
}

// cluster greedily merges items within radius pixels of each other at zoom z.
// Items without neighbours are carried over to the next level unchanged.
func (idx *clusterIndex) cluster(items []*node, z int) []*node {
	type projected struct {
		x, y float64
	}

	pos := make([]projected, len(items))
	grid := map[cell][]int{}

	for i, n := range items {
		x, y := project(n.center, float64(z))
		pos[i] = projected{x, y}
		c := cell{int(math.Floor(x / idx.radius)), int(math.Floor(y / idx.radius))}
		grid[c] = append(grid[c], i)
	}

	used := make([]bool, len(items))
	result := make([]*node, 0, len(items))

	for i, n := range items {
		if used[i] {
			continue
		}
		used[i] = true

		c := cell{int(math.Floor(pos[i].x / idx.radius)), int(math.Floor(pos[i].y / idx.radius))}
		members := []*node{n}

		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, j := range grid[cell{c.x + dx, c.y + dy}] {
					if used[j] {
						continue
					}
					if math.Hypot(pos[j].x-pos[i].x, pos[j].y-pos[i].y) <= idx.radius {
						used[j] = true
						members = append(members, items[j])
					}
				}
			}
		}

		if len(members) == 1 {
			result = append(result, n)
			continue
		}

		result = append(result, idx.newCluster(members, z))
	}

	return result
}

func (idx *clusterIndex) newCluster(members []*node, z int) *node {
	var lon, lat float64
	count := 0

	for _, m := range members {
		lon += m.center.Lon() * float64(m.count)
		lat += m.center.Lat() * float64(m.count)
		count += m.count
	}

	n := &node{
		id:       len(idx.clusters),
		zoom:     z,
		center:   orb.Point{lon / float64(count), lat / float64(count)},
		count:    count,
		children: members,
	}

	f := geojson.NewFeature(n.center)
	f.Properties["cluster"] = true
	f.Properties["cluster_id"] = n.id
	f.Properties["point_count"] = n.count
	f.Properties["point_count_abbreviated"] = abbreviate(n.count)
	n.feature = f

	idx.clusters[n.id] = n

	return n
}

// nodes returns what is drawn at zoom.
func (idx *clusterIndex) nodes(zoom float64) []*node {
	z := int(math.Floor(zoom))
	if z < 0 {
		z = 0
	}
	if z > idx.maxZoom {
		z = idx.maxZoom + 1
	}
	return idx.levels[z]
}

// expansionZoom is the zoom at which the cluster breaks apart into its children.
func (idx *clusterIndex) expansionZoom(clusterID int) (float64, error) {
	n, ok := idx.clusters[clusterID]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCluster, clusterID)
	}
	return float64(n.zoom + 1), nil
}

func abbreviate(count int) string {
	switch {
	case count >= 1_000_000:
		return fmt.Sprintf("%dM", int(math.Round(float64(count)/1_000_000)))
	case count >= 10_000:
		return fmt.Sprintf("%dk", int(math.Round(float64(count)/1_000)))
	case count >= 1_000:
		return fmt.Sprintf("%.1fk", math.Round(float64(count)/100)/10)
	default:
		return fmt.Sprint(count)
	}
}
