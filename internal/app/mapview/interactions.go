package mapview

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/diwise/quakemap/internal/pkg/dataset"
	"github.com/diwise/quakemap/internal/pkg/engine"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Controller translates pointer events over the cluster and point layers
// into camera moves, cursor changes and popups.
type Controller struct {
	engine       engine.Engine
	source       string
	clusterLayer string
	pointLayer   string

	attached bool
	popup    string
	metrics  *metrics
}

func NewController(e engine.Engine, source, clusterLayer, pointLayer string) *Controller {
	return &Controller{
		engine:       e,
		source:       source,
		clusterLayer: clusterLayer,
		pointLayer:   pointLayer,
		metrics:      newMetrics(),
	}
}

// Attach registers the event handlers. Only the first call has any effect.
func (c *Controller) Attach() {
	if c.attached {
		return
	}
	c.attached = true

	for _, layer := range []string{c.clusterLayer, c.pointLayer} {
		c.engine.On(engine.EventMouseEnter, layer, c.pointer)
		c.engine.On(engine.EventMouseLeave, layer, c.reset)
	}

	c.engine.On(engine.EventClick, c.clusterLayer, c.expandCluster)
	c.engine.On(engine.EventClick, c.pointLayer, c.showDetails)
}

func (c *Controller) pointer(ctx context.Context, e engine.Event) {
	c.engine.SetCursor(engine.CursorPointer)
}

func (c *Controller) reset(ctx context.Context, e engine.Event) {
	c.engine.SetCursor(engine.CursorDefault)
}

func (c *Controller) expandCluster(ctx context.Context, e engine.Event) {
	log := logging.GetFromContext(ctx)

	features := c.engine.QueryRenderedFeatures(e.Point, c.clusterLayer)
	if len(features) == 0 {
		return
	}

	f := features[0].Feature
	clusterID, ok := f.Properties["cluster_id"]
	if !ok {
		return
	}

	zoom, err := c.engine.ClusterExpansionZoom(c.source, int(dataset.Number(f.Properties, "cluster_id")))
	if err != nil {
		log.Debug("ignoring click on cluster", "cluster_id", clusterID, "err", err.Error())
		return
	}

	center, ok := f.Geometry.(orb.Point)
	if !ok {
		return
	}

	c.engine.EaseTo(engine.Camera{Center: center, Zoom: zoom})
	c.metrics.expansions.Add(ctx, 1)
}

func (c *Controller) showDetails(ctx context.Context, e engine.Event) {
	if len(e.Features) == 0 {
		return
	}

	f := e.Features[0].Feature

	p, ok := f.Geometry.(orb.Point)
	if !ok {
		return
	}

	at := orb.Point{NormalizeLongitude(e.LngLat.Lon(), p.Lon()), p.Lat()}

	if c.popup != "" {
		c.engine.ClosePopup(c.popup)
	}

	c.popup = c.engine.OpenPopup(at, Details(f))
	c.metrics.popups.Add(ctx, 1)
}

// NormalizeLongitude shifts lon by whole turns until it is within 180 degrees
// of the clicked longitude, so that popups open on the world copy that was
// clicked.
func NormalizeLongitude(clicked, lon float64) float64 {
	for math.Abs(clicked-lon) > 180 {
		if clicked > lon {
			lon += 360
		} else {
			lon -= 360
		}
	}
	return lon
}

// Details renders the popup text for an earthquake feature.
func Details(f *geojson.Feature) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Magnitude: %v\n", dataset.Number(f.Properties, "mag"))
	fmt.Fprintf(&b, "Title: %s\n", dataset.String(f.Properties, "title"))
	fmt.Fprintf(&b, "Timestamp: %d", int64(dataset.Number(f.Properties, "time")))

	return b.String()
}
