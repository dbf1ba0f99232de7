package mapview

import (
	"context"
	"errors"
	"image"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/quakemap/internal/pkg/dataset"
	"github.com/diwise/quakemap/internal/pkg/engine"
	"github.com/diwise/quakemap/pkg/types"
	"github.com/matryer/is"
	"github.com/paulmach/orb"
)

func TestSelectRegionRebuildsOnce(t *testing.T) {
	is := is.New(t)
	ctx, a, pub, _ := testSetup(t)

	is.NoErr(a.Select(ctx, "Squareland"))

	visible, err := a.Visible(ctx)
	is.NoErr(err)
	is.Equal(len(visible), 1)
	is.Equal(visible[0].ID, "inside")

	is.Equal(pub.rebuilds("Squareland"), 1)
	is.Equal(pub.count("selection.changed"), 1)

	style, err := a.Style(ctx)
	is.NoErr(err)
	is.Equal(len(style.Sources), 1)
	is.Equal(len(style.Sources[DatasetName].Data.Features), 1)
	is.Equal(layerIDs(style), []string{ClustersLayer, ClusterCountLayer, PointsLayer})

	is.NoErr(a.Select(ctx, "squareland"))
	is.Equal(pub.rebuilds("Squareland"), 1) // same selection is not a transition
	is.Equal(pub.count("selection.changed"), 1)

	selection, err := a.Selection(ctx)
	is.NoErr(err)
	is.Equal(selection.Label(), "Squareland")
}

func TestSwitchingRegionsDoesNotLeakFeatures(t *testing.T) {
	is := is.New(t)
	ctx, a, pub, _ := testSetup(t)

	is.NoErr(a.Select(ctx, "Squareland"))
	is.NoErr(a.Select(ctx, "Islands"))

	style, err := a.Style(ctx)
	is.NoErr(err)

	features := style.Sources[DatasetName].Data.Features
	is.Equal(len(features), 1)
	is.Equal(features[0].ID, "outside-2")

	// the initial rebuild on ready is published asynchronously
	is.True(eventually(func() bool { return pub.rebuilds(dataset.AllRegionsLabel) == 1 }))

	is.NoErr(a.Select(ctx, dataset.AllRegionsLabel))
	visible, _ := a.Visible(ctx)
	is.Equal(len(visible), 3)
	is.True(eventually(func() bool { return pub.rebuilds(dataset.AllRegionsLabel) == 2 }))
}

func TestSelectRegionWithoutGeometryShowsNothing(t *testing.T) {
	is := is.New(t)
	ctx, a, _, _ := testSetup(t)

	is.NoErr(a.Select(ctx, "Nowhere"))

	visible, err := a.Visible(ctx)
	is.NoErr(err)
	is.Equal(len(visible), 0)
}

func TestSelectUnknownRegion(t *testing.T) {
	is := is.New(t)
	ctx, a, pub, _ := testSetup(t)

	err := a.Select(ctx, "Atlantis")
	is.True(errors.Is(err, ErrUnknownRegion))
	is.Equal(pub.count("selection.changed"), 0)

	_, err = a.Features("Atlantis")
	is.True(errors.Is(err, ErrUnknownRegion))
}

func TestSelectSurfacesEngineFailures(t *testing.T) {
	is := is.New(t)
	ctx, a, pub, m := testSetup(t)

	is.NoErr(m.Do(ctx, func(ctx context.Context) { m.failLayer = PointsLayer }))

	err := a.Select(ctx, "Squareland")
	is.True(errors.Is(err, ErrEngineOperation))
	is.Equal(pub.count("selection.changed"), 0)
}

func TestSelectCanBeRetriedAfterEngineFailure(t *testing.T) {
	is := is.New(t)
	ctx, a, pub, m := testSetup(t)

	is.NoErr(m.Do(ctx, func(ctx context.Context) { m.failLayer = PointsLayer }))

	err := a.Select(ctx, "Squareland")
	is.True(errors.Is(err, ErrEngineOperation))

	style, err := a.Style(ctx)
	is.NoErr(err)
	is.Equal(layerIDs(style), []string{ClustersLayer, ClusterCountLayer})

	is.NoErr(m.Do(ctx, func(ctx context.Context) { m.failLayer = "" }))

	is.NoErr(a.Select(ctx, "Squareland"))

	style, err = a.Style(ctx)
	is.NoErr(err)
	is.Equal(layerIDs(style), []string{ClustersLayer, ClusterCountLayer, PointsLayer})
	is.Equal(len(style.Sources[DatasetName].Data.Features), 1)

	is.Equal(pub.rebuilds("Squareland"), 1)
	is.Equal(pub.count("selection.changed"), 1)
}

func TestOptionsListAllRegionsFirst(t *testing.T) {
	is := is.New(t)
	_, a, _, _ := testSetup(t)

	is.Equal(a.Options(), []string{dataset.AllRegionsLabel, "Squareland", "Islands", "Nowhere"})
}

func TestFeaturesFiltersWithoutTouchingTheMap(t *testing.T) {
	is := is.New(t)
	ctx, a, pub, _ := testSetup(t)

	features, err := a.Features("Islands")
	is.NoErr(err)
	is.Equal(len(features), 1)

	all, err := a.Features("")
	is.NoErr(err)
	is.Equal(len(all), 3)

	selection, _ := a.Selection(ctx)
	is.True(selection.IsAll())
	is.Equal(pub.count("selection.changed"), 0)
}

func TestFireForwardsClicksToTheMap(t *testing.T) {
	is := is.New(t)
	ctx, a, _, m := testSetup(t)

	var at engine.ScreenPoint
	is.NoErr(m.Do(ctx, func(ctx context.Context) {
		m.EaseTo(engine.Camera{Center: orb.Point{15, 5}, Zoom: 14})
		at = m.ScreenPoint(orb.Point{15, 5})
	}))

	is.NoErr(a.Fire(ctx, engine.Event{Type: engine.EventClick, Point: at}))

	style, err := a.Style(ctx)
	is.NoErr(err)
	is.Equal(len(style.Popups), 1)
	is.True(strings.Contains(style.Popups[0].Content, "Magnitude: 2"))
}

func TestLoadConfig(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfig(strings.NewReader(configYAML))
	is.NoErr(err)
	is.Equal(cfg.Cluster.Radius, 40.0)
	is.Equal(cfg.Cluster.MaxZoom, engine.DefaultClusterMaxZoom)
	is.Equal(cfg.Marker.URL, "http://localhost:3000/mapbox-icon.png")
	is.Equal(cfg.Marker.Name, MarkerImage)
	is.Equal(len(cfg.Layers), 3)

	cfg, err = LoadConfig(strings.NewReader("cluster: null\n"))
	is.NoErr(err)
	is.True(cfg.Cluster == nil)

	_, err = LoadConfig(strings.NewReader("layers:\n  - id: points\n  - id: points\n"))
	is.True(errors.Is(err, ErrInvalidConfig))

	_, err = LoadConfig(strings.NewReader("layers:\n  - id: points\n    type: symbol\n    filter: points\n  - id: clusters\n    type: circle\n    filter: clusters\n"))
	is.True(errors.Is(err, ErrInvalidConfig)) // points drawn below clusters

	cfg, err = LoadConfig(strings.NewReader("layers:\n  - id: clusters\n    type: circle\n    filter: clusters\n  - id: points\n    type: symbol\n    filter: points\n  - id: labels\n    type: symbol\n"))
	is.NoErr(err)
	is.Equal(len(cfg.Layers), 3)

	cfg, err = LoadConfig(strings.NewReader(""))
	is.NoErr(err)
	is.Equal(cfg.Source, DatasetName)
}

func TestPublishFailureDoesNotFailSelection(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	scene := engine.NewScene(engine.WithImageFetcher(func(url string) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 48, 48)), nil
	}))

	var mu sync.Mutex
	topics := []string{}

	msgCtx := &messaging.MsgContextMock{
		PublishOnTopicFunc: func(ctx context.Context, message messaging.TopicMessage) error {
			mu.Lock()
			defer mu.Unlock()
			topics = append(topics, message.TopicName())
			return errors.New("channel closed")
		},
	}

	a := New(scene, threePoints(), testRegions(t), DefaultConfig(), msgCtx)
	go scene.Run(ctx)

	is.NoErr(a.Select(ctx, "Squareland"))

	mu.Lock()
	defer mu.Unlock()
	is.True(slices.Contains(topics, "layers.rebuilt"))
	is.True(slices.Contains(topics, "selection.changed"))
}

type testMap struct {
	*engine.Scene
	failLayer string
}

func (m *testMap) AddLayer(l engine.Layer) error {
	if l.ID == m.failLayer {
		return errors.New("style is not done loading")
	}
	return m.Scene.AddLayer(l)
}

type recorder struct {
	mu       sync.Mutex
	messages []messaging.TopicMessage
}

func (r *recorder) PublishOnTopic(ctx context.Context, message messaging.TopicMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *recorder) count(topic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, m := range r.messages {
		if m.TopicName() == topic {
			n++
		}
	}
	return n
}

func (r *recorder) rebuilds(region string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, m := range r.messages {
		if lr, ok := m.(*types.LayersRebuilt); ok && lr.Region == region {
			n++
		}
	}
	return n
}

func testSetup(t *testing.T) (context.Context, MapApp, *recorder, *testMap) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := &testMap{
		Scene: engine.NewScene(engine.WithImageFetcher(func(url string) (image.Image, error) {
			return image.NewRGBA(image.Rect(0, 0, 48, 48)), nil
		})),
	}

	pub := &recorder{}
	a := New(m, threePoints(), testRegions(t), DefaultConfig(), pub)

	go m.Run(ctx)

	// the load event is handled before any queued work
	if _, err := a.Style(ctx); err != nil {
		t.Fatal(err)
	}

	return ctx, a, pub, m
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func testRegions(t *testing.T) dataset.Regions {
	regions, err := dataset.LoadRegions(strings.NewReader(countriesJSON), "")
	if err != nil {
		t.Fatal(err)
	}
	return regions
}

func threePoints() []dataset.PointFeature {
	return []dataset.PointFeature{
		{ID: "inside", Coordinates: orb.Point{5, 5}, Magnitude: 1, Title: "inside", Time: 1},
		{ID: "outside-1", Coordinates: orb.Point{15, 5}, Magnitude: 2, Title: "outside", Time: 2},
		{ID: "outside-2", Coordinates: orb.Point{21, 21}, Magnitude: 3, Title: "island", Time: 3},
	}
}

const countriesJSON string = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "properties": {"ADMIN": "Squareland"}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]}},
		{"type": "Feature", "properties": {"ADMIN": "Islands"}, "geometry": {"type": "MultiPolygon", "coordinates": [[[[20, 20], [25, 20], [25, 25], [20, 25], [20, 20]]], [[[30, 30], [35, 30], [35, 35], [30, 35], [30, 30]]]]}},
		{"type": "Feature", "properties": {"ADMIN": "Nowhere"}, "geometry": null}
	]
}`

const configYAML string = `
marker:
  url: http://localhost:3000/mapbox-icon.png
cluster:
  radius: 40
`

func TestShippedConfigMatchesDefaults(t *testing.T) {
	is := is.New(t)

	f, err := os.Open("../../../assets/config/quakemap.yaml")
	is.NoErr(err)
	defer f.Close()

	cfg, err := LoadConfig(f)
	is.NoErr(err)

	defaults := DefaultConfig()
	is.Equal(cfg.Source, defaults.Source)
	is.Equal(*cfg.Cluster, *defaults.Cluster)
	is.Equal(len(cfg.Layers), len(defaults.Layers))

	for i, l := range cfg.Layers {
		is.Equal(l.ID, defaults.Layers[i].ID)
		is.Equal(l.Type, defaults.Layers[i].Type)
		is.Equal(l.Filter, defaults.Layers[i].Filter)
	}
}
