package engine

import (
	"context"
	"fmt"
	"image"
	"slices"
	"sort"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type source struct {
	data    *geojson.FeatureCollection
	cluster *ClusterOptions
	index   *clusterIndex
}

func (s *source) rendered(zoom float64) []*geojson.Feature {
	if s.index == nil {
		return s.data.Features
	}

	nodes := s.index.nodes(zoom)
	features := make([]*geojson.Feature, 0, len(nodes))
	for _, n := range nodes {
		features = append(features, n.feature)
	}
	return features
}

type registration struct {
	event   EventType
	layer   string
	handler Handler
}

type Option func(*Scene)

func WithViewport(width, height float64) Option {
	return func(s *Scene) {
		s.viewport = viewport{width: width, height: height}
	}
}

func WithCamera(c Camera) Option {
	return func(s *Scene) {
		s.camera = c
	}
}

func WithImageFetcher(f ImageFetcher) Option {
	return func(s *Scene) {
		s.fetch = f
	}
}

// Scene is a headless map engine that keeps its sources, layers, camera and
// popups in memory. All methods except Run, Do and Post must be called from
// the scene's event loop.
type Scene struct {
	sources  map[string]*source
	layers   []Layer
	images   map[string]image.Image
	handlers []registration
	hovered  map[string]bool
	popups   []Popup
	camera   Camera
	viewport viewport
	cursor   string
	fetch    ImageFetcher

	queue   chan func(context.Context)
	stopped chan struct{}
}

func NewScene(opts ...Option) *Scene {
	s := &Scene{
		sources:  map[string]*source{},
		images:   map[string]image.Image{},
		hovered:  map[string]bool{},
		camera:   Camera{Center: orb.Point{-70.9, 42.35}, Zoom: 2},
		viewport: viewport{width: 1024, height: 768},
		fetch:    FetchImage,
		queue:    make(chan func(context.Context), 64),
		stopped:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run fires the load event and then executes queued work until ctx is done.
func (s *Scene) Run(ctx context.Context) {
	defer close(s.stopped)

	s.Fire(ctx, Event{Type: EventLoad})

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-s.queue:
			fn(ctx)
		}
	}
}

// Do runs fn on the event loop and waits for it to return. It must not be
// called from the event loop itself.
func (s *Scene) Do(ctx context.Context, fn func(ctx context.Context)) error {
	done := make(chan struct{})

	work := func(context.Context) {
		defer close(done)
		fn(ctx)
	}

	select {
	case s.queue <- work:
	case <-s.stopped:
		return fmt.Errorf("scene is not running")
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-s.stopped:
		return fmt.Errorf("scene stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn on the event loop without waiting for it.
func (s *Scene) Post(fn func(ctx context.Context)) {
	select {
	case s.queue <- fn:
	case <-s.stopped:
	}
}

func (s *Scene) HasSource(id string) bool {
	_, ok := s.sources[id]
	return ok
}

func (s *Scene) AddSource(id string, src Source) error {
	if s.HasSource(id) {
		return fmt.Errorf("%w: %s", ErrSourceExists, id)
	}

	data := src.Data
	if data == nil {
		data = geojson.NewFeatureCollection()
	}

	entry := &source{data: data, cluster: src.Cluster}
	if src.Cluster != nil {
		entry.index = newClusterIndex(data, *src.Cluster)
	}

	s.sources[id] = entry

	return nil
}

func (s *Scene) RemoveSource(id string) error {
	if !s.HasSource(id) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	}

	for _, l := range s.layers {
		if l.Source == id {
			return fmt.Errorf("%w: %s is used by %s", ErrSourceInUse, id, l.ID)
		}
	}

	delete(s.sources, id)

	return nil
}

func (s *Scene) HasLayer(id string) bool {
	return s.layerIndex(id) >= 0
}

func (s *Scene) layerIndex(id string) int {
	return slices.IndexFunc(s.layers, func(l Layer) bool { return l.ID == id })
}

func (s *Scene) AddLayer(l Layer) error {
	if s.HasLayer(l.ID) {
		return fmt.Errorf("%w: %s", ErrLayerExists, l.ID)
	}

	if !s.HasSource(l.Source) {
		return fmt.Errorf("layer %s: %w: %s", l.ID, ErrSourceNotFound, l.Source)
	}

	s.layers = append(s.layers, l)

	return nil
}

func (s *Scene) RemoveLayer(id string) error {
	i := s.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, id)
	}

	s.layers = slices.Delete(s.layers, i, i+1)
	delete(s.hovered, id)

	return nil
}

// QueryRenderedFeatures returns the features drawn under p. With no layer ids
// all layers are queried, topmost first. Hits within a layer are ordered by
// distance from p.
func (s *Scene) QueryRenderedFeatures(p ScreenPoint, layers ...string) []RenderedFeature {
	candidates := make([]Layer, 0, len(s.layers))

	if len(layers) == 0 {
		for i := len(s.layers) - 1; i >= 0; i-- {
			candidates = append(candidates, s.layers[i])
		}
	} else {
		for _, id := range layers {
			if i := s.layerIndex(id); i >= 0 {
				candidates = append(candidates, s.layers[i])
			}
		}
	}

	result := []RenderedFeature{}

	for _, l := range candidates {
		src, ok := s.sources[l.Source]
		if !ok {
			continue
		}

		type hit struct {
			feature  *geojson.Feature
			distance float64
		}

		hits := []hit{}

		for _, f := range src.rendered(s.camera.Zoom) {
			if !l.Filter.Matches(f.Properties) {
				continue
			}

			pt, ok := f.Geometry.(orb.Point)
			if !ok {
				continue
			}

			sp := s.viewport.toScreen(s.camera, pt)
			d := distance(sp, p)

			if d <= l.hitRadius(f.Properties) {
				hits = append(hits, hit{f, d})
			}
		}

		sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

		for _, h := range hits {
			result = append(result, RenderedFeature{Layer: l.ID, Source: l.Source, Feature: h.feature})
		}
	}

	return result
}

func (s *Scene) ClusterExpansionZoom(sourceID string, clusterID int) (float64, error) {
	src, ok := s.sources[sourceID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}

	if src.index == nil {
		return 0, fmt.Errorf("%w: source %s is not clustered", ErrUnknownCluster, sourceID)
	}

	return src.index.expansionZoom(clusterID)
}

func (s *Scene) Camera() Camera {
	return s.camera
}

func (s *Scene) EaseTo(c Camera) {
	s.camera = c
}

func (s *Scene) FitBounds(b orb.Bound) {
	s.camera = s.viewport.fit(b)
}

func (s *Scene) SetCursor(cursor string) {
	s.cursor = cursor
}

func (s *Scene) Cursor() string {
	return s.cursor
}

func (s *Scene) OpenPopup(at orb.Point, content string) string {
	p := Popup{ID: uuid.NewString(), LngLat: at, Content: content}
	s.popups = append(s.popups, p)
	return p.ID
}

func (s *Scene) ClosePopup(id string) {
	s.popups = slices.DeleteFunc(s.popups, func(p Popup) bool { return p.ID == id })
}

func (s *Scene) Popups() []Popup {
	return slices.Clone(s.popups)
}

// LoadImage fetches url in the background and calls done on the event loop.
func (s *Scene) LoadImage(url string, done func(img image.Image, err error)) {
	fetch := s.fetch

	go func() {
		img, err := fetch(url)
		s.Post(func(context.Context) {
			done(img, err)
		})
	}()
}

func (s *Scene) AddImage(name string, img image.Image) error {
	if s.HasImage(name) {
		return fmt.Errorf("%w: %s", ErrImageExists, name)
	}
	s.images[name] = img
	return nil
}

func (s *Scene) HasImage(name string) bool {
	_, ok := s.images[name]
	return ok
}

func (s *Scene) On(event EventType, layer string, h Handler) {
	s.handlers = append(s.handlers, registration{event: event, layer: layer, handler: h})
}

// Fire dispatches a pointer or load event to the registered handlers. Layer
// handlers only receive events over features of their layer. Mouse moves are
// translated into mouseenter and mouseleave events per layer.
func (s *Scene) Fire(ctx context.Context, e Event) {
	if e.Type != EventLoad {
		e.LngLat = s.viewport.fromScreen(s.camera, e.Point)
	}

	for _, r := range slices.Clone(s.handlers) {
		switch {
		case r.layer == "":
			if r.event == e.Type {
				r.handler(ctx, e)
			}
		case r.event == e.Type && e.Type == EventClick:
			s.dispatch(ctx, r, e)
		}
	}

	if e.Type == EventMouseMove {
		s.hover(ctx, e)
	}
}

func (s *Scene) dispatch(ctx context.Context, r registration, e Event) {
	features := s.QueryRenderedFeatures(e.Point, r.layer)
	if len(features) == 0 {
		return
	}

	e.Layer = r.layer
	e.Features = features
	r.handler(ctx, e)
}

// hover derives enter and leave events from a mouse move. All leave events are
// dispatched before any enter event, so moving from one layer straight onto
// another ends with the entered layer's handlers.
func (s *Scene) hover(ctx context.Context, e Event) {
	var leaves, enters []Event

	for _, l := range slices.Clone(s.layers) {
		features := s.QueryRenderedFeatures(e.Point, l.ID)
		over := len(features) > 0

		if over == s.hovered[l.ID] {
			continue
		}
		s.hovered[l.ID] = over

		event := e
		event.Layer = l.ID

		if over {
			event.Type = EventMouseEnter
			event.Features = features
			enters = append(enters, event)
		} else {
			event.Type = EventMouseLeave
			event.Features = nil
			leaves = append(leaves, event)
		}
	}

	for _, event := range append(leaves, enters...) {
		for _, r := range slices.Clone(s.handlers) {
			if r.layer == event.Layer && r.event == event.Type {
				r.handler(ctx, event)
			}
		}
	}
}

func (s *Scene) ScreenPoint(p orb.Point) ScreenPoint {
	return s.viewport.toScreen(s.camera, p)
}
