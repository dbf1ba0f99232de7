package mapview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"slices"
	"strings"
	"time"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/quakemap/internal/pkg/dataset"
	"github.com/diwise/quakemap/internal/pkg/engine"
	"github.com/diwise/quakemap/pkg/types"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("quakemap/mapview")

var ErrUnknownRegion = errors.New("unknown region")

//go:generate moq -rm -out app_mock.go . MapApp
type MapApp interface {
	Ready(ctx context.Context) error
	Select(ctx context.Context, name string) error
	Options() []string
	Selection(ctx context.Context) (dataset.Selection, error)
	Visible(ctx context.Context) ([]dataset.PointFeature, error)
	Features(region string) ([]dataset.PointFeature, error)
	Style(ctx context.Context) (engine.Snapshot, error)
	Fire(ctx context.Context, e engine.Event) error
}

// Map is an engine that runs its own event loop.
type Map interface {
	engine.Engine
	engine.Loop
	Fire(ctx context.Context, e engine.Event)
	Snapshot() engine.Snapshot
}

type Publisher interface {
	PublishOnTopic(ctx context.Context, message messaging.TopicMessage) error
}

type app struct {
	m         Map
	features  []dataset.PointFeature
	regions   dataset.Regions
	cfg       Config
	publisher Publisher

	store      *Store
	layers     *LayerManager
	controller *Controller
	metrics    *metrics

	// owned by the event loop
	visible   []dataset.PointFeature
	announced dataset.Selection
	outbox    []messaging.TopicMessage
}

// New wires the view state, layer manager and interaction controller to m.
// Ready is registered to run when m fires its load event. A nil publisher
// disables publishing of events.
func New(m Map, features []dataset.PointFeature, regions dataset.Regions, cfg Config, publisher Publisher) MapApp {
	a := &app{
		m:          m,
		features:   features,
		regions:    regions,
		cfg:        cfg,
		publisher:  publisher,
		store:      NewStore(),
		layers:     NewLayerManager(m),
		controller: NewController(m, cfg.Source, ClustersLayer, PointsLayer),
		metrics:    newMetrics(),
		visible:    features,
		announced:  dataset.AllRegions,
	}

	a.store.Subscribe(a.rebuild)

	m.On(engine.EventLoad, "", func(ctx context.Context, e engine.Event) {
		if err := a.Ready(ctx); err != nil {
			logging.GetFromContext(ctx).Error("failed to set up map layers", "err", err.Error())
		}
	})

	return a
}

// Ready attaches the interaction handlers, requests the marker image and marks
// the map as ready, which triggers the first rebuild. It runs on the event loop.
func (a *app) Ready(ctx context.Context) error {
	log := logging.GetFromContext(ctx)

	a.controller.Attach()

	marker := a.cfg.Marker
	a.m.LoadImage(marker.URL, func(img image.Image, err error) {
		if err != nil {
			log.Error("could not load marker image", "url", marker.URL, "err", err.Error())
			return
		}
		if a.m.HasImage(marker.Name) {
			return
		}
		if err := a.m.AddImage(marker.Name, img); err != nil {
			log.Error("could not add marker image", "name", marker.Name, "err", err.Error())
		}
	})

	err := a.store.SetMapReady(ctx, true)

	if outbox := a.drain(); len(outbox) > 0 {
		go a.publish(context.WithoutCancel(ctx), outbox)
	}

	return err
}

func (a *app) Select(ctx context.Context, name string) (err error) {
	ctx, span := tracer.Start(ctx, "select-region")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
	_, ctx, log := o11y.AddTraceIDToLoggerAndStoreInContext(span, logging.GetFromContext(ctx), ctx)

	selection, err := a.resolve(name)
	if err != nil {
		return err
	}

	var (
		previous  dataset.Selection
		selectErr error
		outbox    []messaging.TopicMessage
		visible   int
	)

	err = a.m.Do(ctx, func(ctx context.Context) {
		previous = a.announced
		selectErr = a.store.Select(ctx, selection)
		if selectErr == nil {
			a.announced = selection
		}
		visible = len(a.visible)
		outbox = a.drain()
	})
	if err != nil {
		return fmt.Errorf("could not reach map: %w", err)
	}

	if selectErr == nil && !previous.Equal(selection) {
		log.Info("selection changed", "region", selection.Label(), "previous", previous.Label())
		outbox = append(outbox, &types.SelectionChanged{
			Region:    selection.Label(),
			Previous:  previous.Label(),
			Features:  visible,
			Timestamp: time.Now().UTC(),
		})
	}

	a.publish(ctx, outbox)

	return selectErr
}

func (a *app) resolve(name string) (dataset.Selection, error) {
	if strings.EqualFold(name, dataset.AllRegionsLabel) {
		return dataset.AllRegions, nil
	}

	region, ok := a.regions.Find(name)
	if !ok {
		return dataset.Selection{}, fmt.Errorf("%w: %s", ErrUnknownRegion, name)
	}

	return dataset.Select(region), nil
}

// Options returns the selectable labels, AllRegions first followed by the
// region names in dataset order.
func (a *app) Options() []string {
	return append([]string{dataset.AllRegionsLabel}, a.regions.Names()...)
}

func (a *app) Selection(ctx context.Context) (dataset.Selection, error) {
	var selection dataset.Selection
	err := a.m.Do(ctx, func(ctx context.Context) {
		selection = a.store.State().Selection
	})
	return selection, err
}

func (a *app) Visible(ctx context.Context) ([]dataset.PointFeature, error) {
	var visible []dataset.PointFeature
	err := a.m.Do(ctx, func(ctx context.Context) {
		visible = slices.Clone(a.visible)
	})
	return visible, err
}

// Features filters the dataset for a region without touching the map.
func (a *app) Features(region string) ([]dataset.PointFeature, error) {
	if region == "" {
		return a.features, nil
	}

	selection, err := a.resolve(region)
	if err != nil {
		return nil, err
	}

	return dataset.Filter(a.features, selection), nil
}

func (a *app) Style(ctx context.Context) (engine.Snapshot, error) {
	var snapshot engine.Snapshot
	err := a.m.Do(ctx, func(ctx context.Context) {
		snapshot = a.m.Snapshot()
	})
	return snapshot, err
}

func (a *app) Fire(ctx context.Context, e engine.Event) error {
	return a.m.Do(ctx, func(ctx context.Context) {
		a.m.Fire(ctx, e)
	})
}

func (a *app) rebuild(ctx context.Context, prev, next State) error {
	a.visible = dataset.Filter(a.features, next.Selection)

	var fit *orb.Bound
	if b, ok := next.Selection.Bound(); ok {
		fit = &b
	}

	err := a.layers.Rebuild(ctx, a.cfg.Source, a.visible, a.cfg.Cluster, a.cfg.Layers, fit)
	if err != nil {
		a.metrics.rebuildsFailed.Add(ctx, 1)
		return err
	}

	a.metrics.rebuilds.Add(ctx, 1)

	a.outbox = append(a.outbox, &types.LayersRebuilt{
		Revision:  uuid.NewString(),
		Source:    a.cfg.Source,
		Region:    next.Selection.Label(),
		Layers:    a.layers.Bound(a.cfg.Source),
		Features:  len(a.visible),
		Clustered: a.cfg.Cluster != nil,
		Timestamp: time.Now().UTC(),
	})

	return nil
}

func (a *app) drain() []messaging.TopicMessage {
	outbox := a.outbox
	a.outbox = nil
	return outbox
}

func (a *app) publish(ctx context.Context, messages []messaging.TopicMessage) {
	if a.publisher == nil {
		return
	}

	log := logging.GetFromContext(ctx)

	for _, m := range messages {
		if err := a.publisher.PublishOnTopic(ctx, m); err != nil {
			log.Error("failed to publish message", "topic", m.TopicName(), "err", err.Error())
		}
	}
}
