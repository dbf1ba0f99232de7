package engine

import (
	"context"
	"errors"
	"image"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	ErrSourceExists   = errors.New("source already exists")
	ErrSourceNotFound = errors.New("source does not exist")
	ErrSourceInUse    = errors.New("source is referenced by a layer")
	ErrLayerExists    = errors.New("layer already exists")
	ErrLayerNotFound  = errors.New("layer does not exist")
	ErrImageExists    = errors.New("image already exists")
	ErrUnknownCluster = errors.New("unknown cluster id")
)

type EventType string

const (
	EventLoad       EventType = "load"
	EventClick      EventType = "click"
	EventMouseMove  EventType = "mousemove"
	EventMouseEnter EventType = "mouseenter"
	EventMouseLeave EventType = "mouseleave"
)

const (
	CursorPointer string = "pointer"
	CursorDefault string = ""
)

type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Camera struct {
	Center orb.Point `json:"center"`
	Zoom   float64   `json:"zoom"`
}

type ClusterOptions struct {
	MaxZoom int     `json:"clusterMaxZoom" yaml:"maxZoom"`
	Radius  float64 `json:"clusterRadius" yaml:"radius"`
}

type Source struct {
	Data    *geojson.FeatureCollection
	Cluster *ClusterOptions
}

type RenderedFeature struct {
	Layer   string           `json:"layer"`
	Source  string           `json:"source"`
	Feature *geojson.Feature `json:"feature"`
}

type Event struct {
	Type     EventType         `json:"type"`
	Layer    string            `json:"layer,omitempty"`
	Point    ScreenPoint       `json:"point"`
	LngLat   orb.Point         `json:"lngLat"`
	Features []RenderedFeature `json:"features,omitempty"`
}

type Handler func(ctx context.Context, e Event)

type Popup struct {
	ID      string    `json:"id"`
	LngLat  orb.Point `json:"lngLat"`
	Content string    `json:"content"`
}

// Engine is the map rendering engine. Implementations are not safe for
// concurrent use, all calls are expected to happen on the engine's event loop.
type Engine interface {
	HasSource(id string) bool
	AddSource(id string, src Source) error
	RemoveSource(id string) error

	HasLayer(id string) bool
	AddLayer(l Layer) error
	RemoveLayer(id string) error

	QueryRenderedFeatures(p ScreenPoint, layers ...string) []RenderedFeature
	ClusterExpansionZoom(source string, clusterID int) (float64, error)

	Camera() Camera
	EaseTo(c Camera)
	FitBounds(b orb.Bound)
	SetCursor(cursor string)

	OpenPopup(at orb.Point, content string) string
	ClosePopup(id string)

	LoadImage(url string, done func(img image.Image, err error))
	AddImage(name string, img image.Image) error
	HasImage(name string) bool

	On(event EventType, layer string, h Handler)
}

// Loop serializes work onto the engine's event loop.
type Loop interface {
	Do(ctx context.Context, fn func(ctx context.Context)) error
}
