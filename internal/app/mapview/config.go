package mapview

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/diwise/quakemap/internal/pkg/engine"
	"gopkg.in/yaml.v2"
)

const (
	ClustersLayer     string = "clusters"
	ClusterCountLayer string = "cluster-count"
	PointsLayer       string = "points"
	DatasetName       string = "earthquakes"
	MarkerImage       string = "marker"
)

type Config struct {
	Source  string                 `yaml:"source"`
	Marker  MarkerConfig           `yaml:"marker"`
	Cluster *engine.ClusterOptions `yaml:"cluster"`
	Layers  []engine.Layer         `yaml:"layers"`
}

type MarkerConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

func DefaultConfig() Config {
	return Config{
		Source: DatasetName,
		Marker: MarkerConfig{
			Name: MarkerImage,
			URL:  "assets/mapbox-icon.png",
		},
		Cluster: &engine.ClusterOptions{
			MaxZoom: engine.DefaultClusterMaxZoom,
			Radius:  engine.DefaultClusterRadius,
		},
		Layers: []engine.Layer{
			{
				ID:     ClustersLayer,
				Type:   engine.LayerTypeCircle,
				Filter: engine.FilterClusters,
				Paint: map[string]any{
					"circle-color":  []any{"step", []any{"get", "point_count"}, "#51bbd6", 100, "#f1f075", 750, "#f28cb1"},
					"circle-radius": []any{"step", []any{"get", "point_count"}, 20, 100, 30, 750, 40},
				},
			},
			{
				ID:     ClusterCountLayer,
				Type:   engine.LayerTypeSymbol,
				Filter: engine.FilterClusters,
				Layout: map[string]any{
					"text-field": "{point_count_abbreviated}",
					"text-font":  []any{"DIN Offc Pro Medium", "Arial Unicode MS Bold"},
					"text-size":  12,
				},
			},
			{
				ID:     PointsLayer,
				Type:   engine.LayerTypeSymbol,
				Filter: engine.FilterPoints,
				Layout: map[string]any{
					"icon-image": MarkerImage,
					"icon-size":  0.25,
				},
			},
		},
	}
}

var ErrInvalidConfig = errors.New("invalid configuration")

// LoadConfig decodes a YAML configuration on top of the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	err := yaml.NewDecoder(r).Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}

	for i := range cfg.Layers {
		cfg.Layers[i].Paint = normalize(cfg.Layers[i].Paint)
		cfg.Layers[i].Layout = normalize(cfg.Layers[i].Layout)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Source == "" {
		return fmt.Errorf("%w: source name must be provided", ErrInvalidConfig)
	}

	seen := map[string]bool{}
	for _, l := range c.Layers {
		if l.ID == "" {
			return fmt.Errorf("%w: layer id must be provided", ErrInvalidConfig)
		}
		if seen[l.ID] {
			return fmt.Errorf("%w: duplicate layer id %s", ErrInvalidConfig, l.ID)
		}
		seen[l.ID] = true
	}

	for _, required := range []string{ClustersLayer, PointsLayer} {
		if !seen[required] {
			return fmt.Errorf("%w: layer %s must be configured", ErrInvalidConfig, required)
		}
	}

	// clusters, cluster-count and points are drawn bottom to top in that order
	order := []string{ClustersLayer, ClusterCountLayer, PointsLayer}
	last := -1
	for _, l := range c.Layers {
		i := slices.Index(order, l.ID)
		if i < 0 {
			continue
		}
		if i < last {
			return fmt.Errorf("%w: layer %s must be configured before %s", ErrInvalidConfig, l.ID, order[last])
		}
		last = i
	}

	return nil
}

// normalize converts the map[interface{}]interface{} values produced by
// yaml.v2 into map[string]any so that they can be encoded as JSON.
func normalize(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeValue(val)
		}
		return m
	case map[string]any:
		return normalize(t)
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = normalizeValue(val)
		}
		return s
	default:
		return v
	}
}
