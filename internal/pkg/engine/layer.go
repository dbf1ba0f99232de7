package engine

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

type LayerType string

const (
	LayerTypeCircle LayerType = "circle"
	LayerTypeSymbol LayerType = "symbol"
)

// Filter selects which features of a clustered source a layer draws.
type Filter string

const (
	FilterNone     Filter = ""
	FilterClusters Filter = "clusters"
	FilterPoints   Filter = "points"
)

func (f Filter) Matches(props geojson.Properties) bool {
	_, isCluster := props["point_count"]

	switch f {
	case FilterClusters:
		return isCluster
	case FilterPoints:
		return !isCluster
	default:
		return true
	}
}

// Expression returns the filter as a style expression, or nil for FilterNone.
func (f Filter) Expression() any {
	switch f {
	case FilterClusters:
		return []any{"has", "point_count"}
	case FilterPoints:
		return []any{"!", []any{"has", "point_count"}}
	default:
		return nil
	}
}

type Layer struct {
	ID     string         `yaml:"id"`
	Type   LayerType      `yaml:"type"`
	Source string         `yaml:"source"`
	Filter Filter         `yaml:"filter"`
	Paint  map[string]any `yaml:"paint"`
	Layout map[string]any `yaml:"layout"`
}

func (l Layer) MarshalJSON() ([]byte, error) {
	type layerJSON struct {
		ID     string         `json:"id"`
		Type   LayerType      `json:"type"`
		Source string         `json:"source"`
		Filter any            `json:"filter,omitempty"`
		Paint  map[string]any `json:"paint,omitempty"`
		Layout map[string]any `json:"layout,omitempty"`
	}

	return json.Marshal(layerJSON{
		ID:     l.ID,
		Type:   l.Type,
		Source: l.Source,
		Filter: l.Filter.Expression(),
		Paint:  l.Paint,
		Layout: l.Layout,
	})
}

const symbolHitRadius float64 = 12

// hitRadius is the distance in pixels from a feature's center within which a
// pointer is considered to be over the feature.
func (l Layer) hitRadius(props geojson.Properties) float64 {
	if l.Type == LayerTypeSymbol {
		return symbolHitRadius
	}

	if r, ok := evaluate(l.Paint["circle-radius"], props); ok {
		return r
	}

	return 5
}

// evaluate resolves a numeric paint value, either a literal or a step
// expression of the form ["step", ["get", prop], base, stop, value, ...].
func evaluate(value any, props geojson.Properties) (float64, bool) {
	if n, ok := toFloat(value); ok {
		return n, true
	}

	expr, ok := value.([]any)
	if !ok || len(expr) < 3 || expr[0] != "step" {
		return 0, false
	}

	input, ok := evaluateGet(expr[1], props)
	if !ok {
		return 0, false
	}

	result, ok := toFloat(expr[2])
	if !ok {
		return 0, false
	}

	for i := 3; i+1 < len(expr); i += 2 {
		stop, ok := toFloat(expr[i])
		if !ok || input < stop {
			break
		}
		if v, ok := toFloat(expr[i+1]); ok {
			result = v
		}
	}

	return result, true
}

func evaluateGet(value any, props geojson.Properties) (float64, bool) {
	get, ok := value.([]any)
	if !ok || len(get) != 2 || get[0] != "get" {
		return 0, false
	}

	key, ok := get[1].(string)
	if !ok {
		return 0, false
	}

	return toFloat(props[key])
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func (l Layer) String() string {
	return fmt.Sprintf("%s(%s)", l.ID, l.Type)
}
