package mapview

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/diwise/quakemap/internal/pkg/dataset"
	"github.com/diwise/quakemap/internal/pkg/engine"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/paulmach/orb"
)

var ErrEngineOperation = errors.New("engine operation failed")

// LayerManager owns the binding between a named dataset and the source and
// layers it occupies in the engine.
type LayerManager struct {
	engine engine.Engine
	bound  map[string][]string
}

func NewLayerManager(e engine.Engine) *LayerManager {
	return &LayerManager{
		engine: e,
		bound:  map[string][]string{},
	}
}

// Bound returns the ids of the layers currently attached to the named source.
func (m *LayerManager) Bound(name string) []string {
	return slices.Clone(m.bound[name])
}

// Rebuild replaces the named source and its layers. Anything previously bound
// to name is removed first, then the source is added with features and the
// layers are added in the given order. Layers that only draw clusters are
// skipped when cluster is nil. A failed add aborts the rebuild without
// rolling back what was already added.
func (m *LayerManager) Rebuild(ctx context.Context, name string, features []dataset.PointFeature, cluster *engine.ClusterOptions, layers []engine.Layer, fit *orb.Bound) error {
	log := logging.GetFromContext(ctx)

	if err := m.teardown(name, layers); err != nil {
		return err
	}

	err := m.engine.AddSource(name, engine.Source{
		Data:    dataset.Collection(features),
		Cluster: cluster,
	})
	if err != nil {
		return fmt.Errorf("%w: could not add source %s: %w", ErrEngineOperation, name, err)
	}

	for _, l := range layers {
		if cluster == nil && l.Filter == engine.FilterClusters {
			continue
		}

		l.Source = name

		if err := m.engine.AddLayer(l); err != nil {
			return fmt.Errorf("%w: could not add layer %s: %w", ErrEngineOperation, l.ID, err)
		}

		m.bound[name] = append(m.bound[name], l.ID)
	}

	if fit != nil {
		m.engine.FitBounds(*fit)
	}

	log.Debug("rebuilt dataset", "source", name, "features", len(features), "layers", len(m.bound[name]))

	return nil
}

func (m *LayerManager) teardown(name string, layers []engine.Layer) error {
	ids := slices.Clone(m.bound[name])
	for _, l := range layers {
		if !slices.Contains(ids, l.ID) {
			ids = append(ids, l.ID)
		}
	}

	for i := len(ids) - 1; i >= 0; i-- {
		if !m.engine.HasLayer(ids[i]) {
			continue
		}
		if err := m.engine.RemoveLayer(ids[i]); err != nil {
			return fmt.Errorf("%w: could not remove layer %s: %w", ErrEngineOperation, ids[i], err)
		}
	}

	delete(m.bound, name)

	if m.engine.HasSource(name) {
		if err := m.engine.RemoveSource(name); err != nil {
			return fmt.Errorf("%w: could not remove source %s: %w", ErrEngineOperation, name, err)
		}
	}

	return nil
}
