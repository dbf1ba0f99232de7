package mapview

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var meter = otel.Meter("quakemap/mapview")

type metrics struct {
	rebuilds       metric.Int64Counter
	rebuildsFailed metric.Int64Counter
	popups         metric.Int64Counter
	expansions     metric.Int64Counter
}

func newMetrics() *metrics {
	return &metrics{
		rebuilds:       counter("quakemap.layers.rebuilds", "number of dataset rebuilds"),
		rebuildsFailed: counter("quakemap.layers.rebuilds.failed", "number of dataset rebuilds that failed"),
		popups:         counter("quakemap.popups.opened", "number of detail popups opened"),
		expansions:     counter("quakemap.clusters.expanded", "number of clusters expanded by click"),
	}
}

func counter(name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}
