package storage

import (
	"github.com/diwise/quakemap/internal/pkg/dataset"
	"github.com/jackc/pgx/v5"
	"github.com/paulmach/orb"
)

type ConditionFunc func(map[string]any) map[string]any

type QueryResult struct {
	Data       []dataset.PointFeature
	Count      int
	Limit      int
	Offset     int
	TotalCount int64
}

func WithOffset(offset int) ConditionFunc {
	return func(m map[string]any) map[string]any {
		m["offset"] = offset
		return m
	}
}

func WithLimit(limit int) ConditionFunc {
	return func(m map[string]any) map[string]any {
		m["limit"] = limit
		return m
	}
}

func WithMinMagnitude(magnitude float64) ConditionFunc {
	return func(m map[string]any) map[string]any {
		m["min_mag"] = magnitude
		return m
	}
}

// WithBound limits the result to earthquakes located within b, edges included.
func WithBound(b orb.Bound) ConditionFunc {
	return func(m map[string]any) map[string]any {
		m["bound"] = b
		return m
	}
}

func newConditions(conditions ...ConditionFunc) map[string]any {
	m := make(map[string]any)

	for _, f := range conditions {
		m = f(m)
	}

	if _, ok := m["limit"]; !ok {
		m["limit"] = 1000
	}

	if _, ok := m["offset"]; !ok {
		m["offset"] = 0
	}

	return m
}

func newQueryFeaturesParams(conditions ...ConditionFunc) (string, pgx.NamedArgs) {
	c := newConditions(conditions...)

	query := "WHERE 1=1"
	args := pgx.NamedArgs{}

	if mag, ok := c["min_mag"]; ok {
		query += " AND magnitude >= @min_mag"
		args["min_mag"] = mag
	}

	if b, ok := c["bound"].(orb.Bound); ok {
		query += " AND location <@ box(point(@min_lon,@min_lat), point(@max_lon,@max_lat))"
		args["min_lon"] = b.Min.Lon()
		args["min_lat"] = b.Min.Lat()
		args["max_lon"] = b.Max.Lon()
		args["max_lat"] = b.Max.Lat()
	}

	query += " ORDER BY seq ASC"

	if offset, ok := c["offset"]; ok {
		query += " OFFSET @offset"
		args["offset"] = offset
	}

	if limit, ok := c["limit"]; ok {
		query += " LIMIT @limit"
		args["limit"] = limit
	}

	return query, args
}
