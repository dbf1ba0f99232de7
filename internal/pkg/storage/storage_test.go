package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/diwise/quakemap/internal/pkg/dataset"
	"github.com/diwise/quakemap/internal/pkg/geometry"
	"github.com/matryer/is"
	"github.com/paulmach/orb"
)

func TestSeedAndQueryFeatures(t *testing.T) {
	db, ctx, cancel, err := new()
	defer cancel()

	if err != nil {
		t.Log("could not connect to database or create tables, will skip test")
		t.SkipNow()
	}
	defer db.Close()

	is := is.New(t)

	features := []dataset.PointFeature{
		{ID: "ak1", Coordinates: orb.Point{-150.1, 61.2}, Magnitude: 4.2, Title: "M 4.2 - Alaska", Time: 1507425650893},
		{ID: "nc1", Coordinates: orb.Point{-122.8, 38.8}, Magnitude: 1.1, Title: "M 1.1 - California", Time: 1507425289659},
		{ID: "us1", Coordinates: orb.Point{143.3, 37.1}, Magnitude: 5.6, Title: "M 5.6 - Japan", Time: 1507424832518},
	}

	err = db.Seed(ctx, features, testRegions(t))
	is.NoErr(err)

	result, err := db.QueryFeatures(ctx)
	is.NoErr(err)
	is.Equal(result.TotalCount, int64(3))
	is.Equal(result.Data[0].ID, "ak1")
	is.Equal(result.Data[2].Coordinates, orb.Point{143.3, 37.1})

	result, err = db.QueryFeatures(ctx, WithMinMagnitude(4))
	is.NoErr(err)
	is.Equal(result.TotalCount, int64(2))

	result, err = db.QueryFeatures(ctx, WithBound(orb.Bound{Min: orb.Point{-130, 30}, Max: orb.Point{-110, 45}}))
	is.NoErr(err)
	is.Equal(result.Count, 1)
	is.Equal(result.Data[0].ID, "nc1")

	result, err = db.QueryFeatures(ctx, WithLimit(1), WithOffset(1))
	is.NoErr(err)
	is.Equal(result.Count, 1)
	is.Equal(result.TotalCount, int64(3))
	is.Equal(result.Data[0].ID, "nc1")

	err = db.Seed(ctx, features[:1], testRegions(t))
	is.NoErr(err)

	result, err = db.QueryFeatures(ctx)
	is.NoErr(err)
	is.Equal(result.TotalCount, int64(1))
}

func TestSeedAndLoadRegions(t *testing.T) {
	db, ctx, cancel, err := new()
	defer cancel()

	if err != nil {
		t.Log("could not connect to database or create tables, will skip test")
		t.SkipNow()
	}
	defer db.Close()

	is := is.New(t)

	err = db.Seed(ctx, nil, testRegions(t))
	is.NoErr(err)

	regions, err := db.Regions(ctx)
	is.NoErr(err)
	is.Equal(regions.Names(), []string{"Squareland", "Nowhere"})
	is.True(regions[0].HasGeometry())
	is.True(!regions[1].HasGeometry())
	is.True(geometry.Contains(*regions[0].Boundary, orb.Point{5, 5}))
}

func TestQueryFeaturesParams(t *testing.T) {
	is := is.New(t)

	query, args := newQueryFeaturesParams()
	is.Equal(query, "WHERE 1=1 ORDER BY seq ASC OFFSET @offset LIMIT @limit")
	is.Equal(args["limit"], 1000)
	is.Equal(args["offset"], 0)

	query, args = newQueryFeaturesParams(WithMinMagnitude(2.5), WithBound(orb.Bound{Min: orb.Point{-10, -5}, Max: orb.Point{10, 5}}), WithLimit(10))
	is.True(strings.Contains(query, "magnitude >= @min_mag"))
	is.True(strings.Contains(query, "location <@ box(point(@min_lon,@min_lat), point(@max_lon,@max_lat))"))
	is.Equal(args["min_mag"], 2.5)
	is.Equal(args["min_lon"], -10.0)
	is.Equal(args["max_lat"], 5.0)
	is.Equal(args["limit"], 10)
}

func TestRegionGeometryRoundTrip(t *testing.T) {
	is := is.New(t)

	for _, r := range testRegions(t) {
		b, err := marshalBoundary(r)
		is.NoErr(err)

		stored, err := unmarshalRegion(r.Name, b)
		is.NoErr(err)
		is.Equal(stored.Name, r.Name)
		is.Equal(stored.HasGeometry(), r.HasGeometry())
	}

	_, err := unmarshalRegion("Broken", []byte(`{"type":"Point","coordinates":[1,2]}`))
	is.True(err != nil)
}

func testRegions(t *testing.T) dataset.Regions {
	regions, err := dataset.LoadRegions(strings.NewReader(regionsJSON), "")
	if err != nil {
		t.Fatal(err)
	}
	return regions
}

func new() (Db, context.Context, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	db, err := New(ctx, Config{
		host:     "localhost",
		user:     "postgres",
		password: "password",
		port:     "5432",
		dbname:   "postgres",
		sslmode:  "disable",
	})

	return db, ctx, cancel, err
}

const regionsJSON string = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "properties": {"ADMIN": "Squareland"}, "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}},
		{"type": "Feature", "properties": {"ADMIN": "Nowhere"}, "geometry": null}
	]
}`
