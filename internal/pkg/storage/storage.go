package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/diwise/quakemap/internal/pkg/dataset"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var ErrInvalidRegion = errors.New("stored region is invalid")

type Db struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg Config) (Db, error) {
	p, err := connect(ctx, cfg)
	if err != nil {
		return Db{}, err
	}

	err = initialize(ctx, p)
	if err != nil {
		p.Close()
		return Db{}, err
	}

	return Db{
		pool: p,
	}, nil
}

func initialize(ctx context.Context, pool *pgxpool.Pool) error {
	log := logging.GetFromContext(ctx)

	ddl := `
	CREATE TABLE IF NOT EXISTS earthquakes (
		seq         INTEGER          NOT NULL,
		feature_id  TEXT             NOT NULL DEFAULT '',
		magnitude   DOUBLE PRECISION NOT NULL DEFAULT 0,
		title       TEXT             NOT NULL DEFAULT '',
		time        BIGINT           NOT NULL DEFAULT 0,
		location    POINT            NOT NULL,
		created_on  timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
		modified_on timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (seq)
	);

	CREATE INDEX IF NOT EXISTS earthquake_magnitude_idx ON earthquakes (magnitude);
	CREATE INDEX IF NOT EXISTS earthquake_location_idx ON earthquakes USING GIST(location);

	CREATE TABLE IF NOT EXISTS regions (
		seq         INTEGER NOT NULL,
		name        TEXT    NOT NULL,
		geometry    JSONB   NULL,
		modified_on timestamp with time zone NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (seq)
	);
	`

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Error("could not begin transaction", "err", err.Error())
		return err
	}

	_, err = tx.Exec(ctx, ddl)
	if err != nil {
		log.Error("could not execute ddl statement", "err", err.Error())
		tx.Rollback(ctx)
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		log.Error("could not commit transaction", "err", err.Error())
		return err
	}

	return nil
}

func connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	conn, err := pgxpool.New(ctx, cfg.ConnStr())
	if err != nil {
		return nil, err
	}

	err = conn.Ping(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return conn, err
}

func (db Db) Close() {
	db.pool.Close()
}

// Seed replaces the stored datasets with features and regions, keeping their
// order. Rows are upserted by position and any rows beyond the new length are
// removed, all within one transaction.
func (db Db) Seed(ctx context.Context, features []dataset.PointFeature, regions dataset.Regions) error {
	log := logging.GetFromContext(ctx)

	batch := &pgx.Batch{}

	upsertEarthquake := `INSERT INTO earthquakes(seq, feature_id, magnitude, title, time, location)
		VALUES (@seq, @feature_id, @magnitude, @title, @time, point(@lon,@lat))
		ON CONFLICT (seq) DO UPDATE SET
			feature_id=EXCLUDED.feature_id, magnitude=EXCLUDED.magnitude, title=EXCLUDED.title,
			time=EXCLUDED.time, location=EXCLUDED.location, modified_on=CURRENT_TIMESTAMP;`

	for i, f := range features {
		batch.Queue(upsertEarthquake, pgx.NamedArgs{
			"seq":        i,
			"feature_id": f.ID,
			"magnitude":  f.Magnitude,
			"title":      f.Title,
			"time":       f.Time,
			"lon":        f.Lon(),
			"lat":        f.Lat(),
		})
	}
	batch.Queue(`DELETE FROM earthquakes WHERE seq >= @count;`, pgx.NamedArgs{"count": len(features)})

	upsertRegion := `INSERT INTO regions(seq, name, geometry) VALUES (@seq, @name, @geometry)
		ON CONFLICT (seq) DO UPDATE SET name=EXCLUDED.name, geometry=EXCLUDED.geometry, modified_on=CURRENT_TIMESTAMP;`

	for i, r := range regions {
		g, err := marshalBoundary(r)
		if err != nil {
			return fmt.Errorf("could not marshal region %s: %w", r.Name, err)
		}

		batch.Queue(upsertRegion, pgx.NamedArgs{
			"seq":      i,
			"name":     r.Name,
			"geometry": g,
		})
	}
	batch.Queue(`DELETE FROM regions WHERE seq >= @count;`, pgx.NamedArgs{"count": len(regions)})

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		log.Error("could not begin transaction", "err", err.Error())
		return err
	}

	err = tx.SendBatch(ctx, batch).Close()
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			log.Debug("seed statement failed", "err", pgErr.Error(), "code", pgErr.Code, "message", pgErr.Message)
		}

		log.Error("could not seed datasets", "err", err.Error())
		tx.Rollback(ctx)
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		log.Error("could not commit transaction", "err", err.Error())
		return err
	}

	log.Debug("datasets seeded", "earthquakes", len(features), "regions", len(regions))

	return nil
}

func (db Db) QueryFeatures(ctx context.Context, conditions ...ConditionFunc) (QueryResult, error) {
	log := logging.GetFromContext(ctx)

	where, args := newQueryFeaturesParams(conditions...)

	query := fmt.Sprintf(`
		SELECT count(*) OVER () AS total_count, feature_id, magnitude, title, time, location[0], location[1]
		FROM earthquakes
		%s`, where)

	rows, err := db.pool.Query(ctx, query, args)
	if err != nil {
		log.Error("could not execute query", "err", err.Error())
		return QueryResult{}, err
	}
	defer rows.Close()

	var total int64
	features := []dataset.PointFeature{}

	for rows.Next() {
		var f dataset.PointFeature
		var lon, lat float64

		err := rows.Scan(&total, &f.ID, &f.Magnitude, &f.Title, &f.Time, &lon, &lat)
		if err != nil {
			log.Error("could not scan row", "err", err.Error())
			return QueryResult{}, err
		}

		f.Coordinates = orb.Point{lon, lat}
		features = append(features, f)
	}

	if err := rows.Err(); err != nil {
		return QueryResult{}, err
	}

	result := QueryResult{
		Data:       features,
		Count:      len(features),
		TotalCount: total,
	}

	if offset, ok := args["offset"].(int); ok {
		result.Offset = offset
	}
	if limit, ok := args["limit"].(int); ok {
		result.Limit = limit
	}

	return result, nil
}

func (db Db) Regions(ctx context.Context) (dataset.Regions, error) {
	log := logging.GetFromContext(ctx)

	rows, err := db.pool.Query(ctx, `SELECT name, geometry FROM regions ORDER BY seq ASC`)
	if err != nil {
		log.Error("could not execute query", "err", err.Error())
		return nil, err
	}
	defer rows.Close()

	regions := dataset.Regions{}

	for rows.Next() {
		var name string
		var g []byte

		err := rows.Scan(&name, &g)
		if err != nil {
			log.Error("could not scan row", "err", err.Error())
			return nil, err
		}

		r, err := unmarshalRegion(name, g)
		if err != nil {
			return nil, err
		}

		regions = append(regions, r)
	}

	return regions, rows.Err()
}

func marshalBoundary(r dataset.Region) ([]byte, error) {
	if !r.HasGeometry() {
		return nil, nil
	}
	return geojson.NewGeometry(r.Boundary.Geometry()).MarshalJSON()
}

func unmarshalRegion(name string, b []byte) (dataset.Region, error) {
	if len(b) == 0 {
		return dataset.Region{Name: name}, nil
	}

	g, err := geojson.UnmarshalGeometry(b)
	if err != nil {
		return dataset.Region{}, fmt.Errorf("%w: %s: %w", ErrInvalidRegion, name, err)
	}

	r, err := dataset.NewRegion(name, geojson.NewFeature(g.Geometry()))
	if err != nil {
		return dataset.Region{}, fmt.Errorf("%w: %s: %w", ErrInvalidRegion, name, err)
	}

	return r, nil
}
