package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/diwise/quakemap/internal/app/mapview"
	"github.com/diwise/quakemap/internal/pkg/dataset"
	"github.com/diwise/quakemap/internal/pkg/engine"
	"github.com/diwise/quakemap/internal/pkg/presentation/api"
	"github.com/diwise/quakemap/internal/pkg/storage"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

const serviceName string = "quakemap"

func main() {
	// a missing .env file is fine, the environment is used as is
	_ = godotenv.Load()

	serviceVersion := buildinfo.SourceVersion()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx, log, cleanup := o11y.Init(ctx, serviceName, serviceVersion)
	defer cleanup()

	var opa, earthquakesFile, regionsFile, layersFile, nameProperty string

	flag.StringVar(&opa, "policies", "/opt/diwise/config/authz.rego", "An authorization policy file")
	flag.StringVar(&earthquakesFile, "earthquakes", "/opt/diwise/config/earthquakes.geojson", "A GeoJSON file with earthquakes")
	flag.StringVar(&regionsFile, "regions", "/opt/diwise/config/countries.geojson", "A GeoJSON file with region boundaries")
	flag.StringVar(&layersFile, "layers", "/opt/diwise/config/quakemap.yaml", "A layer and cluster configuration file")
	flag.StringVar(&nameProperty, "name-property", dataset.DefaultNameProperty, "The region property holding the region name")
	flag.Parse()

	features, regions, err := loadDatasets(ctx, earthquakesFile, regionsFile, nameProperty)
	if err != nil {
		log.Error("could not load datasets", "err", err.Error())
		os.Exit(1)
	}

	cfg, err := loadConfig(ctx, layersFile)
	if err != nil {
		log.Error("could not load layer configuration", "err", err.Error())
		os.Exit(1)
	}

	var publisher mapview.Publisher

	if env.GetVariableOrDefault(ctx, "RABBITMQ_HOST", "") != "" {
		config := messaging.LoadConfiguration(ctx, serviceName, log)
		messenger, err := messaging.Initialize(ctx, config)
		if err != nil {
			log.Error("failed to init messenger", "err", err.Error())
			os.Exit(1)
		}
		messenger.Start()
		defer messenger.Close()

		publisher = messenger
	}

	scene := engine.NewScene()
	a := mapview.New(scene, features, regions, cfg, publisher)

	go scene.Run(ctx)

	r, err := newRouter(ctx, opa, a)
	if err != nil {
		log.Error("could not setup router", "err", err.Error())
		os.Exit(1)
	}

	webServer := &http.Server{Addr: ":" + env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8080"), Handler: r}

	go func() {
		if err := webServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("could not listen and serve", "err", err.Error())
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	webServer.Shutdown(ctx)
}

func newRouter(ctx context.Context, opa string, a mapview.MapApp) (*chi.Mux, error) {
	policies, err := os.Open(opa)
	if err != nil {
		return nil, fmt.Errorf("unable to open opa policy file: %s", err.Error())
	}
	defer policies.Close()

	return api.Register(ctx, a, policies)
}

func loadConfig(ctx context.Context, fp string) (mapview.Config, error) {
	log := logging.GetFromContext(ctx)

	f, err := os.Open(fp)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("no layer configuration found, using defaults", "path", fp)
			return mapview.DefaultConfig(), nil
		}
		return mapview.Config{}, err
	}
	defer f.Close()

	return mapview.LoadConfig(f)
}

// loadDatasets reads the earthquake and region files. When a database is
// configured the files, if present, are seeded into it and the datasets are
// then read back from storage.
func loadDatasets(ctx context.Context, earthquakesFile, regionsFile, nameProperty string) ([]dataset.PointFeature, dataset.Regions, error) {
	log := logging.GetFromContext(ctx)

	features, regions, err := readDatasets(ctx, earthquakesFile, regionsFile, nameProperty)
	if err != nil {
		return nil, nil, err
	}

	cfg := storage.LoadConfiguration(ctx)
	if !cfg.Enabled() {
		if features == nil || regions == nil {
			return nil, nil, fmt.Errorf("dataset files not found and no database configured")
		}
		return features, regions, nil
	}

	db, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("could not configure storage: %w", err)
	}
	defer db.Close()

	if features != nil && regions != nil {
		err = db.Seed(ctx, features, regions)
		if err != nil {
			return nil, nil, fmt.Errorf("could not seed storage: %w", err)
		}
	}

	features = []dataset.PointFeature{}
	const pageSize int = 1000

	for offset := 0; ; offset += pageSize {
		result, err := db.QueryFeatures(ctx, storage.WithOffset(offset), storage.WithLimit(pageSize))
		if err != nil {
			return nil, nil, err
		}

		features = append(features, result.Data...)

		if result.Count < pageSize {
			break
		}
	}

	regions, err = db.Regions(ctx)
	if err != nil {
		return nil, nil, err
	}

	log.Info("datasets loaded from storage", "earthquakes", len(features), "regions", len(regions))

	return features, regions, nil
}

// readDatasets returns nil datasets, and no error, when a file does not exist.
func readDatasets(ctx context.Context, earthquakesFile, regionsFile, nameProperty string) ([]dataset.PointFeature, dataset.Regions, error) {
	log := logging.GetFromContext(ctx)

	eq, err := os.Open(earthquakesFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("no file with earthquakes found", "path", earthquakesFile)
			return nil, nil, nil
		}
		return nil, nil, err
	}
	defer eq.Close()

	rs, err := os.Open(regionsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("no file with regions found", "path", regionsFile)
			return nil, nil, nil
		}
		return nil, nil, err
	}
	defer rs.Close()

	features, err := dataset.LoadFeatures(eq)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load earthquakes: %w", err)
	}

	regions, err := dataset.LoadRegions(rs, nameProperty)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load regions: %w", err)
	}

	log.Info("datasets loaded from files", "earthquakes", len(features), "regions", len(regions))

	return features, regions, nil
}
