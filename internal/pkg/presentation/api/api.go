package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/diwise/quakemap/internal/app/mapview"
	"github.com/diwise/quakemap/internal/pkg/dataset"
	"github.com/diwise/quakemap/internal/pkg/engine"
	"github.com/diwise/quakemap/internal/pkg/presentation/auth"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("quakemap/api")

func Register(ctx context.Context, a mapview.MapApp, policies io.Reader) (*chi.Mux, error) {
	log := logging.GetFromContext(ctx)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	authenticator, err := auth.NewAuthenticator(ctx, log, policies)
	if err != nil {
		return nil, fmt.Errorf("failed to create api authenticator: %w", err)
	}

	r.Route("/api/v0", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Get("/regions", getRegionsHandler(log, a))
			r.Get("/features", getFeaturesHandler(log, a))

			r.Route("/map", func(r chi.Router) {
				r.Get("/selection", getSelectionHandler(log, a))
				r.Put("/selection", putSelectionHandler(log, a))
				r.Get("/style", getStyleHandler(log, a))
				r.Post("/events", postEventHandler(log, a))
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r, nil
}

func getRegionsHandler(log *slog.Logger, a mapview.MapApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options := a.Options()
		response := NewApiResponse(r, options, uint64(len(options)), uint64(len(options)), 0, uint64(len(options)))

		w.Header().Set("Content-Type", "application/vnd.api+json")
		w.WriteHeader(http.StatusOK)
		w.Write(response.Byte())
	}
}

type selectionRequest struct {
	Region string `json:"region"`
}

func getSelectionHandler(log *slog.Logger, a mapview.MapApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-selection")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		selection, err := a.Selection(ctx)
		if err != nil {
			logger.Error("could not get selection", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		b, _ := json.Marshal(selectionRequest{Region: selection.Label()})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func putSelectionHandler(log *slog.Logger, a mapview.MapApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "put-selection")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		b, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error("could not read body", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		req := selectionRequest{}
		err = json.Unmarshal(b, &req)
		if err != nil || req.Region == "" {
			logger.Debug("invalid selection request", "body", string(b))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		err = a.Select(ctx, req.Region)
		if err != nil {
			if errors.Is(err, mapview.ErrUnknownRegion) {
				w.WriteHeader(http.StatusNotFound)
				return
			}

			logger.Error("could not select region", "region", req.Region, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(err.Error()))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func getStyleHandler(log *slog.Logger, a mapview.MapApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "get-style")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		style, err := a.Style(ctx)
		if err != nil {
			logger.Error("could not get style", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		b, err := json.Marshal(style)
		if err != nil {
			logger.Error("could not marshal style", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

type eventRequest struct {
	Type  engine.EventType   `json:"type"`
	Point engine.ScreenPoint `json:"point"`
}

func postEventHandler(log *slog.Logger, a mapview.MapApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "post-event")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, ctx, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		req := eventRequest{}
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logger.Debug("could not decode event", "err", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if req.Type != engine.EventClick && req.Type != engine.EventMouseMove {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		err = a.Fire(ctx, engine.Event{Type: req.Type, Point: req.Point})
		if err != nil {
			logger.Error("could not forward event", "type", req.Type, "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}

func getFeaturesHandler(log *slog.Logger, a mapview.MapApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "query-features")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		_, _, logger := o11y.AddTraceIDToLoggerAndStoreInContext(span, log, ctx)

		region := r.URL.Query().Get("region")

		features, err := a.Features(region)
		if err != nil {
			if errors.Is(err, mapview.ErrUnknownRegion) {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			logger.Error("could not query features", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		accept := r.Header.Get("Accept")

		if accept == "application/vnd.api+json" || accept == "application/json" {
			offset, limit := paging(r, len(features))
			page := features[offset : offset+min(limit, len(features)-offset)]

			data := make([]Feature, 0, len(page))
			for _, f := range page {
				data = append(data, NewFeature(f))
			}

			response := NewApiResponse(r, data, uint64(len(page)), uint64(len(features)), uint64(offset), uint64(limit))

			w.Header().Set("Content-Type", "application/vnd.api+json")
			w.WriteHeader(http.StatusOK)
			w.Write(response.Byte())
			return
		}

		b, err := dataset.Collection(features).MarshalJSON()
		if err != nil {
			logger.Error("could not marshal features", "err", err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/geo+json")
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func paging(r *http.Request, total int) (int, int) {
	offset, limit := 0, total

	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = min(o, total)
	}

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	return offset, limit
}
