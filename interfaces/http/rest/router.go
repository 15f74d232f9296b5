// Package rest wires the HTTP surface: station, track and play endpoints over
// the DynamoDB repositories.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"radiojournal/infrastructure/config"
	"radiojournal/infrastructure/dynamodb"
	"radiojournal/interfaces/http/rest/handlers"
	"radiojournal/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg    *config.Config
	store  *dynamodb.Store
	logger *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, store *dynamodb.Store, logger *zap.Logger) *Router {
	return &Router{cfg: cfg, store: store, logger: logger}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.healthCheck)

	stationRepo := dynamodb.NewStationRepository(rt.store, rt.logger)
	trackRepo := dynamodb.NewTrackRepository(rt.store, rt.logger)
	playRepo := dynamodb.NewPlayRepository(rt.store, rt.logger)
	playLogger := dynamodb.NewPlayLogger(rt.store, rt.logger)

	stationHandler := handlers.NewStationHandler(stationRepo, rt.logger)
	trackHandler := handlers.NewTrackHandler(trackRepo, rt.logger)
	playHandler := handlers.NewPlayHandler(playRepo, playLogger, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/stations", func(r chi.Router) {
			r.Get("/", stationHandler.ListStations)
			r.Post("/", stationHandler.CreateStation)
			r.Route("/{stationID}", func(r chi.Router) {
				r.Get("/", stationHandler.GetStation)
				r.Get("/tracks", trackHandler.ListTracks)
				r.Get("/tracks/{trackID}", trackHandler.GetTrack)
				r.Get("/plays", playHandler.ListPlays)
				r.Post("/plays", playHandler.AddPlay)
			})
		})

		r.Get("/tracks/{trackID}/plays", playHandler.ListPlaysByTrack)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
