package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/padel-circuit/docs"
	"github.com/Dosada05/padel-circuit/handlers"
	"github.com/Dosada05/padel-circuit/middleware"
)

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Competitor *handlers.CompetitorHandler
	Pair       *handlers.PairHandler
	Zone       *handlers.ZoneHandler
	Match      *handlers.MatchHandler
	Bracket    *handlers.BracketHandler
	Points     *handlers.PointsHandler
	WebSocket  *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	RateLimiter    *middleware.IPRateLimiter
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	// Публичное чтение
	router.Get("/tournaments", h.Tournament.ListHandler)
	router.Get("/tournaments/{tournamentID}", h.Tournament.GetByIDHandler)
	router.Get("/tournaments/{tournamentID}/results", h.Tournament.ResultsHandler)
	router.Get("/tournaments/{tournamentID}/categories/{categoryID}/pairs", h.Pair.List)
	router.Get("/tournaments/{tournamentID}/categories/{categoryID}/zones", h.Zone.List)
	router.Get("/tournaments/{tournamentID}/categories/{categoryID}/bracket", h.Bracket.Get)
	router.Get("/categories", h.Tournament.ListCategoriesHandler)
	router.Get("/categories/{categoryID}/points", h.Points.GetTable)
	router.Get("/categories/{categoryID}/ranking", h.Points.Ranking)
	router.Get("/points", h.Points.GetTable)
	router.Get("/competitors/{competitorID}", h.Competitor.Get)
	router.Get("/zones/{zoneID}", h.Zone.Get)
	router.Get("/topologies/{pairCount}", h.Bracket.Topology)

	// Изменения только для организаторов
	router.Group(func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(middleware.RateLimit(opts.RateLimiter))
		}
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.Authorize(middleware.RoleAdmin, middleware.RoleOrganizer))

		r.Post("/tournaments", h.Tournament.CreateHandler)
		r.Post("/tournaments/{tournamentID}/close", h.Tournament.CloseHandler)
		r.Post("/tournaments/{tournamentID}/categories/{categoryID}/bracket", h.Bracket.Generate)
		r.Post("/categories", h.Tournament.CreateCategoryHandler)
		r.Put("/categories/{categoryID}/points", h.Points.ReplaceTable)
		r.Put("/points", h.Points.ReplaceTable)

		r.Post("/competitors", h.Competitor.Create)
		r.Put("/competitors/{competitorID}/categories/{categoryID}", h.Competitor.AddCategory)
		r.Put("/competitors/{competitorID}/active", h.Competitor.SetActive)

		r.Post("/pairs", h.Pair.Register)
		r.Delete("/pairs/{pairID}", h.Pair.Delete)

		r.Post("/zones", h.Zone.Create)
		r.Put("/zones/{zoneID}/state", h.Zone.SetState)
		r.Post("/zones/{zoneID}/tie", h.Zone.ResolveTie)
		r.Post("/zone-matches/{matchID}/result", h.Match.SubmitZoneResult)
		r.Post("/bracket-matches/{matchID}/result", h.Match.SubmitBracketResult)
	})
}
