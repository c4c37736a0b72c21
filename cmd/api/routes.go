package main

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (app *application) routes() http.Handler {
	router := chi.NewRouter()

	// Router
	router.NotFound(app.notFoundResponse)
	router.MethodNotAllowed(app.methodNotAllowedRequest)

	// Middleware
	router.Use(app.metrics)
	router.Use(app.recoverPanic)
	router.Use(app.enableCORS)
	router.Use(app.rateLimit)

	// Healthcheck
	router.Get("/v1/healthcheck", app.HealthCheck)
	router.Method(http.MethodGet, "/v1/metrics", expvar.Handler())

	// Match Endpoints
	router.Route("/v1/match", func(router chi.Router) {
		router.Get("/", app.GetAllMatches)
		router.Get("/{id}", app.GetMatch)
		router.Get("/{id}/scorecard", app.GetScorecard)
		router.Get("/{id}/watch", app.WatchMatch)

		router.Group(func(router chi.Router) {
			router.Use(app.requireScorerPin)
			router.Post("/{id}/toss", app.SetToss)
			router.Post("/{id}/innings", app.StartInnings)
			router.Post("/{id}/ball", app.RecordBall)
			router.Delete("/{id}/ball", app.UndoBall)
			router.Post("/{id}/bowler", app.ChangeBowler)
			router.Post("/{id}/strike", app.SwapStrike)
			router.Post("/{id}/innings/end", app.EndInnings)
			router.Get("/{id}/score", app.ScoreMatch)
		})

		router.Group(func(router chi.Router) {
			router.Use(app.requireManagerPin)
			router.Post("/", app.CreateMatch)
			router.Post("/{id}/abandon", app.AbandonMatch)
			router.Delete("/{id}", app.DeleteMatch)
		})
	})

	// Fixture Endpoints
	router.Route("/v1/fixture", func(router chi.Router) {
		router.Get("/", app.GetUpcomingFixtures)
		router.Get("/{id}/availability", app.GetAvailability)
		router.Post("/{id}/availability", app.SetAvailability)

		router.Group(func(router chi.Router) {
			router.Use(app.requireManagerPin)
			router.Post("/", app.CreateFixture)
			router.Delete("/{id}", app.DeleteFixture)
		})
	})

	// Finance Endpoints
	router.Route("/v1/finance", func(router chi.Router) {
		router.Use(app.requireManagerPin)
		router.Post("/period", app.CreatePeriod)
		router.Get("/period/summary", app.GetPeriodSummary)
		router.Post("/period/{id}/entries", app.AddEntries)
		router.Get("/period/{id}/entries", app.GetEntries)
	})

	// Notification Endpoints
	router.Get("/v1/notifications/public-key", app.GetPushPublicKey)
	router.Post("/v1/notifications/subscribe", app.Subscribe)
	router.Post("/v1/notifications/unsubscribe", app.Unsubscribe)
	router.With(app.requireManagerPin).Get("/v1/notifications", app.GetSubscriptions)

	// Pin Endpoints
	router.With(app.requireManagerPin).Post("/v1/pins/rotate", app.RotatePin)

	return router
}
