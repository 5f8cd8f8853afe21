package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/skirmish-hq/tournament-system/handlers"
	"github.com/skirmish-hq/tournament-system/middleware"
	"github.com/skirmish-hq/tournament-system/models"
)

// SetupRoutes mounts the full API surface onto the router. Reads are
// public; everything that changes tournament state requires an organizer
// token.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Auth,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	playerHandler *handlers.PlayerHandler,
	roundHandler *handlers.RoundHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	gameHandler *handlers.GameHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/swagger/*", httpSwagger.Handler())

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/games", func(r chi.Router) {
		r.Get("/", gameHandler.ListSupported)
		r.Get("/{gameSystem}/scenarios", gameHandler.GetScenarios)
		r.Get("/{gameSystem}/scoring-fields", gameHandler.GetScoringFields)
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{id}", tournamentHandler.Get)
		r.Get("/{id}/players", playerHandler.List)
		r.Get("/{id}/rounds", roundHandler.List)
		r.Get("/{id}/rounds/{roundNumber}", roundHandler.Get)
		r.Get("/{id}/standings", standingsHandler.Get)

		// Players register for themselves.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/{id}/players", playerHandler.Register)
		})

		// Organizer-only lifecycle operations.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(models.RoleOrganizer, models.RoleAdmin))

			r.Post("/", tournamentHandler.Create)
			r.Put("/{id}", tournamentHandler.Update)
			r.Patch("/{id}/status", tournamentHandler.UpdateStatus)
			r.Post("/{id}/logo", tournamentHandler.UploadLogo)

			r.Post("/{id}/rounds", roundHandler.Create)
			r.Delete("/{id}/rounds/{roundNumber}", roundHandler.Delete)
		})
	})

	router.Route("/players/{playerID}", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Put("/", playerHandler.UpdateProfile)
		r.Post("/drop", playerHandler.Drop)
		r.Delete("/", playerHandler.Unregister)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize(models.RoleOrganizer, models.RoleAdmin))

			r.Post("/result", matchHandler.SubmitResult)
			r.Put("/result", matchHandler.EditResult)
			r.Delete("/result", matchHandler.ResetResult)
		})
	})
}
