package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pongarena/tournament-engine/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Post("/", tournamentHandler.Create)
		r.Get("/{id}", tournamentHandler.Get)
		r.Delete("/{id}", tournamentHandler.Cancel)
		r.Post("/{id}/join", tournamentHandler.Join)
		r.Post("/{id}/leave", tournamentHandler.Leave)
	})

	router.Post("/matches/{matchID}/walkover", tournamentHandler.DeclareWalkover)
	router.Get("/participants/{participantID}/tournaments/active", tournamentHandler.GetActive)

	router.Get("/ws/{room}", webSocketHandler.Serve)
}
