package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/handlers"
)

func init() { Register(registerStats) }

func registerStats(r chi.Router, d deps.Deps) {
	r.With(adminOnly(d)).Get("/stats", handlers.Stats(d))
	r.With(adminOnly(d), adminHost(d)).Delete("/stats", handlers.ResetStats(d))
}
