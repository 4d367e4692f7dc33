package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/handlers"
)

func init() { Register(registerReadyz) }

func registerReadyz(r chi.Router, d deps.Deps) {
	r.With(adminOnly(d)).Get("/readyz", handlers.Readyz(d))
}
