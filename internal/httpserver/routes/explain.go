package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/handlers"
)

func init() { Register(registerExplain) }

func registerExplain(r chi.Router, d deps.Deps) {
	r.With(adminOnly(d)).Post("/explain", handlers.Explain(d))
}
