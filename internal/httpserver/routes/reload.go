package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/mw"
)

func init() { Register(registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.ReloadBurst,
		RefillPerIPPerMin: d.ReloadPerMin,
		TrustProxy:        d.TrustProxy,
	})
	r.With(adminOnly(d), adminHost(d), limit).Post("/reload", handlers.Reload(d))
}
