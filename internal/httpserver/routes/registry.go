package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/mw"
)

// AdminPrefix is where admin routes are mounted. Everything else is AWS traffic.
const AdminPrefix = "/_skyroute"

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

var registry []entry

// Register a registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{reg: reg, mws: mws})
}

// RegisterAll mounts every registered admin route on r. Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		sub := r.With(e.mws...) // apply per-route middlewares
		e.reg(sub, d)
	}
}

// adminOnly restricts a route to the configured admin CIDRs.
func adminOnly(d deps.Deps) Middleware {
	return mw.AllowOnlyCIDRS(d.AdminCIDRS, d.TrustProxy, d.Logger)
}

// adminHost additionally restricts a route to the configured admin hosts.
func adminHost(d deps.Deps) Middleware {
	return mw.EnforceHost(d.AdminHosts, d.Logger)
}
