package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/skyroute/internal/logger"
	"github.com/MrSnakeDoc/skyroute/internal/utils"
)

// AllowOnlyCIDRS restricts the admin endpoints to clients inside the
// SKYROUTE_ADMIN_CIDRS ranges. An empty list lets everything through.
// With trustProxy the client address comes from X-Forwarded-For.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	log = log.With(logger.String("guard", "admin-cidrs"))
	log.Debug("admin endpoints restricted by client address",
		logger.Strings("cidrs", allowed),
		logger.Bool("trust_proxy", trustProxy))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if m.Allow(ip) {
				next.ServeHTTP(w, r)
				return
			}
			deny(w, r, log, "client address is not allowed on admin endpoints",
				logger.String("client_ip", ip),
				logger.String("remote_addr", r.RemoteAddr))
		})
	}
}
