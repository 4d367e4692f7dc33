package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/skyroute/internal/logger"
	"github.com/MrSnakeDoc/skyroute/internal/utils"
)

// EnforceHost restricts state-changing admin endpoints to the Host names in
// SKYROUTE_ADMIN_HOSTS. Ports and case are ignored; "*.localhost.localstack.cloud"
// matches any subdomain. An empty list lets everything through.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	patterns := make([]string, len(allowedHosts))
	for i, h := range allowedHosts {
		patterns[i] = strings.ToLower(strings.TrimSpace(h))
	}

	log = log.With(logger.String("guard", "admin-hosts"))
	log.Debug("admin endpoints restricted by host", logger.Strings("hosts", patterns))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := strings.ToLower(utils.ParseHostNoPort(r.Host))
			for _, pattern := range patterns {
				if matchHost(host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, r, log, "host is not allowed on admin endpoints",
				logger.String("host", r.Host))
		})
	}
}

// matchHost compares a lowercase host with an exact or "*."-prefixed pattern.
// The wildcard needs at least one label: "*.a.b" does not match "a.b".
func matchHost(host, pattern string) bool {
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		return len(host) > len(suffix) && strings.HasSuffix(host, suffix)
	}
	return host == pattern
}
