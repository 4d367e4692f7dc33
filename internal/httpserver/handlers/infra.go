package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/skyroute/internal/upstream"
)

type componentStatus struct {
	OK             bool   `json:"ok"`
	ServicesLoaded *int   `json:"services_loaded,omitempty"`
	LastReload     string `json:"last_reload,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type infraResponse struct {
	RoutingMode string                     `json:"routing_mode"`
	Components  map[string]componentStatus `json:"components"`
	Upstreams   map[string]upstream.Status `json:"upstreams,omitempty"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cat := d.Catalog.Load()
		servicesCount := cat.Count()
		lastReload := "never"
		if d.Catalog.Swaps() > 0 {
			lastReload = cat.BuiltAt().Format("2006-01-02 15:04:05")
		}

		upstreams := d.Upstreams.ProbeAll(r.Context(), d.UpstreamTimeout)
		down := 0
		for _, st := range upstreams {
			if !st.Up {
				down++
			}
		}

		components := map[string]componentStatus{
			"catalog": {
				OK:             servicesCount > 0,
				ServicesLoaded: &servicesCount,
				LastReload:     lastReload,
			},
			"redis":  checkRedis(r.Context(), d),
			"router": {OK: true, Mode: "signing-name+target+host+fallback"},
			"upstreams": {
				OK:     down == 0,
				Impact: upstreamImpact(down),
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			RoutingMode: determineRoutingMode(components),
			Components:  components,
			Upstreams:   upstreams,
		})
	}
}

func determineRoutingMode(components map[string]componentStatus) string {
	// Without services every request is unknown
	if c, exists := components["catalog"]; exists {
		if !c.OK || (c.ServicesLoaded != nil && *c.ServicesLoaded == 0) {
			return "critical"
		}
	}

	for _, name := range []string{"redis", "upstreams"} {
		if c, exists := components[name]; exists && !c.OK {
			return "degraded"
		}
	}

	return "optimal"
}

func upstreamImpact(down int) string {
	if down == 0 {
		return ""
	}
	return "requests-to-down-upstreams-fail"
}

func checkRedis(parent context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "stats-not-persisted",
		}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "stats-not-persisted",
			Error:  "timeout",
		}
	}

	return componentStatus{
		OK:   true,
		Mode: "optimal",
	}
}
