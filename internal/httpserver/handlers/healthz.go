package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
)

type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

// healthzResponse is the liveness payload. It never depends on redis or the
// upstream emulators: a router without catalog is alive, just not ready.
type healthzResponse struct {
	Status        string    `json:"status"`
	Build         buildInfo `json:"build"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Persistence   string    `json:"persistence"`
	CatalogAgeSec float64   `json:"catalog_age_seconds,omitempty"`
	CatalogSwaps  int64     `json:"catalog_swaps"`
}

// Healthz answers as long as the process serves HTTP.
func Healthz(d deps.Deps) http.HandlerFunc {
	persistence := "memory"
	if d.Store != nil {
		persistence = "redis"
	}
	build := buildInfo{Version: d.Version, Commit: d.Commit, Date: d.BuildDate, GoVersion: d.GoVersion}

	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthzResponse{
			Status:        "ok",
			Build:         build,
			UptimeSeconds: time.Since(d.StartTime).Seconds(),
			Persistence:   persistence,
			CatalogSwaps:  d.Catalog.Swaps(),
		}
		if cat := d.Catalog.Load(); cat.Count() > 0 {
			resp.CatalogAgeSec = time.Since(cat.BuiltAt()).Seconds()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
