package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready    bool `json:"ready"`
	Services int  `json:"services"`
}

// Readyz reports ready once a non-empty catalog is loaded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := d.Catalog.Load().Count()
		status := http.StatusOK
		if n == 0 {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyzResponse{Ready: n > 0, Services: n})
	}
}
