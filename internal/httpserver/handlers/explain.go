package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/skyroute/internal/edge"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/skyroute/internal/router"
)

const maxExplainBytes = 1 << 20

// Explain resolves a described request against the live catalog without
// dispatching it.
func Explain(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var desc edge.Description
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExplainBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&desc); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "InvalidRequest", Message: err.Error()})
			return
		}

		rt := router.New(d.Catalog.Load(), d.Logger)
		decision, err := edge.Explain(r.Context(), rt, desc, d.MaxBodyBytes)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "InvalidRequest", Message: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, decision.Summary())
	}
}
