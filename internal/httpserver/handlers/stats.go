package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
)

type statsResponse struct {
	Persisted     *domain.Stats           `json:"persisted,omitempty"`
	Pending       domain.Stats            `json:"pending"`
	Total         domain.Stats            `json:"total"`
	RecentUnknown []domain.UnknownRequest `json:"recent_unknown"`
}

// Stats returns resolution counts, persisted plus not yet flushed.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending := d.Recorder.Pending()
		total := domain.NewStats()
		total.Merge(pending)

		resp := statsResponse{
			Pending:       pending,
			RecentUnknown: d.Recorder.RecentUnknown(),
		}

		if d.Store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			persisted, err := d.Store.GetStats(ctx)
			if err != nil {
				d.Logger.Warn("failed to read stats from redis", logger.Error(err))
			} else {
				resp.Persisted = &persisted
				total.Merge(persisted)
			}

			if stored, err := d.Store.RecentUnknown(ctx, 20); err == nil {
				resp.RecentUnknown = append(resp.RecentUnknown, stored...)
			}
		}

		resp.Total = total
		writeJSON(w, http.StatusOK, resp)
	}
}

// ResetStats drops persisted and pending counters.
func ResetStats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Recorder.Drain()
		if d.Store != nil {
			if err := d.Store.ResetStats(r.Context()); err != nil {
				d.Logger.Warn("failed to reset stats in redis", logger.Error(err))
				writeJSON(w, http.StatusBadGateway, errorResponse{Error: "StoreUnavailable", Message: err.Error()})
				return
			}
		}
		d.Logger.Info("resolution stats reset", logger.String("remote_ip", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	}
}
