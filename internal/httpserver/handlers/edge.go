package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
	"github.com/MrSnakeDoc/skyroute/internal/edge"
	"github.com/MrSnakeDoc/skyroute/internal/httpserver/deps"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
	"github.com/MrSnakeDoc/skyroute/internal/metrics"
	"github.com/MrSnakeDoc/skyroute/internal/router"
)

// Dispatch outcomes reported to metrics.
const (
	outcomeProxied   = "proxied"
	outcomeUnhandled = "unhandled"
	outcomeRejected  = "rejected"
)

type unhandledResponse struct {
	Error    string         `json:"error"`
	Message  string         `json:"message"`
	Decision router.Summary `json:"decision"`
}

// Edge resolves every inbound AWS request and hands it to the handler
// registered for the resolved service.
func Edge(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rt := router.New(d.Catalog.Load(), d.Logger)
		dec := edge.Classify(rt, edge.NewRequest(r, d.MaxBodyBytes))
		metrics.RecordResolution(serviceName(dec), string(dec.Stage), dec.BodySkipped, time.Since(start))

		w.Header().Set(edge.HeaderStage, string(dec.Stage))

		if !dec.Known() {
			d.Recorder.Record("unknown", string(dec.Stage))
			d.Recorder.RecordUnknown(domain.UnknownRequest{
				Method:    r.Method,
				Host:      r.Host,
				Path:      r.URL.Path,
				UserAgent: r.UserAgent(),
				At:        start,
			})
			metrics.RecordDispatch("unknown", outcomeRejected)
			d.Logger.Info("unable to find service for request",
				logger.String("method", r.Method),
				logger.String("host", r.Host),
				logger.String("path", r.URL.Path))
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   "UnknownService",
				Message: "unable to determine the service targeted by the request",
			})
			return
		}

		svc := dec.Service
		d.Recorder.Record(svc.Name(), string(dec.Stage))
		w.Header().Set(edge.HeaderService, svc.Name())
		w.Header().Set(edge.HeaderProtocol, svc.Protocol)

		h, ok := d.Upstreams.Handler(svc.Name())
		if !ok {
			metrics.RecordDispatch(svc.Name(), outcomeUnhandled)
			writeJSON(w, http.StatusNotImplemented, unhandledResponse{
				Error:    "NotImplemented",
				Message:  "no handler is registered for service " + svc.Name(),
				Decision: dec.Summary(),
			})
			return
		}

		metrics.RecordDispatch(svc.Name(), outcomeProxied)
		h.ServeHTTP(w, r)
	}
}

func serviceName(dec router.Decision) string {
	if dec.Service == nil {
		return ""
	}
	return dec.Service.Name()
}
