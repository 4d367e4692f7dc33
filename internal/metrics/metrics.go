package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "skyroute"

var (
	// resolutionsTotal counts resolved requests.
	// Labels: service (name#protocol, "unknown"), stage (router stage)
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "router",
		Name:      "resolutions_total",
		Help:      "Total request resolutions by service and resolution stage",
	}, []string{"service", "stage"})

	unknownTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "router",
		Name:      "unknown_total",
		Help:      "Total requests no service could be resolved for",
	})

	bodySkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "router",
		Name:      "body_skipped_total",
		Help:      "Total resolutions that went on without the request body",
	})

	resolveDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "router",
		Name:      "resolve_duration_seconds",
		Help:      "Time spent resolving the target service of a request",
		Buckets:   []float64{0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.005, 0.01},
	})

	catalogServices = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "catalog",
		Name:      "services",
		Help:      "Number of service variants in the active catalog",
	})

	// catalogReloadsTotal counts catalog reloads.
	// Labels: result (ok, error)
	catalogReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "catalog",
		Name:      "reloads_total",
		Help:      "Total catalog reloads by result",
	}, []string{"result"})

	// dispatchTotal counts dispatched requests.
	// Labels: service, outcome (proxied, unhandled, rejected)
	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "edge",
		Name:      "dispatch_total",
		Help:      "Total edge requests by service and dispatch outcome",
	}, []string{"service", "outcome"})

	// statsFlushTotal counts stats flushes to redis.
	// Labels: result (ok, error, rejected)
	statsFlushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stats",
		Name:      "flush_total",
		Help:      "Total resolution stats flushes by result",
	}, []string{"result"})
)

// RecordResolution records one router decision.
func RecordResolution(service, stage string, bodySkipped bool, elapsed time.Duration) {
	if service == "" {
		service = "unknown"
		unknownTotal.Inc()
	}
	resolutionsTotal.WithLabelValues(service, stage).Inc()
	if bodySkipped {
		bodySkippedTotal.Inc()
	}
	resolveDurationSeconds.Observe(elapsed.Seconds())
}

// RecordCatalogReload records a reload attempt and the resulting catalog size.
func RecordCatalogReload(err error, services int) {
	if err != nil {
		catalogReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	catalogReloadsTotal.WithLabelValues("ok").Inc()
	catalogServices.Set(float64(services))
}

// RecordDispatch records what the edge did with a resolved request.
func RecordDispatch(service, outcome string) {
	dispatchTotal.WithLabelValues(service, outcome).Inc()
}

// RecordStatsFlush records the result of a stats flush ("ok", "error", "rejected").
func RecordStatsFlush(result string) {
	statsFlushTotal.WithLabelValues(result).Inc()
}
