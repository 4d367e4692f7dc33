package upstream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"slices"
	"sync"

	"github.com/MrSnakeDoc/skyroute/internal/logger"
)

// Registry maps service names to the handler serving them.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]http.Handler
	targets  map[string]*url.URL
	logger   logger.Logger
}

// NewRegistry creates a registry with one reverse proxy per target
// ("sqs" -> "http://localhost:9324").
func NewRegistry(targets map[string]string, log logger.Logger) (*Registry, error) {
	reg := &Registry{
		handlers: make(map[string]http.Handler, len(targets)),
		targets:  make(map[string]*url.URL, len(targets)),
		logger:   log,
	}
	for service, raw := range targets {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid upstream for %s: %w", service, err)
		}
		reg.targets[service] = u
		reg.handlers[service] = reg.newProxy(service, u)
	}
	return reg, nil
}

func (reg *Registry) newProxy(service string, target *url.URL) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			// the signature covers the Host header
			pr.Out.Host = pr.In.Host
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			reg.logger.Warn("upstream request failed",
				logger.String("service", service),
				logger.String("upstream", target.String()),
				logger.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "UpstreamUnavailable",
				"service": service,
			})
		},
	}
}

// Register sets the handler of a service, replacing any previous one.
func (reg *Registry) Register(service string, h http.Handler) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.handlers[service] = h
}

// Handler returns the handler of a service.
func (reg *Registry) Handler(service string) (http.Handler, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	h, ok := reg.handlers[service]
	return h, ok
}

// Services returns the names of services with a handler, sorted.
func (reg *Registry) Services() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]string, 0, len(reg.handlers))
	for name := range reg.handlers {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Targets returns the proxied services and their base URL.
func (reg *Registry) Targets() map[string]string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make(map[string]string, len(reg.targets))
	for name, u := range reg.targets {
		out[name] = u.String()
	}
	return out
}
