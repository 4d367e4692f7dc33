package edge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/skyroute/internal/router"
)

// Description is a request written down by hand, used to explain a routing
// decision without sending the request.
type Description struct {
	Method    string              `json:"method"`
	Host      string              `json:"host"`
	Path      string              `json:"path"`
	Headers   map[string]string   `json:"headers,omitempty"`
	Query     map[string][]string `json:"query,omitempty"`
	Body      string              `json:"body,omitempty"`
	DataPlane bool                `json:"data_plane,omitempty"`
}

// Build turns the description into an *http.Request.
func (d Description) Build(ctx context.Context) (*http.Request, error) {
	method := strings.ToUpper(d.Method)
	if method == "" {
		method = http.MethodGet
	}
	host := d.Host
	if host == "" {
		host = "localhost:4566"
	}
	path := d.Path
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("invalid path %q: must start with /", path)
	}

	u := &url.URL{Scheme: "http", Host: host, Path: path, RawQuery: url.Values(d.Query).Encode()}

	var body io.Reader = http.NoBody
	if d.Body != "" {
		body = strings.NewReader(d.Body)
	}

	r, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for k, v := range d.Headers {
		r.Header.Set(k, v)
	}
	r.Host = host
	return r, nil
}

// Classify resolves an inbound request the way the edge does: the full
// resolution, then the data-plane host rules for what it left unknown.
func Classify(rt *router.Router, req *Request) router.Decision {
	d := rt.Decide(req)
	if d.Known() {
		return d
	}
	if dp := rt.DecideDataPlane(req); dp.Known() {
		return dp
	}
	return d
}

// Explain resolves the described request without sending it.
func Explain(ctx context.Context, rt *router.Router, desc Description, maxBody int64) (router.Decision, error) {
	r, err := desc.Build(ctx)
	if err != nil {
		return router.Decision{}, err
	}
	req := NewRequest(r, maxBody)
	if desc.DataPlane {
		return rt.DecideDataPlane(req), nil
	}
	return Classify(rt, req), nil
}
