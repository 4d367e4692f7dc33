package upstream

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/MrSnakeDoc/skyroute/internal/utils"
)

// Probe checks that an upstream answers HTTP at all. Any response counts,
// emulators often reply 4xx to a bare HEAD /.
func Probe(ctx context.Context, target string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Create HTTP client with custom transport (short timeout)
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 0,
				}).DialContext(ctx, network, addr)
			},
			TLSHandshakeTimeout: timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Don't follow redirects
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("upstream unreachable: %w", err)
	}
	utils.Close(resp.Body)

	return nil
}

// Status is the result of probing one upstream.
type Status struct {
	Target string `json:"target"`
	Up     bool   `json:"up"`
	Error  string `json:"error,omitempty"`
}

// ProbeAll probes every proxied upstream concurrently.
func (reg *Registry) ProbeAll(ctx context.Context, timeout time.Duration) map[string]Status {
	targets := reg.Targets()
	out := make(map[string]Status, len(targets))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for service, target := range targets {
		service, target := service, target
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := Status{Target: target, Up: true}
			if err := Probe(ctx, target, timeout); err != nil {
				st.Up, st.Error = false, err.Error()
			}
			mu.Lock()
			out[service] = st
			mu.Unlock()
		}()
	}
	wg.Wait()

	return out
}
