package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/skyroute/internal/logger"
)

func TestRegistry_Proxy(t *testing.T) {
	var gotHost, gotPath string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost, gotPath = r.Host, r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	defer backend.Close()

	reg, err := NewRegistry(map[string]string{"sqs": backend.URL}, logger.Nop())
	require.NoError(t, err)

	h, ok := reg.Handler("sqs")
	require.True(t, ok)

	req := httptest.NewRequest(http.MethodPost, "http://sqs.localhost.localstack.cloud:4566/000000000000/q", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sqs.localhost.localstack.cloud:4566", gotHost)
	assert.Equal(t, "/000000000000/q", gotPath)
}

func TestRegistry_UpstreamDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	target := backend.URL
	backend.Close()

	reg, err := NewRegistry(map[string]string{"s3": target}, logger.Nop())
	require.NoError(t, err)

	h, _ := reg.Handler("s3")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://localhost:4566/bucket", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "UpstreamUnavailable")
}

func TestRegistry_RegisterAndServices(t *testing.T) {
	reg, err := NewRegistry(nil, logger.Nop())
	require.NoError(t, err)

	_, ok := reg.Handler("lambda")
	assert.False(t, ok)

	reg.Register("lambda", http.NotFoundHandler())
	reg.Register("dynamodb", http.NotFoundHandler())
	assert.Equal(t, []string{"dynamodb", "lambda"}, reg.Services())
	assert.Empty(t, reg.Targets())
}

func TestProbe(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer backend.Close()

	assert.NoError(t, Probe(context.Background(), backend.URL, time.Second))
	assert.Error(t, Probe(context.Background(), "http://127.0.0.1:1", 200*time.Millisecond))
	assert.Error(t, Probe(context.Background(), "://bad", time.Second))
}

func TestRegistry_ProbeAll(t *testing.T) {
	up := httptest.NewServer(http.NotFoundHandler())
	defer up.Close()

	reg, err := NewRegistry(map[string]string{
		"sqs": up.URL,
		"s3":  "http://127.0.0.1:1",
	}, logger.Nop())
	require.NoError(t, err)

	statuses := reg.ProbeAll(context.Background(), 200*time.Millisecond)
	require.Len(t, statuses, 2)
	assert.True(t, statuses["sqs"].Up)
	assert.False(t, statuses["s3"].Up)
	assert.NotEmpty(t, statuses["s3"].Error)
}
