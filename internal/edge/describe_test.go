package edge

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/skyroute/internal/catalog"
	"github.com/MrSnakeDoc/skyroute/internal/domain"
	"github.com/MrSnakeDoc/skyroute/internal/router"
)

func testRouter() *router.Router {
	return router.New(catalog.New([]*domain.Service{
		{ID: domain.ID("lambda"), Protocol: domain.ProtocolRESTJSON, SigningName: "lambda", EndpointPrefix: "lambda"},
		{ID: domain.ID("s3"), Protocol: domain.ProtocolRESTXML, SigningName: "s3", EndpointPrefix: "s3"},
		{
			ID: domain.ID("sqs"), Protocol: domain.ProtocolJSON, SigningName: "sqs", EndpointPrefix: "sqs",
			TargetPrefix: "AmazonSQS", OperationNames: []string{"SendMessage"},
		},
	}), nil)
}

func TestDescription_Build(t *testing.T) {
	desc := Description{
		Method:  "post",
		Host:    "sqs.us-east-1.localhost.localstack.cloud:4566",
		Headers: map[string]string{"X-Amz-Target": "AmazonSQS.SendMessage"},
		Query:   map[string][]string{"a": {"1"}},
		Body:    `{"QueueUrl":"x"}`,
	}

	r, err := desc.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, r.Method)
	assert.Equal(t, "sqs.us-east-1.localhost.localstack.cloud:4566", r.Host)
	assert.Equal(t, "/", r.URL.Path)
	assert.Equal(t, "1", r.URL.Query().Get("a"))
	assert.Equal(t, "AmazonSQS.SendMessage", r.Header.Get("x-amz-target"))

	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"QueueUrl":"x"}`, string(body))
}

func TestDescription_BuildInvalidPath(t *testing.T) {
	_, err := Description{Path: "no-slash"}.Build(context.Background())
	assert.Error(t, err)
}

func TestExplain(t *testing.T) {
	rt := testRouter()
	ctx := context.Background()

	tests := []struct {
		name    string
		desc    Description
		service string
		stage   router.Stage
	}{
		{
			name:    "target header",
			desc:    Description{Method: "POST", Headers: map[string]string{"X-Amz-Target": "AmazonSQS.SendMessage"}},
			service: "sqs",
			stage:   router.StageTargetPrefix,
		},
		{
			name:    "function url resolves through host rules",
			desc:    Description{Host: "abc.lambda-url.us-east-1.localhost.localstack.cloud:4566"},
			service: "lambda",
			stage:   router.StageHostRule,
		},
		{
			name:  "data plane ignores everything but the host",
			desc:  Description{Method: "POST", DataPlane: true, Headers: map[string]string{"X-Amz-Target": "AmazonSQS.SendMessage"}},
			stage: router.StageUnknown,
		},
		{
			name:    "data plane website endpoint",
			desc:    Description{DataPlane: true, Host: "site.s3-website.us-east-1.localhost.localstack.cloud:4566"},
			service: "s3",
			stage:   router.StageHostRule,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Explain(ctx, rt, tt.desc, 1024)
			require.NoError(t, err)
			assert.Equal(t, tt.stage, d.Stage)
			assert.Equal(t, tt.service, d.Summary().Service)
		})
	}
}

func TestClassify(t *testing.T) {
	rt := router.New(catalog.New([]*domain.Service{
		{ID: domain.ID("lambda"), Protocol: domain.ProtocolRESTJSON, SigningName: "lambda", EndpointPrefix: "lambda"},
		{ID: domain.ID("sqs"), Protocol: domain.ProtocolJSON, SigningName: "sqs", TargetPrefix: "AmazonSQS"},
		{ID: domain.ID("sqs", domain.ProtocolQuery), Protocol: domain.ProtocolQuery, SigningName: "sqs"},
	}), nil)
	host := "abc.lambda-url.us-east-1.localhost.localstack.cloud:4566"

	tests := []struct {
		name    string
		path    string
		service string
		stage   router.Stage
		rule    string
	}{
		{"path rules come before host rules", "/000000000000/my-queue", "sqs", router.StagePathRule, "sqs-queue-url"},
		{"host rule when nothing else matches", "/", "lambda", router.StageHostRule, "lambda-function-url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := http.NewRequest(http.MethodGet, "http://"+host+tt.path, nil)
			require.NoError(t, err)

			d := Classify(rt, NewRequest(r, 1024))
			require.True(t, d.Known())
			assert.Equal(t, tt.service, d.Service.Name())
			assert.Equal(t, tt.stage, d.Stage)
			assert.Equal(t, tt.rule, d.Rule)
		})
	}
}
