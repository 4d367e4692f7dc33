package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/skyroute/internal/edge"
	"github.com/MrSnakeDoc/skyroute/internal/router"
)

type resolveOptions struct {
	Method    string
	Host      string
	Path      string
	Headers   []string
	Query     []string
	Body      string
	DataPlane bool
	MaxBody   int64
}

var resolveOpts resolveOptions

// resolveCmd explains a routing decision offline.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show which service a request would be routed to",
	Long: `Resolve a hand-written request against the service definitions and print the decision as JSON.
Nothing is sent and redis is not used.

Example:
  skyroute resolve --method POST --header "X-Amz-Target: AmazonSQS.SendMessage"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, err := resolveOpts.description()
		if err != nil {
			return err
		}

		log := cliLogger()
		cat, err := loadCatalog(loadConfig(), log)
		if err != nil {
			return err
		}

		decision, err := edge.Explain(cmd.Context(), router.New(cat, log), desc, resolveOpts.MaxBody)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(decision.Summary())
	},
}

func (o resolveOptions) description() (edge.Description, error) {
	desc := edge.Description{
		Method:    o.Method,
		Host:      o.Host,
		Path:      o.Path,
		Body:      o.Body,
		DataPlane: o.DataPlane,
	}

	headers, err := parsePairs(o.Headers, ":")
	if err != nil {
		return desc, fmt.Errorf("--header: %w", err)
	}
	if len(headers) > 0 {
		desc.Headers = make(map[string]string, len(headers))
		for _, h := range headers {
			desc.Headers[http.CanonicalHeaderKey(h[0])] = h[1]
		}
	}

	query, err := parsePairs(o.Query, "=")
	if err != nil {
		return desc, fmt.Errorf("--query: %w", err)
	}
	if len(query) > 0 {
		desc.Query = make(map[string][]string, len(query))
		for _, q := range query {
			desc.Query[q[0]] = append(desc.Query[q[0]], q[1])
		}
	}
	return desc, nil
}

func init() {
	f := resolveCmd.Flags()
	f.StringVarP(&resolveOpts.Method, "method", "X", http.MethodGet, "HTTP method")
	f.StringVar(&resolveOpts.Host, "host", "localhost:4566", "Host header")
	f.StringVar(&resolveOpts.Path, "path", "/", "request path")
	f.StringArrayVarP(&resolveOpts.Headers, "header", "H", nil, `header as "Name: value" (repeatable)`)
	f.StringArrayVarP(&resolveOpts.Query, "query", "q", nil, `query parameter as "name=value" (repeatable)`)
	f.StringVarP(&resolveOpts.Body, "body", "d", "", "request body")
	f.BoolVar(&resolveOpts.DataPlane, "data-plane", false, "only apply data-plane host rules")
	f.Int64Var(&resolveOpts.MaxBody, "max-body", 1<<20, "body size beyond which form parsing is skipped")
}
