package router

import (
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

// FallbackService is the path-greedy service matched by the legacy rules.
const FallbackService = "s3"

// ─────────────────────────────────────────────────────────────────
// Signing-name rules
// ─────────────────────────────────────────────────────────────────

// signingNameRule picks a service for an ambiguous signing name based on the
// request path.
type signingNameRule interface {
	match(signingName, path string) (domain.ServiceIdentifier, bool)
}

type pathPrefix struct {
	prefix  string
	service domain.ServiceIdentifier
}

// prefixRule tries prefixes in order. When none matches, the wildcard (if
// set) wins, otherwise the service named like the signing name.
type prefixRule struct {
	prefixes []pathPrefix
	wildcard *domain.ServiceIdentifier
}

func (r prefixRule) match(signingName, path string) (domain.ServiceIdentifier, bool) {
	for _, p := range r.prefixes {
		if strings.HasPrefix(path, p.prefix) {
			return p.service, true
		}
	}
	if r.wildcard != nil {
		return *r.wildcard, true
	}
	return domain.ID(signingName), true
}

// rootPathRule splits one signing name between a service that only uses the
// root path and a service that only uses non-root paths.
type rootPathRule struct {
	root, nonRoot domain.ServiceIdentifier
}

func (r rootPathRule) match(_, path string) (domain.ServiceIdentifier, bool) {
	if path == "/" {
		return r.root, true
	}
	return r.nonRoot, true
}

func prefixes(pairs ...pathPrefix) prefixRule { return prefixRule{prefixes: pairs} }

func on(prefix, service string) pathPrefix {
	return pathPrefix{prefix: prefix, service: domain.ID(service)}
}

func withWildcard(r prefixRule, service string) prefixRule {
	id := domain.ID(service)
	r.wildcard = &id
	return r
}

var signingNameRules = map[string]signingNameRule{
	"apigateway":  prefixes(on("/v2", "apigatewayv2")),
	"appconfig":   prefixes(on("/configuration", "appconfigdata")),
	"bedrock":     prefixes(on("/guardrail/", "bedrock-runtime"), on("/model/", "bedrock-runtime"), on("/async-invoke", "bedrock-runtime")),
	"execute-api": withWildcard(prefixes(on("/@connections", "apigatewaymanagementapi"), on("/participant", "connectparticipant")), "iot"),
	"ses":         prefixes(on("/v2", "sesv2"), on("/v1", "pinpoint-email")),
	"greengrass":  prefixes(on("/greengrass/v2/", "greengrassv2")),
	"cloudsearch": prefixes(on("/2013-01-01", "cloudsearchdomain")),
	"s3":          prefixes(on("/v20180820", "s3control")),
	"iot1click":   prefixes(on("/projects", "iot1click-projects"), on("/devices", "iot1click-devices")),
	"es":          prefixes(on("/2015-01-01", "es"), on("/2021-01-01", "opensearch")),
	"sagemaker":   prefixes(on("/endpoints", "sagemaker-runtime"), on("/human-loops", "sagemaker-a2i-runtime")),
	// servicecatalog speaks json on "/" only, servicecatalog-appregistry rest-json on every other path
	"servicecatalog": rootPathRule{root: domain.ID("servicecatalog"), nonRoot: domain.ID("servicecatalog-appregistry")},
}

func matchSigningNameRule(signingName, path string) (domain.ServiceIdentifier, bool) {
	rule, ok := signingNameRules[signingName]
	if !ok {
		return domain.ServiceIdentifier{}, false
	}
	return rule.match(signingName, path)
}

// ─────────────────────────────────────────────────────────────────
// Path and host rules
// ─────────────────────────────────────────────────────────────────

type requestRule struct {
	name    string
	matches func(string) bool
	service domain.ServiceIdentifier
}

// first match wins
var pathRules = []requestRule{
	{name: "sqs-queue-url", matches: IsQueueURLPath, service: domain.ID("sqs", domain.ProtocolQuery)},
	{name: "lambda-functions", matches: hasPrefix("/2015-03-31/functions"), service: domain.ID("lambda")},
}

// first match wins
var hostRules = []requestRule{
	{name: "lambda-function-url", matches: contains(".lambda-url."), service: domain.ID("lambda")},
	{name: "s3-website", matches: contains(".s3-website."), service: domain.ID(FallbackService)},
}

func matchRules(rules []requestRule, value string) (requestRule, bool) {
	for _, r := range rules {
		if r.matches(value) {
			return r, true
		}
	}
	return requestRule{}, false
}

func hasPrefix(prefix string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, prefix) }
}

func contains(substr string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, substr) }
}

var (
	queueURLPath = regexp.MustCompile(`^/(?:queue/[a-z0-9-]+/)?\d{12}/[A-Za-z0-9_-]{1,80}(?:\.fifo)?/?$`)
	virtualHost  = regexp.MustCompile(`^(?P<bucket>[^/]+?)\.s3\.`)
)

// IsQueueURLPath reports whether the path looks like a queue URL, either
// /<account-id>/<queue-name> or /queue/<region>/<account-id>/<queue-name>.
func IsQueueURLPath(path string) bool {
	return queueURLPath.MatchString(path)
}

// VirtualHostBucket returns the bucket of a virtual-host addressed request
// (ex: "my-bucket.s3.localhost.localstack.cloud:4566" -> "my-bucket").
func VirtualHostBucket(host string) (string, bool) {
	// cheap check first, the regexp is greedy
	if !strings.Contains(host, ".s3.") {
		return "", false
	}
	m := virtualHost.FindStringSubmatch(host)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}
