package router

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

// presignMarkers are the query parameters of v2 and v4 presigned URLs.
var presignMarkers = []string{
	"AWSAccessKeyId",
	"Signature",
	"X-Amz-Algorithm",
	"X-Amz-Credential",
	"X-Amz-Date",
	"X-Amz-Expires",
	"X-Amz-SignedHeaders",
	"X-Amz-Signature",
}

// fallbackRequest caches what the legacy rules keep asking for.
type fallbackRequest struct {
	Request
	stripped string
	values   url.Values
	loaded   bool
}

// formValues never fails: an oversized body leaves the query values, any
// other read error counts as no values.
func (r *fallbackRequest) formValues() url.Values {
	if !r.loaded {
		r.loaded = true
		values, err := r.Values()
		if err == nil || errors.Is(err, ErrEntityTooLarge) {
			r.values = values
		}
	}
	return r.values
}

func (r *fallbackRequest) has(key string) bool {
	_, ok := r.formValues()[key]
	return ok
}

type fallbackRule struct {
	name    string
	matches func(r *fallbackRequest) bool
}

// fallbackRules are the legacy heuristics for the fallback service.
// Order matters: the virtual-host rule is so greedy it has to come last.
var fallbackRules = []fallbackRule{
	{
		// GET /<bucket>/<key...>
		name: "read",
		matches: func(r *fallbackRequest) bool {
			m := r.Method()
			return (m == http.MethodGet || m == http.MethodHead) && r.stripped != ""
		},
	},
	{
		// PUT /<bucket>
		name: "bucket-put",
		matches: func(r *fallbackRequest) bool {
			return r.singleSegment() && r.Method() == http.MethodPut
		},
	},
	{
		// POST /<bucket> with a form (urlencoded or multipart) carrying the key
		name: "form-upload",
		matches: func(r *fallbackRequest) bool {
			return r.singleSegment() && r.Method() == http.MethodPost && r.has("key")
		},
	},
	{
		// aws-cli with --no-sign-request
		name: "unsigned-cli",
		matches: func(r *fallbackRequest) bool {
			return strings.Contains(r.Header(headerUserAgent), "aws-cli/")
		},
	},
	{
		name: "presigned-url",
		matches: func(r *fallbackRequest) bool {
			for _, marker := range presignMarkers {
				if r.has(marker) {
					return true
				}
			}
			return false
		},
	},
	{
		// POST /<bucket>?delete with a Delete document
		name: "delete-objects",
		matches: func(r *fallbackRequest) bool {
			if r.Method() != http.MethodPost || !r.has("delete") {
				return false
			}
			body, err := r.Body()
			if err != nil {
				return false
			}
			return bytes.Contains(body, []byte("<Delete")) && bytes.Contains(body, []byte("<Key>"))
		},
	},
	{
		// PUT /<bucket>/<key>, keys may be nested
		name: "object-put",
		matches: func(r *fallbackRequest) bool {
			return strings.Contains(r.stripped, "/") && r.Method() == http.MethodPut
		},
	},
	{
		// "AWS <key>:<signature>" signature v2
		name: "sigv2",
		matches: func(r *fallbackRequest) bool {
			return strings.HasPrefix(r.Header(headerAuthorization), "AWS ")
		},
	},
	{
		name: "virtual-host",
		matches: func(r *fallbackRequest) bool {
			_, ok := VirtualHostBucket(r.Host())
			return ok
		},
	},
}

func (r *fallbackRequest) singleSegment() bool {
	return r.stripped != "" && !strings.Contains(r.stripped, "/")
}

// matchFallback evaluates the legacy rules in order and returns the first
// matching rule name.
func matchFallback(req Request) (domain.ServiceIdentifier, string, bool) {
	fr := &fallbackRequest{Request: req, stripped: strings.Trim(req.Path(), "/")}
	for _, rule := range fallbackRules {
		if rule.matches(fr) {
			return domain.ID(FallbackService), rule.name, true
		}
	}
	return domain.ServiceIdentifier{}, "", false
}
