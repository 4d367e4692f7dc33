package router

import (
	"strings"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

const (
	headerAuthorization = "Authorization"
	headerTarget        = "X-Amz-Target"
	headerContentType   = "Content-Type"
	headerUserAgent     = "User-Agent"

	sigV4Algorithm = "aws4-hmac-sha256"
)

// ExtractIndicators pulls the service hints out of a request without touching
// its body. It never fails; unusable evidence is left empty.
func ExtractIndicators(req Request) domain.ServiceIndicators {
	si := domain.ServiceIndicators{
		SigningName: SigningName(req.Header(headerAuthorization)),
		Host:        req.Host(),
		Path:        req.Path(),
	}
	si.TargetPrefix, si.Operation = splitTarget(req.Header(headerTarget))
	return si
}

// SigningName extracts the service part of a SigV4 credential scope:
//
//	AWS4-HMAC-SHA256 Credential=AKID/20240101/us-east-1/sqs/aws4_request, SignedHeaders=..., Signature=...
//
// returns "sqs". Any other shape yields "".
func SigningName(authorization string) string {
	authType, authInfo, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	if !ok || strings.ToLower(strings.TrimSpace(authType)) != sigV4Algorithm {
		return ""
	}

	credential, ok := parseDictHeader(authInfo)["Credential"]
	if !ok {
		return ""
	}

	// accessKey/date/region/service/requestType
	parts := strings.Split(credential, "/")
	if len(parts) != 5 {
		return ""
	}
	return parts[3]
}

// splitTarget splits "Prefix.Operation" on the first dot. A value without a
// dot is an operation without prefix.
func splitTarget(target string) (prefix, operation string) {
	if target == "" {
		return "", ""
	}
	if prefix, operation, ok := strings.Cut(target, "."); ok {
		return prefix, operation
	}
	return "", target
}

// parseDictHeader parses a comma separated list of key=value pairs. Values
// may be quoted. Items without "=" are ignored.
func parseDictHeader(value string) map[string]string {
	out := make(map[string]string)
	for _, item := range strings.Split(value, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)
		if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
			val = val[1 : len(val)-1]
		}
		out[strings.TrimSpace(key)] = val
	}
	return out
}
