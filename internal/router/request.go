package router

import (
	"errors"
	"net/url"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

// ErrEntityTooLarge is reported by Request.Values and Request.Body when the
// body is too large or cannot be decoded as a form. Binary payloads sent with
// a form content type end up here as well.
var ErrEntityTooLarge = errors.New("request entity too large")

// Request is the normalized view of an inbound HTTP request.
type Request interface {
	Method() string
	// Host is the Host header, including any port.
	Host() string
	Path() string
	// Header looks up a header case-insensitively ("" when absent).
	Header(name string) string
	// Shallow requests have no inspectable body (ex: websocket upgrades).
	Shallow() bool
	// Values returns query parameters merged with form fields. With
	// ErrEntityTooLarge it still returns the query parameters.
	Values() (url.Values, error)
	// Body returns the raw body.
	Body() ([]byte, error)
}

// Catalog is the read-only service index consulted during resolution.
// *catalog.Catalog satisfies it.
type Catalog interface {
	BySigningName(name string) []domain.ServiceIdentifier
	ByTargetPrefix(prefix string) []domain.ServiceIdentifier
	ByOperation(operation string, protocols ...string) []domain.ServiceIdentifier
	Get(name, protocol string) (*domain.Service, bool)
	EndpointPrefixes() []domain.EndpointPrefix
}
