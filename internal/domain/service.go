package domain

import (
	"slices"
	"strings"
)

// Wire protocols declared by service definitions.
const (
	ProtocolJSON            = "json"
	ProtocolRESTJSON        = "rest-json"
	ProtocolRESTXML         = "rest-xml"
	ProtocolQuery           = "query"
	ProtocolEC2             = "ec2"
	ProtocolSmithyRPCv2CBOR = "smithy-rpc-v2-cbor"
)

// ServiceIdentifier names one emulated service variant.
//
// Protocol is empty for the primary variant of a service and set only for
// alternative wire variants sharing the same name (ex: "sqs" + "query").
// The type is comparable and is used directly as a map key.
type ServiceIdentifier struct {
	Name     string `json:"name" yaml:"name"`
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}

// ID is a shorthand for building identifiers.
func ID(name string, protocol ...string) ServiceIdentifier {
	id := ServiceIdentifier{Name: name}
	if len(protocol) > 0 {
		id.Protocol = protocol[0]
	}
	return id
}

// String renders "name" or "name#protocol".
func (id ServiceIdentifier) String() string {
	if id.Protocol == "" {
		return id.Name
	}
	return id.Name + "#" + id.Protocol
}

// CompareIdentifiers orders identifiers by name, then protocol.
func CompareIdentifiers(a, b ServiceIdentifier) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Protocol, b.Protocol)
}

// Service is the resolved descriptor of one service variant.
//
// It is built from service definition files (or a redis snapshot) and is
// read-only once it has been added to a catalog.
type Service struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	ID ServiceIdentifier `json:"id"`

	// Protocol is the wire protocol of this variant. Always set, even for
	// the primary variant whose ID carries no protocol.
	Protocol string `json:"protocol"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// SigningName is the credential-scope service name (ex: "execute-api").
	SigningName string `json:"signing_name"`

	// TargetPrefix is set for services addressed with X-Amz-Target.
	TargetPrefix string `json:"target_prefix,omitempty"`

	// EndpointPrefix is the conventional subdomain label (ex: "sqs").
	EndpointPrefix string `json:"endpoint_prefix,omitempty"`

	APIVersion string `json:"api_version,omitempty"`

	// OperationNames is kept sorted by the catalog.
	OperationNames []string `json:"operation_names"`

	// ─────────────────────────────
	// Provenance
	// ─────────────────────────────

	// Sources indicates where the definition came from (ex: specs, yaml, redis).
	Sources []string `json:"sources,omitempty"`
}

// Name returns the service name.
func (s *Service) Name() string { return s.ID.Name }

// HasOperation reports whether the service declares the operation.
func (s *Service) HasOperation(name string) bool {
	_, found := slices.BinarySearch(s.OperationNames, name)
	return found
}

// HasTargetPrefix reports whether the service is addressed via X-Amz-Target.
func (s *Service) HasTargetPrefix() bool { return s.TargetPrefix != "" }

// Clone returns a deep copy with sorted, de-duplicated operation names.
func (s *Service) Clone() *Service {
	c := *s
	c.OperationNames = slices.Clone(s.OperationNames)
	slices.Sort(c.OperationNames)
	c.OperationNames = slices.Compact(c.OperationNames)
	c.Sources = slices.Clone(s.Sources)
	return &c
}

// EndpointPrefix groups the services that share one endpoint prefix.
type EndpointPrefix struct {
	Prefix   string
	Services []ServiceIdentifier
}
