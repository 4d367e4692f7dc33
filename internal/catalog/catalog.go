package catalog

import (
	"cmp"
	"slices"
	"time"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

// protocolPreference decides which variant Get returns when a service has no
// primary variant and the caller did not ask for a protocol.
var protocolPreference = []string{
	domain.ProtocolJSON,
	domain.ProtocolRESTJSON,
	domain.ProtocolRESTXML,
	domain.ProtocolQuery,
	domain.ProtocolEC2,
	domain.ProtocolSmithyRPCv2CBOR,
}

// Catalog is an immutable, indexed view over service definitions.
// It is built once and is safe for concurrent reads without locking.
type Catalog struct {
	services         map[domain.ServiceIdentifier]*domain.Service
	byName           map[string][]domain.ServiceIdentifier
	bySigningName    map[string][]domain.ServiceIdentifier
	byTargetPrefix   map[string][]domain.ServiceIdentifier
	byOperation      map[string][]domain.ServiceIdentifier
	endpointPrefixes []domain.EndpointPrefix
	builtAt          time.Time
}

// New builds a catalog. Services are copied, so later changes to the input
// do not leak into the catalog. A later duplicate identifier replaces an
// earlier one.
func New(services []*domain.Service) *Catalog {
	c := &Catalog{
		services:       make(map[domain.ServiceIdentifier]*domain.Service, len(services)),
		byName:         make(map[string][]domain.ServiceIdentifier),
		bySigningName:  make(map[string][]domain.ServiceIdentifier),
		byTargetPrefix: make(map[string][]domain.ServiceIdentifier),
		byOperation:    make(map[string][]domain.ServiceIdentifier),
		builtAt:        time.Now(),
	}

	for _, svc := range services {
		if svc == nil || svc.ID.Name == "" {
			continue
		}
		c.services[svc.ID] = svc.Clone()
	}

	byEndpoint := make(map[string][]domain.ServiceIdentifier)
	for id, svc := range c.services {
		c.byName[id.Name] = append(c.byName[id.Name], id)
		if svc.SigningName != "" {
			c.bySigningName[svc.SigningName] = append(c.bySigningName[svc.SigningName], id)
		}
		if svc.TargetPrefix != "" {
			c.byTargetPrefix[svc.TargetPrefix] = append(c.byTargetPrefix[svc.TargetPrefix], id)
		}
		if svc.EndpointPrefix != "" {
			byEndpoint[svc.EndpointPrefix] = append(byEndpoint[svc.EndpointPrefix], id)
		}
		for _, op := range svc.OperationNames {
			c.byOperation[op] = append(c.byOperation[op], id)
		}
	}

	// Map iteration is random; sort every index so lookups are deterministic.
	for _, idx := range []map[string][]domain.ServiceIdentifier{c.byName, c.bySigningName, c.byTargetPrefix, c.byOperation, byEndpoint} {
		for _, ids := range idx {
			slices.SortFunc(ids, domain.CompareIdentifiers)
		}
	}

	c.endpointPrefixes = make([]domain.EndpointPrefix, 0, len(byEndpoint))
	for prefix, ids := range byEndpoint {
		c.endpointPrefixes = append(c.endpointPrefixes, domain.EndpointPrefix{Prefix: prefix, Services: ids})
	}
	// Longest prefix first so nested prefixes (runtime.sagemaker vs runtime)
	// resolve to the most specific one.
	slices.SortFunc(c.endpointPrefixes, func(a, b domain.EndpointPrefix) int {
		if n := cmp.Compare(len(b.Prefix), len(a.Prefix)); n != 0 {
			return n
		}
		return cmp.Compare(a.Prefix, b.Prefix)
	})

	return c
}

// Empty returns a catalog without services.
func Empty() *Catalog {
	return New(nil)
}

// BySigningName returns the services signed with the given name.
func (c *Catalog) BySigningName(name string) []domain.ServiceIdentifier {
	return slices.Clone(c.bySigningName[name])
}

// ByTargetPrefix returns the services addressed with the given target prefix.
func (c *Catalog) ByTargetPrefix(prefix string) []domain.ServiceIdentifier {
	return slices.Clone(c.byTargetPrefix[prefix])
}

// ByOperation returns the services declaring the operation. When protocols
// are given, only variants speaking one of them are returned.
func (c *Catalog) ByOperation(operation string, protocols ...string) []domain.ServiceIdentifier {
	ids := c.byOperation[operation]
	if len(protocols) == 0 {
		return slices.Clone(ids)
	}
	out := make([]domain.ServiceIdentifier, 0, len(ids))
	for _, id := range ids {
		if slices.Contains(protocols, c.services[id].Protocol) {
			out = append(out, id)
		}
	}
	return out
}

// Get resolves a service descriptor. An empty protocol selects the primary
// variant, or the most preferred protocol variant if there is no primary.
func (c *Catalog) Get(name, protocol string) (*domain.Service, bool) {
	if svc, ok := c.services[domain.ServiceIdentifier{Name: name, Protocol: protocol}]; ok {
		return svc, true
	}

	variants := c.byName[name]
	if len(variants) == 0 {
		return nil, false
	}

	if protocol != "" {
		// the primary variant may already speak the requested protocol
		if primary, ok := c.services[domain.ServiceIdentifier{Name: name}]; ok && primary.Protocol == protocol {
			return primary, true
		}
		return nil, false
	}

	best := c.services[variants[0]]
	bestRank := protocolRank(best.Protocol)
	for _, id := range variants[1:] {
		svc := c.services[id]
		if r := protocolRank(svc.Protocol); r < bestRank {
			best, bestRank = svc, r
		}
	}
	return best, true
}

// Lookup resolves an identifier with the same defaulting rules as Get.
func (c *Catalog) Lookup(id domain.ServiceIdentifier) (*domain.Service, bool) {
	return c.Get(id.Name, id.Protocol)
}

// EndpointPrefixes returns the endpoint-prefix index, longest prefix first.
// The slice is shared and must not be modified.
func (c *Catalog) EndpointPrefixes() []domain.EndpointPrefix {
	return c.endpointPrefixes
}

// Services returns all services ordered by identifier.
func (c *Catalog) Services() []*domain.Service {
	out := make([]*domain.Service, 0, len(c.services))
	for _, svc := range c.services {
		out = append(out, svc)
	}
	slices.SortFunc(out, func(a, b *domain.Service) int {
		return domain.CompareIdentifiers(a.ID, b.ID)
	})
	return out
}

// Count returns the number of service variants.
func (c *Catalog) Count() int {
	return len(c.services)
}

// BuiltAt returns the construction time of the catalog.
func (c *Catalog) BuiltAt() time.Time {
	return c.builtAt
}

func protocolRank(protocol string) int {
	if i := slices.Index(protocolPreference, protocol); i >= 0 {
		return i
	}
	return len(protocolPreference)
}
