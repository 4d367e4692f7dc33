package redis

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

const (
	// KeyPrefixService is the prefix for service definition keys
	KeyPrefixService = "skyroute:service:"
	// KeyAllServices is the key for the set of all service IDs
	KeyAllServices = "skyroute:services:all"
	// KeyCatalogMeta is the hash describing the last saved catalog
	KeyCatalogMeta = "skyroute:catalog:meta"
	// KeyStatsServices is the hash of resolution counters per service
	KeyStatsServices = "skyroute:stats:services"
	// KeyStatsStages is the hash of resolution counters per stage
	KeyStatsStages = "skyroute:stats:stages"
	// KeyUnknownRequests is the capped list of recent unresolved requests
	KeyUnknownRequests = "skyroute:unknown"
)

// ServiceKey returns the Redis key for a service by ID
func ServiceKey(id domain.ServiceIdentifier) string {
	return KeyPrefixService + id.String()
}

// AllServicesKey returns the key for the set of all service IDs
func AllServicesKey() string {
	return KeyAllServices
}

// ParseServiceID is the inverse of ServiceIdentifier.String.
func ParseServiceID(s string) domain.ServiceIdentifier {
	name, protocol, _ := strings.Cut(s, "#")
	return domain.ServiceIdentifier{Name: name, Protocol: protocol}
}

// ExtractServiceID extracts the service ID from a Redis key
func ExtractServiceID(key string) (domain.ServiceIdentifier, error) {
	if len(key) <= len(KeyPrefixService) || !strings.HasPrefix(key, KeyPrefixService) {
		return domain.ServiceIdentifier{}, fmt.Errorf("invalid service key: %s", key)
	}
	return ParseServiceID(key[len(KeyPrefixService):]), nil
}
