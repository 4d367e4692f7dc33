package specs

import (
	"fmt"
	"slices"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

// Mapper converts definitions to domain.Service entities
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapServices merges definition sets in order: a definition overrides any
// earlier one with the same identifier. Invalid definitions are skipped.
func (m *Mapper) MapServices(sets ...[]Definition) ([]*domain.Service, error) {
	byID := make(map[domain.ServiceIdentifier]*domain.Service)
	var order []domain.ServiceIdentifier

	for _, defs := range sets {
		for _, def := range defs {
			// Skip definitions without the fields routing depends on
			if def.Name == "" || def.Protocol == "" {
				continue
			}

			service := toService(def)
			if prev, ok := byID[service.ID]; ok {
				service.Sources = appendSource(prev.Sources, def.Source)
			} else {
				order = append(order, service.ID)
			}
			byID[service.ID] = service
		}
	}

	if len(byID) == 0 {
		return nil, fmt.Errorf("no valid service definitions found")
	}

	services := make([]*domain.Service, 0, len(order))
	for _, id := range order {
		services = append(services, byID[id])
	}
	return services, nil
}

func toService(def Definition) *domain.Service {
	signingName := def.SigningName
	if signingName == "" {
		signingName = def.Name
	}

	service := &domain.Service{
		ID:             domain.ID(def.Name, def.Variant),
		Protocol:       def.Protocol,
		SigningName:    signingName,
		TargetPrefix:   def.TargetPrefix,
		EndpointPrefix: def.EndpointPrefix,
		APIVersion:     def.APIVersion,
		OperationNames: slices.Clone(def.Operations),
	}
	if def.Source != "" {
		service.Sources = []string{def.Source}
	}
	return service
}

func appendSource(sources []string, source string) []string {
	if source == "" || slices.Contains(sources, source) {
		return slices.Clone(sources)
	}
	return append(slices.Clone(sources), source)
}
