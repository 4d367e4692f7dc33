package router

import (
	"slices"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

// candidateSet is the working set of services not yet ruled out during one
// resolution.
type candidateSet map[domain.ServiceIdentifier]struct{}

func (cs candidateSet) add(ids ...domain.ServiceIdentifier) {
	for _, id := range ids {
		cs[id] = struct{}{}
	}
}

// filter returns a new set with the members for which keep is true.
func (cs candidateSet) filter(keep func(domain.ServiceIdentifier) bool) candidateSet {
	kept := make(candidateSet, len(cs))
	for id := range cs {
		if keep(id) {
			kept[id] = struct{}{}
		}
	}
	return kept
}

// sorted returns the members ordered by name, then protocol.
func (cs candidateSet) sorted() []domain.ServiceIdentifier {
	ids := make([]domain.ServiceIdentifier, 0, len(cs))
	for id := range cs {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, domain.CompareIdentifiers)
	return ids
}

// names returns the distinct service names, sorted.
func (cs candidateSet) names() []string {
	names := make([]string, 0, len(cs))
	for id := range cs {
		names = append(names, id.Name)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// only returns the single member of a one-element set.
func (cs candidateSet) only() (domain.ServiceIdentifier, bool) {
	if len(cs) != 1 {
		return domain.ServiceIdentifier{}, false
	}
	for id := range cs {
		return id, true
	}
	return domain.ServiceIdentifier{}, false
}
