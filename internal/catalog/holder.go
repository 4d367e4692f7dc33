package catalog

import (
	"sync/atomic"
)

// Holder publishes the current catalog. Reloads build a new catalog and swap
// it in; readers take a snapshot with Load and never block.
type Holder struct {
	current atomic.Pointer[Catalog]
	swaps   atomic.Int64
}

// NewHolder creates a holder. A nil catalog is replaced with an empty one.
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	if c == nil {
		c = Empty()
	}
	h.current.Store(c)
	return h
}

// Load returns the current catalog snapshot (never nil).
func (h *Holder) Load() *Catalog {
	return h.current.Load()
}

// Store replaces the current catalog and returns the previous one.
func (h *Holder) Store(c *Catalog) *Catalog {
	if c == nil {
		c = Empty()
	}
	h.swaps.Add(1)
	return h.current.Swap(c)
}

// Swaps returns how many times the catalog was replaced since start.
func (h *Holder) Swaps() int64 {
	return h.swaps.Load()
}
