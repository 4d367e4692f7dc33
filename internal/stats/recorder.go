package stats

import (
	"maps"
	"sync"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

// DefaultMaxUnknown bounds the unknown requests kept between two flushes.
const DefaultMaxUnknown = 50

// Recorder accumulates resolution counters in memory until they are flushed.
type Recorder struct {
	mu         sync.Mutex
	pending    domain.Stats
	unknown    []domain.UnknownRequest
	maxUnknown int
}

// NewRecorder creates a recorder keeping at most maxUnknown unknown requests.
func NewRecorder(maxUnknown int) *Recorder {
	if maxUnknown <= 0 {
		maxUnknown = DefaultMaxUnknown
	}
	return &Recorder{
		pending:    domain.NewStats(),
		maxUnknown: maxUnknown,
	}
}

// Record counts one resolution.
func (r *Recorder) Record(service, stage string) {
	r.mu.Lock()
	r.pending.Services[service]++
	r.pending.Stages[stage]++
	r.mu.Unlock()
}

// RecordUnknown keeps an unresolved request, dropping the oldest when full.
func (r *Recorder) RecordUnknown(req domain.UnknownRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unknown = append(r.unknown, req)
	if over := len(r.unknown) - r.maxUnknown; over > 0 {
		r.unknown = r.unknown[over:]
	}
}

// Drain hands over everything recorded so far and starts from zero.
func (r *Recorder) Drain() (domain.Stats, []domain.UnknownRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, unknown := r.pending, r.unknown
	r.pending = domain.NewStats()
	r.unknown = nil
	return stats, unknown
}

// Restore puts back what a failed flush drained.
func (r *Recorder) Restore(stats domain.Stats, unknown []domain.UnknownRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending.Merge(stats)
	r.unknown = append(unknown, r.unknown...)
	if over := len(r.unknown) - r.maxUnknown; over > 0 {
		r.unknown = r.unknown[over:]
	}
}

// Pending returns a copy of the counters not flushed yet.
func (r *Recorder) Pending() domain.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.Stats{
		Services: maps.Clone(r.pending.Services),
		Stages:   maps.Clone(r.pending.Stages),
	}
}

// RecentUnknown returns a copy of the unknown requests not flushed yet,
// newest first.
func (r *Recorder) RecentUnknown() []domain.UnknownRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.UnknownRequest, len(r.unknown))
	for i, u := range r.unknown {
		out[len(r.unknown)-1-i] = u
	}
	return out
}
