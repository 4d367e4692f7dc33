package domain

import "time"

// Stats counts resolutions per service and per resolution stage.
type Stats struct {
	Services map[string]int64 `json:"services"`
	Stages   map[string]int64 `json:"stages"`
}

// NewStats returns empty, ready to use counters.
func NewStats() Stats {
	return Stats{
		Services: make(map[string]int64),
		Stages:   make(map[string]int64),
	}
}

// Empty reports whether nothing was counted.
func (s Stats) Empty() bool {
	return len(s.Services) == 0 && len(s.Stages) == 0
}

// Merge adds other's counters to s.
func (s Stats) Merge(other Stats) {
	for k, v := range other.Services {
		s.Services[k] += v
	}
	for k, v := range other.Stages {
		s.Stages[k] += v
	}
}

// UnknownRequest describes a request no service could be found for.
type UnknownRequest struct {
	Method    string    `json:"method"`
	Host      string    `json:"host"`
	Path      string    `json:"path"`
	UserAgent string    `json:"user_agent,omitempty"`
	At        time.Time `json:"at"`
}
