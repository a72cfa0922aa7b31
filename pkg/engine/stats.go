package engine

import "sync"

// Stat names a counter the engine maintains.
type Stat string

const (
	StatExempt        Stat = "exempt"
	StatRegistered    Stat = "registered"
	StatShortCircuits Stat = "short_circuits"
	StatSwept         Stat = "swept"
	StatMigrated      Stat = "migrated"
	StatFailed        Stat = "failed"
	StatNoAnchor      Stat = "no_anchor"
)

// Stats is a small concurrent counter set, reported on shutdown.
type Stats struct {
	mu       sync.Mutex
	counters map[Stat]int64
}

func NewStats() *Stats {
	return &Stats{counters: make(map[Stat]int64)}
}

func (s *Stats) Inc(stat Stat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[stat]++
}

func (s *Stats) Get(stat Stat) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[stat]
}

// Snapshot returns a copy of all counters.
func (s *Stats) Snapshot() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		out[string(k)] = v
	}
	return out
}
