package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/tinyland-inc/mediaclaw/pkg/bus"
)

// Key identifies one open reconciliation per author/channel pair. It is not
// unique across time: a second message from the same pair before the first
// resolves overwrites it (last-write-wins, only one open migration per key
// is tracked).
type Key struct {
	AuthorID  string
	ChannelID string
}

// Entry is a message provisionally held while awaiting a proxy
// confirmation.
type Entry struct {
	Key        Key
	Msg        *bus.Message
	EnqueuedAt time.Time
}

// Registry is the time-keyed holding area for pending messages. Exactly one
// consumer wins per entry: either the proxy short-circuit path or the
// timeout sweep, whichever calls ConsumeIfPresent/SweepExpired first.
type Registry struct {
	mu      sync.Mutex
	entries map[Key]*Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[Key]*Entry)}
}

// Register inserts or overwrites the entry for key with the given
// timestamp.
func (r *Registry) Register(key Key, msg *bus.Message, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = &Entry{Key: key, Msg: msg, EnqueuedAt: now}
}

// ConsumeIfPresent atomically removes and returns the entry for key, or nil
// if none is held. This is the synchronization point that guarantees
// at-most-once migration per entry.
func (r *Registry) ConsumeIfPresent(key Key) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[key]
	if !ok {
		return nil
	}
	delete(r.entries, key)
	return entry
}

// SweepExpired removes and returns all entries older than the grace window,
// oldest first.
func (r *Registry) SweepExpired(now time.Time, grace time.Duration) []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []*Entry
	for key, entry := range r.entries {
		if now.Sub(entry.EnqueuedAt) > grace {
			expired = append(expired, entry)
			delete(r.entries, key)
		}
	}

	sort.Slice(expired, func(i, j int) bool {
		return expired[i].EnqueuedAt.Before(expired[j].EnqueuedAt)
	})
	return expired
}

// Len returns the number of pending entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
