package websocket

import "sync"

// Registry tracks the intended set of channel subscriptions. Membership
// reflects the caller's intent at all times, independent of connection
// state: the session replays the current snapshot every time a connection
// reaches Ready, which is what makes reconnects transparent.
type Registry struct {
	mu    sync.Mutex
	order []string
	chans map[string]Channel
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{chans: make(map[string]Channel)}
}

// Add records a subscription. It is idempotent: adding a channel that is
// already present is a no-op and returns false.
func (r *Registry) Add(c Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := c.Key()
	if _, ok := r.chans[key]; ok {
		return false
	}
	r.chans[key] = c
	r.order = append(r.order, key)
	return true
}

// Remove deletes a subscription, returning true if it was present.
func (r *Registry) Remove(c Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := c.Key()
	if _, ok := r.chans[key]; !ok {
		return false
	}
	delete(r.chans, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Snapshot returns the current subscriptions in insertion order. The result
// is a copy and safe to use while the registry keeps changing.
func (r *Registry) Snapshot() []Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Channel, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.chans[key])
	}
	return out
}

// Len returns the number of tracked subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chans)
}
