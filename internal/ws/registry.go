package ws

import "sync"

// Registry is the in-process directory of live connections, user id -> set
// of clients. It is the only runtime routing state; nothing here survives a
// restart and clients are expected to reconnect.
//
// Only the gateway's admission and teardown paths mutate it; the relay only
// reads.
type Registry struct {
	mu    sync.RWMutex
	conns map[uint64]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint64]map[*Client]struct{})}
}

func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		r.conns[c.UserID] = set
	}
	set[c] = struct{}{}
}

// Deregister removes exactly the given connection. Removing an absent
// connection is a no-op.
func (r *Registry) Deregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[c.UserID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.conns, c.UserID)
	}
}

// Lookup returns the live connections for a user. An empty result means
// "currently unreachable", not an error.
func (r *Registry) Lookup(userID uint64) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.conns[userID]
	if !ok {
		return nil
	}
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// ConnCount returns the number of live connections for a user.
func (r *Registry) ConnCount(userID uint64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[userID])
}
