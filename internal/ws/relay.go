package ws

import "time"

// Relay forwards a sender-stamped frame to the recipient's live connections.
// Delivery is best-effort over the live channel only: an unreachable
// recipient is a normal condition, and durable visibility is the ledger's
// job, not the relay's.
type Relay struct {
	registry *Registry
}

func NewRelay(registry *Registry) *Relay {
	return &Relay{registry: registry}
}

// Deliver pushes one frame per live recipient connection and reports how
// many it reached. Zero is not an error.
func (r *Relay) Deliver(fromUserID, toUserID uint64, body string) int {
	targets := r.registry.Lookup(toUserID)
	if len(targets) == 0 {
		return 0
	}

	f := outboundFrame{
		Type:       frameChatMessage,
		Content:    body,
		FromUserID: fromUserID,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	for _, c := range targets {
		c.push(f)
	}
	return len(targets)
}
