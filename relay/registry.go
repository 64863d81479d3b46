package relay

import (
	"anongram/contract"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ConnID is the opaque identifier of one live connection. It is generated
// fresh at registration time and carries no relation to any user identity.
type ConnID string

type Registry struct {
	mu       sync.RWMutex
	log      *slog.Logger
	sessions map[ConnID]contract.OutboundSink
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:      log,
		sessions: make(map[ConnID]contract.OutboundSink),
	}
}

// Register stores the sink under a fresh 128-bit random identifier and returns
// that identifier. It has no failure mode.
func (r *Registry) Register(sink contract.OutboundSink) ConnID {
	id := ConnID(uuid.NewString())
	r.mu.Lock()
	r.sessions[id] = sink
	total := len(r.sessions)
	r.mu.Unlock()

	r.log.Info(fmt.Sprintf("New connection %s", id), "total", total)
	return id
}

// Unregister removes the mapping for id. Removing an absent id is a no-op,
// not an error: the disconnect path may fire more than once per connection.
func (r *Registry) Unregister(id ConnID) {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	total := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.log.Info(fmt.Sprintf("Connection closed %s", id), "total", total)
	}
}

// BroadcastExcept attempts one delivery per registered, currently open
// connection other than the sender, and returns the number of attempts.
//
// The session map is snapshotted under the read lock and deliveries happen
// outside of it, so a broadcast in progress never observes a torn mapping and
// never holds the registry against concurrent register/unregister calls.
//
// Sinks found closed are skipped, not removed; removal is owned exclusively by
// the disconnect path through Unregister. A failed delivery is logged and the
// loop continues: one slow or broken client must not affect the others.
func (r *Registry) BroadcastExcept(sender ConnID, payload []byte) int {
	r.mu.RLock()
	targets := make(map[ConnID]contract.OutboundSink, len(r.sessions))
	for id, sink := range r.sessions {
		if id != sender {
			targets[id] = sink
		}
	}
	r.mu.RUnlock()

	attempts := 0
	for id, sink := range targets {
		if !sink.Open() {
			continue
		}
		attempts++
		if err := sink.Deliver(payload); err != nil {
			r.log.Warn("Delivery failed, leaving cleanup to the disconnect path",
				"conn_id", id, "error", err)
		}
	}
	return attempts
}

// Size returns the number of registered connections.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
