// Package relay contains the realtime core: the connection registry and the
// message relay that turns validated inbound chat events into persisted
// records and outbound broadcasts.
package relay

import (
	"anongram/contract"
	"anongram/domain"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Relay struct {
	registry *Registry
	store    contract.MessageStore
	log      *slog.Logger
	clock    func() time.Time

	mu        sync.Mutex
	lastStamp time.Time
}

func NewRelay(log *slog.Logger, registry *Registry, store contract.MessageStore) *Relay {
	return &Relay{
		registry: registry,
		store:    store,
		log:      log,
		clock:    time.Now,
	}
}

// WithClock injects the clock, for tests.
func (r *Relay) WithClock(clock func() time.Time) *Relay {
	r.clock = clock
	return r
}

// HandleInbound processes one raw frame received on the given connection.
// The inbound channel is fire-and-forget: nothing is ever written back to the
// sender, whatever happens. No error and no panic may escape to the caller,
// so one connection's garbage never disturbs another's service.
//
//  1. Malformed JSON is logged and discarded; the connection stays open.
//  2. Event types other than "chat_message" are ignored silently, so that
//     clients can ship newer event kinds without breaking older servers.
//  3. A valid chat event becomes a ChatMessage with a fresh id and a
//     server-assigned timestamp, is appended to the store, and only then
//     broadcast to every other open connection.
func (r *Relay) HandleInbound(sender ConnID, raw []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Recovered panic while handling inbound frame",
				"conn_id", sender, "panic", rec)
		}
	}()

	var event domain.InboundEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		r.log.Warn("Discarding malformed frame", "conn_id", sender, "error", err)
		return
	}

	if event.Type != domain.EventChatMessage {
		return
	}

	if err := domain.ValidateInbound(event); err != nil {
		r.log.Warn("Discarding incomplete chat event", "conn_id", sender, "error", err)
		return
	}

	msg := domain.ChatMessage{
		ID:         uuid.NewString(),
		Text:       event.Text,
		SenderID:   event.SenderID,
		ReceiverID: event.ReceiverID,
		Timestamp:  r.stamp(),
		Type:       domain.MessageTypeText,
	}

	// The append must settle before the fan-out so a client querying history
	// right after receiving the broadcast observes the message.
	if err := r.store.Append(msg); err != nil {
		r.log.Warn("Dropped write: message not persisted, broadcasting anyway",
			"message_id", msg.ID, "error", err)
	}

	payload, err := json.Marshal(domain.NewEnvelope(msg))
	if err != nil {
		r.log.Error("Failed to encode outbound envelope", "message_id", msg.ID, "error", err)
		return
	}

	sent := r.registry.BroadcastExcept(sender, payload)
	r.log.Debug("Message relayed", "message_id", msg.ID, "deliveries", sent)
}

// HandleDisconnect releases the connection. Idempotent; there is no per-user
// presence to tear down.
func (r *Relay) HandleDisconnect(id ConnID) {
	r.registry.Unregister(id)
}

// stamp returns the current server time, clamped so that timestamps handed out
// by one relay instance never go backwards even across a clock adjustment.
func (r *Relay) stamp() time.Time {
	now := r.clock().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	if now.Before(r.lastStamp) {
		now = r.lastStamp
	}
	r.lastStamp = now
	return now
}
