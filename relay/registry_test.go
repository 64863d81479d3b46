package relay

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSink records deliveries; closed or full sinks simulate dying clients.
type fakeSink struct {
	mu       sync.Mutex
	payloads [][]byte
	closed   bool
	failing  bool
}

func (s *fakeSink) Deliver(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errFakeDelivery
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func (s *fakeSink) Open() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *fakeSink) received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

var errFakeDelivery = errFake("delivery refused")

type errFake string

func (e errFake) Error() string { return string(e) }

func Test_Broadcast_Excludes_The_Sender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	a, b, c := &fakeSink{}, &fakeSink{}, &fakeSink{}
	senderID := registry.Register(a)
	registry.Register(b)
	registry.Register(c)
	req.Equal(3, registry.Size())

	attempts := registry.BroadcastExcept(senderID, []byte(`{"hello":"world"}`))

	req.Equal(2, attempts)
	req.Equal(0, a.received())
	req.Equal(1, b.received())
	req.Equal(1, c.received())
}

func Test_Broadcast_Skips_Closed_Connections_Without_Removing_Them(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	sender := registry.Register(&fakeSink{})
	open := &fakeSink{}
	registry.Register(open)
	registry.Register(&fakeSink{closed: true})

	attempts := registry.BroadcastExcept(sender, []byte("payload"))

	req.Equal(1, attempts)
	req.Equal(1, open.received())
	// Removal is owned by the disconnect path, never by the broadcaster.
	req.Equal(3, registry.Size())
}

func Test_One_Failing_Delivery_Does_Not_Abort_The_Broadcast(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	sender := registry.Register(&fakeSink{})
	registry.Register(&fakeSink{failing: true})
	healthy := &fakeSink{}
	registry.Register(healthy)

	attempts := registry.BroadcastExcept(sender, []byte("payload"))

	req.Equal(2, attempts)
	req.Equal(1, healthy.received())
}

func Test_Unregister_Unknown_Id_Is_A_NoOp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	registry.Register(&fakeSink{})

	registry.Unregister(ConnID("never-registered"))
	registry.Unregister(ConnID("never-registered"))

	req.Equal(1, registry.Size())
}

func Test_Registered_Ids_Are_Unique(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())

	seen := make(map[ConnID]struct{})
	for i := 0; i < 100; i++ {
		id := registry.Register(&fakeSink{})
		_, dup := seen[id]
		req.False(dup)
		seen[id] = struct{}{}
	}
}

func Test_Concurrent_Register_Unregister_And_Broadcast(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	sender := registry.Register(&fakeSink{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := registry.Register(&fakeSink{})
			registry.BroadcastExcept(sender, []byte("x"))
			registry.Unregister(id)
		}()
	}
	wg.Wait()

	req.Equal(1, registry.Size())
}
