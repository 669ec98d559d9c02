package p2p

import (
	"context"
	"sync"

	"github.com/pizzanight/server/models"
)

// Message is one raw broadcast received from the room: the typed channel
// it arrived on and the envelope bytes.
type Message struct {
	Kind models.Kind
	Data []byte
}

// Room is the broadcast medium shared by all peers: fire-and-forget
// publish/subscribe with no delivery acknowledgment and no ordering
// guarantee. Every peer receives every peer's messages, its own
// included; the engine filters self-echo by sender id.
type Room interface {
	// Join subscribes to every typed channel of the room.
	Join(ctx context.Context) error

	// Publish broadcasts a payload on one typed channel. Best effort: a
	// message sent while the transport is down is simply lost.
	Publish(ctx context.Context, kind models.Kind, data []byte) error

	// Messages delivers received broadcasts until Leave. The channel is
	// closed on teardown.
	Messages() <-chan Message

	// PeerCount reports the live number of peers from the transport's
	// own registry, never from application messages.
	PeerCount(ctx context.Context) (int, error)

	// Leave unsubscribes and closes the message channel.
	Leave() error
}

// MemHub is an in-process Room fabric for tests: every endpoint receives
// every publish, including its own (real pub/sub echoes to the sender
// too, and engines must cope).
type MemHub struct {
	mu        sync.Mutex
	endpoints []*memRoom
}

func NewMemHub() *MemHub {
	return &MemHub{}
}

// Join creates a new endpoint attached to the hub.
func (h *MemHub) Join() Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := &memRoom{hub: h, msgs: make(chan Message, 256)}
	h.endpoints = append(h.endpoints, r)
	return r
}

func (h *MemHub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.endpoints {
		if r.closed {
			continue
		}
		select {
		case r.msgs <- msg:
		default: // slow endpoint, drop (fire-and-forget)
		}
	}
}

func (h *MemHub) peerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.endpoints {
		if !r.closed {
			n++
		}
	}
	return n
}

type memRoom struct {
	hub    *MemHub
	msgs   chan Message
	closed bool
}

func (r *memRoom) Join(ctx context.Context) error { return nil }

func (r *memRoom) Publish(ctx context.Context, kind models.Kind, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	r.hub.broadcast(Message{Kind: kind, Data: cp})
	return nil
}

func (r *memRoom) Messages() <-chan Message { return r.msgs }

func (r *memRoom) PeerCount(ctx context.Context) (int, error) {
	return r.hub.peerCount(), nil
}

func (r *memRoom) Leave() error {
	r.hub.mu.Lock()
	defer r.hub.mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.msgs)
	}
	return nil
}
