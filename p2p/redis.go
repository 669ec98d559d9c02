package p2p

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/pizzanight/server/models"
)

const channelPrefix = "pizzanight"

// RedisRoom is the production Room: Redis pub/sub with one channel per
// delta kind. Pub/sub is exactly the broadcast medium the protocol wants
// (fire and forget, no acknowledgment, no replay) and the subscriber
// registry doubles as the live peer count.
type RedisRoom struct {
	client *redis.Client
	room   string
	sub    *redis.PubSub
	msgs   chan Message

	mu     sync.Mutex
	joined bool
}

// DialRedisRoom connects to Redis and returns an unjoined room.
func DialRedisRoom(ctx context.Context, redisURL, room string) (*RedisRoom, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisRoom(client, room), nil
}

// NewRedisRoom wraps an existing client. The caller keeps ownership of
// the client's lifecycle unless the room was dialed.
func NewRedisRoom(client *redis.Client, room string) *RedisRoom {
	return &RedisRoom{
		client: client,
		room:   room,
		msgs:   make(chan Message, 256),
	}
}

func (r *RedisRoom) channel(kind models.Kind) string {
	return channelPrefix + ":" + r.room + ":" + string(kind)
}

// Join subscribes to every typed channel and starts the receive pump.
func (r *RedisRoom) Join(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.joined {
		return nil
	}

	channels := make([]string, len(models.AllKinds))
	for i, kind := range models.AllKinds {
		channels[i] = r.channel(kind)
	}
	r.sub = r.client.Subscribe(ctx, channels...)
	if _, err := r.sub.Receive(ctx); err != nil {
		r.sub.Close()
		r.sub = nil
		return fmt.Errorf("failed to join room %q: %w", r.room, err)
	}
	r.joined = true

	go r.pump()
	return nil
}

// pump forwards subscription traffic until the subscription closes.
func (r *RedisRoom) pump() {
	defer close(r.msgs)
	for msg := range r.sub.Channel() {
		idx := strings.LastIndexByte(msg.Channel, ':')
		if idx < 0 {
			continue
		}
		m := Message{
			Kind: models.Kind(msg.Channel[idx+1:]),
			Data: []byte(msg.Payload),
		}
		select {
		case r.msgs <- m:
		default: // backlogged consumer; fire-and-forget transport drops
		}
	}
}

func (r *RedisRoom) Publish(ctx context.Context, kind models.Kind, data []byte) error {
	if err := r.client.Publish(ctx, r.channel(kind), data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	return nil
}

func (r *RedisRoom) Messages() <-chan Message { return r.msgs }

// PeerCount reads the subscriber count of the presence channel from the
// transport itself. Every joined peer subscribes to every channel, so any
// one channel's registry is the room's registry.
func (r *RedisRoom) PeerCount(ctx context.Context) (int, error) {
	counts, err := r.client.PubSubNumSub(ctx, r.channel(models.KindPresence)).Result()
	if err != nil {
		return 0, fmt.Errorf("peer count: %w", err)
	}
	return int(counts[r.channel(models.KindPresence)]), nil
}

func (r *RedisRoom) Leave() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.joined {
		return nil
	}
	r.joined = false
	return r.sub.Close()
}

// Close leaves the room and closes the underlying client.
func (r *RedisRoom) Close() error {
	err := r.Leave()
	if cerr := r.client.Close(); err == nil {
		err = cerr
	}
	return err
}
