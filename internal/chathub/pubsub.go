package chathub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Backbone is the publish/subscribe broker that fans a room's messages out
// across relay processes that do not share memory. Delivery is at-least-once
// to the subscribers current at publish time; within one topic the broker
// preserves publish order to each subscriber.
type Backbone interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

// Subscription is one live topic subscription. Messages is closed after
// Close returns; Close must unblock a pending receive.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// RedisBackbone implements Backbone over Redis Pub/Sub.
type RedisBackbone struct {
	rdb *redis.Client
}

// NewRedisBackbone wraps an open Redis client.
func NewRedisBackbone(rdb *redis.Client) *RedisBackbone {
	return &RedisBackbone{rdb: rdb}
}

// Publish sends the payload to every current subscriber of the topic.
func (b *RedisBackbone) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.rdb.Publish(ctx, topic, payload).Err()
}

// Subscribe opens a subscription and waits for Redis to confirm it, so a
// publish issued after Subscribe returns is guaranteed to reach it.
func (b *RedisBackbone) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	ps := b.rdb.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	sub := &redisSubscription{
		ps:   ps,
		msgs: make(chan []byte),
		done: make(chan struct{}),
	}
	go sub.forward()
	return sub, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	msgs chan []byte
	done chan struct{}
}

func (s *redisSubscription) Messages() <-chan []byte { return s.msgs }

// Close unsubscribes and releases the forwarding goroutine even when nobody
// is draining Messages anymore.
func (s *redisSubscription) Close() error {
	close(s.done)
	return s.ps.Close()
}

func (s *redisSubscription) forward() {
	defer close(s.msgs)
	ch := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			select {
			case s.msgs <- []byte(m.Payload):
			case <-s.done:
				return
			}
		}
	}
}
