package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cerdowizard/node-wallet/internal/ledger"
)

// RedisPublisher fans events out over a Redis pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher constructs a publisher on channel, or DefaultChannel when empty.
func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// Publish sends the event to the channel.
func (p *RedisPublisher) Publish(ctx context.Context, tx ledger.Transaction) error {
	payload, err := encode(tx)
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

var _ ledger.Publisher = (*RedisPublisher)(nil)
