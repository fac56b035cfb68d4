// Package pubsub pushes committed notifications to per-user Redis channels.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/social-graph/internal/model"
)

// UserChannel is the channel a user's realtime client subscribes to.
func UserChannel(userID string) string {
	return fmt.Sprintf("notifications:user:%s", userID)
}

// Publisher is a no-op when built with a nil client.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) PublishNotification(ctx context.Context, n *model.Notification) error {
	if p == nil || p.rdb == nil || n == nil {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return p.rdb.Publish(ctx, UserChannel(n.RecipientID), payload).Err()
}

// Subscribe opens a subscription to userID's channel. The caller closes it.
func (p *Publisher) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Subscribe(ctx, UserChannel(userID))
}
