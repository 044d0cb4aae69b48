package alerthub

import (
	"context"
	"encoding/json"

	"complaintdesk/dashboard/internal/models"

	"github.com/redis/go-redis/v9"
)

// Subscriber opens the shared alert channel.
type Subscriber interface {
	SubscribeAlerts(ctx context.Context) *redis.PubSub
}

// StartPubSubListener relays alerts published by any instance to the local
// dashboards until ctx ends.
func (m *Manager) StartPubSubListener(ctx context.Context, sub Subscriber) {
	pubsub := sub.SubscribeAlerts(ctx)
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				m.handlePayload(ctx, msg.Payload)
			}
		}
	}()
}

func (m *Manager) handlePayload(ctx context.Context, payload string) {
	var alert models.AlertMessage
	if err := json.Unmarshal([]byte(payload), &alert); err != nil {
		m.log.WithError(err).Warn("malformed alert on pub/sub channel")
		return
	}
	if alert.Profile == "" {
		return
	}
	if err := m.Broadcast(ctx, alert); err != nil {
		m.log.WithError(err).Debug("alert dropped")
	}
}
