package redis

import (
	"context"
	"encoding/json"

	"auction-house/internal/domain"

	"github.com/go-redis/redis/v8"
)

const eventsChannel = "auction_events"

type EventPublisherImpl struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) *EventPublisherImpl {
	return &EventPublisherImpl{client: client}
}

func (r *EventPublisherImpl) Publish(ctx context.Context, event *domain.AuctionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, eventsChannel, data).Err()
}
