package redis

import (
	"context"
	"fmt"

	"auction-house/internal/domain"

	"github.com/go-redis/redis/v8"
)

// RedisStateCache mirrors auction status for cheap read paths. The MySQL row
// stays authoritative; cache writes are best effort.
type RedisStateCache struct {
	client *redis.Client
}

func NewStateCache(client *redis.Client) *RedisStateCache {
	return &RedisStateCache{client: client}
}

func (r *RedisStateCache) SetStatus(ctx context.Context, auctionID string, status domain.AuctionStatus) error {
	key := fmt.Sprintf("auction:%s:status", auctionID)
	return r.client.Set(ctx, key, string(status), 0).Err()
}

func (r *RedisStateCache) GetStatus(ctx context.Context, auctionID string) (domain.AuctionStatus, bool, error) {
	key := fmt.Sprintf("auction:%s:status", auctionID)

	result, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}

	return domain.AuctionStatus(result), true, nil
}
