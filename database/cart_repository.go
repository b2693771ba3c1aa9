package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yashrajoria/storefront/models"

	"github.com/redis/go-redis/v9"
)

type cartRecord struct {
	UserID    int64             `json:"userId"`
	Items     []models.CartItem `json:"items"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// CartRepository keeps one cart snapshot per user.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *CartRepository) getKey(userID int64) string {
	return fmt.Sprintf("storefront:cart:user:%d", userID)
}

// LoadCart returns nil items and no error when no snapshot exists.
func (r *CartRepository) LoadCart(ctx context.Context, userID int64) ([]models.CartItem, error) {
	data, err := r.client.Get(ctx, r.getKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record cartRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return record.Items, nil
}

func (r *CartRepository) SaveCart(ctx context.Context, userID int64, items []models.CartItem) error {
	data, err := json.Marshal(cartRecord{
		UserID:    userID,
		Items:     items,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.getKey(userID), data, r.ttl).Err()
}

func (r *CartRepository) DeleteCart(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, r.getKey(userID)).Err()
}
