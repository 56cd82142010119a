package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jewelrystore/internal/config"
	"jewelrystore/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// セッションIDごとのカートをRedisにJSONで置く
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

// 無い・期限切れなら空のカート
func (s *RedisCartStore) Get(ctx context.Context, sessionID string) (model.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NewCart(), nil
	}
	if err != nil {
		return model.Cart{}, fmt.Errorf("redis get failed: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return model.Cart{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if cart.Items == nil {
		cart.Items = map[int64]int64{}
	}
	return cart, nil
}

// 保存のたびにTTLを延ばす（セッションが生きている間だけ残る）
func (s *RedisCartStore) Save(ctx context.Context, sessionID string, cart model.Cart) error {
	if cart.IsEmpty() {
		return s.Delete(ctx, sessionID)
	}

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
