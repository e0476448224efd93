package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/repository"

	"github.com/redis/go-redis/v9"
)

// CartStore 购物车持久化槽位
//
// 每个购物车令牌对应一个槽位，内容为 CartLine 的 JSON 数组。
// 槽位缺失或无法解析时返回空购物车。
type CartStore interface {
	Load(ctx context.Context, token string) (*cart.Cart, error)
	Save(ctx context.Context, token string, c *cart.Cart) error
	Delete(ctx context.Context, token string) error
}

// RedisCartStore 基于 Redis 的购物车槽位
type RedisCartStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCartStore 创建 Redis 购物车槽位
func NewRedisCartStore(client *redis.Client, prefix string, ttl time.Duration) *RedisCartStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = constants.RedisPrefixDefault
	}
	return &RedisCartStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisCartStore) key(token string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, constants.CartKeyPrefix, token)
}

// Load 读取购物车
func (s *RedisCartStore) Load(ctx context.Context, token string) (*cart.Cart, error) {
	raw, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return decodeCartSlot(token, raw), nil
}

// Save 整体写入购物车并刷新过期时间
func (s *RedisCartStore) Save(ctx context.Context, token string, c *cart.Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key(token), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Delete 删除购物车
func (s *RedisCartStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}

// DBCartStore 基于数据库的购物车槽位（Redis 未启用时使用）
type DBCartStore struct {
	repo repository.CartSlotRepository
}

// NewDBCartStore 创建数据库购物车槽位
func NewDBCartStore(repo repository.CartSlotRepository) *DBCartStore {
	return &DBCartStore{repo: repo}
}

// Load 读取购物车
func (s *DBCartStore) Load(_ context.Context, token string) (*cart.Cart, error) {
	slot, err := s.repo.Get(token)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if slot == nil {
		return cart.New(), nil
	}
	return decodeCartSlot(token, []byte(slot.Payload)), nil
}

// Save 整体写入购物车
func (s *DBCartStore) Save(_ context.Context, token string, c *cart.Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.repo.Put(token, string(payload)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Delete 删除购物车
func (s *DBCartStore) Delete(_ context.Context, token string) error {
	return s.repo.Delete(token)
}

func decodeCartSlot(token string, raw []byte) *cart.Cart {
	restored := cart.New()
	if len(raw) == 0 {
		return restored
	}
	if err := json.Unmarshal(raw, restored); err != nil {
		logger.Warnw("cart_slot_decode_failed_fallback_empty", "cart_token", token, "error", err)
		return cart.New()
	}
	return restored
}
