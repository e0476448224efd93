package cache

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

type backend struct {
	client *redis.Client
	prefix string
}

// current 为 nil 表示缓存未启用，所有读写退化为空操作
var current atomic.Pointer[backend]

// InitRedis 按配置连接 Redis，连不上时返回错误并保持禁用
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		current.Store(nil)
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cmp.Or(strings.TrimSpace(cfg.Host), "127.0.0.1"), cmp.Or(max(cfg.Port, 0), 6379)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		current.Store(nil)
		return fmt.Errorf("ping redis: %w", err)
	}
	UseClient(client, cfg.Prefix)
	return nil
}

// UseClient 直接接入已有客户端，client 为 nil 时禁用缓存
func UseClient(client *redis.Client, prefix string) {
	if client == nil {
		current.Store(nil)
		return
	}
	current.Store(&backend{
		client: client,
		prefix: cmp.Or(strings.TrimSpace(prefix), constants.RedisPrefixDefault),
	})
}

// Close 关闭客户端并禁用缓存
func Close() error {
	if b := current.Swap(nil); b != nil {
		return b.client.Close()
	}
	return nil
}

// Enabled 缓存是否可用
func Enabled() bool {
	return current.Load() != nil
}

// Client 返回底层客户端，未启用时为 nil
func Client() *redis.Client {
	if b := current.Load(); b != nil {
		return b.client
	}
	return nil
}

// Prefix 键前缀
func Prefix() string {
	if b := current.Load(); b != nil {
		return b.prefix
	}
	return constants.RedisPrefixDefault
}

// BuildKey 拼接带前缀的键
func BuildKey(key string) string {
	if key = strings.TrimSpace(key); key == "" {
		return Prefix()
	}
	return Prefix() + ":" + key
}

// GetJSON 读取 JSON 缓存，返回是否命中
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	b := current.Load()
	if b == nil {
		return false, nil
	}
	raw, err := b.client.Get(ctx, BuildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	b := current.Load()
	if b == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, BuildKey(key), payload, ttl).Err()
}

// SetNX 仅在键不存在时写入，缓存未启用时视为写入成功
func SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	b := current.Load()
	if b == nil {
		return true, nil
	}
	return b.client.SetNX(ctx, BuildKey(key), value, ttl).Result()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	b := current.Load()
	if b == nil {
		return nil
	}
	return b.client.Del(ctx, BuildKey(key)).Err()
}
