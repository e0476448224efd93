package queue

import (
	"context"
	"testing"

	"github.com/storefront-next/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.EnqueueOrderStatusEmail(context.Background(), OrderStatusEmailPayload{OrderID: "o1", Status: "paid"}))
	assert.NoError(t, client.Close())

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
}

func TestEnqueueOrderStatusEmailDeduplicates(t *testing.T) {
	mr := miniredis.RunT(t)
	opt := asynq.RedisClientOpt{Addr: mr.Addr()}
	client := NewClientFromRedisOpt(opt, 0)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	payload := OrderStatusEmailPayload{OrderID: "order-1", Status: "shipped"}
	require.NoError(t, client.EnqueueOrderStatusEmail(ctx, payload))
	require.NoError(t, client.EnqueueOrderStatusEmail(ctx, payload))
	require.NoError(t, client.EnqueueOrderStatusEmail(ctx, OrderStatusEmailPayload{OrderID: "order-1", Status: "delivered"}))

	pending, err := mr.List("asynq:{" + DefaultQueue + "}:pending")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		OrderStatusTaskID("order-1", "shipped"),
		OrderStatusTaskID("order-1", "delivered"),
	}, pending)
	assert.True(t, mr.Exists("asynq:{"+DefaultQueue+"}:t:"+OrderStatusTaskID("order-1", "shipped")))
}

func TestBuildServerConfig(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2, Concurrency: -1})
	assert.Equal(t, "redis:6380", opt.Addr)
	assert.Equal(t, 2, opt.DB)
	assert.Equal(t, defaultConcurrency, cfg.Concurrency)
	assert.Equal(t, map[string]int{CriticalQueue: 2, DefaultQueue: 1}, cfg.Queues)

	opt, cfg = BuildServerConfig(nil)
	assert.Equal(t, "127.0.0.1:6379", opt.Addr)
	assert.Equal(t, defaultConcurrency, cfg.Concurrency)
}
