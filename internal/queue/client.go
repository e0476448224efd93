package queue

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 客户通知走高优先级队列
	CriticalQueue = constants.QueueCritical

	defaultMaxRetry    = 5
	defaultConcurrency = 10
)

// Client asynq 客户端封装，未启用时所有投递都是空操作
type Client struct {
	client   *asynq.Client
	maxRetry int
}

// NewClient 按配置创建客户端，队列未启用时返回禁用状态的客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return NewClientFromRedisOpt(buildRedisOpt(cfg), cfg.MaxRetry), nil
}

// NewClientFromRedisOpt 使用给定 Redis 连接创建客户端
func NewClientFromRedisOpt(opt asynq.RedisClientOpt, maxRetry int) *Client {
	if maxRetry <= 0 {
		maxRetry = defaultMaxRetry
	}
	return &Client{client: asynq.NewClient(opt), maxRetry: maxRetry}
}

// Enabled 是否可投递
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueNotificationDispatch 投递通知邮件任务
func (c *Client) EnqueueNotificationDispatch(ctx context.Context, payload NotificationDispatchPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewNotificationDispatchTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, CriticalQueue, opts)
}

// EnqueueOrderStatusEmail 投递订单状态邮件任务，同一订单同一状态在队列中只保留一个
func (c *Client) EnqueueOrderStatusEmail(ctx context.Context, payload OrderStatusEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewOrderStatusEmailTask(payload)
	if err != nil {
		return err
	}
	opts = append([]asynq.Option{asynq.TaskID(OrderStatusTaskID(payload.OrderID, payload.Status))}, opts...)
	err = c.enqueue(ctx, task, DefaultQueue, opts)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, queueName string, opts []asynq.Option) error {
	options := append([]asynq.Option{asynq.Queue(queueName), asynq.MaxRetry(c.maxRetry)}, opts...)
	_, err := c.client.EnqueueContext(ctx, task, options...)
	return err
}

// OrderStatusTaskID 订单状态邮件任务 ID
func OrderStatusTaskID(orderID, status string) string {
	return "order-status:" + orderID + ":" + status
}

// BuildServerConfig 生成 worker 端配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{CriticalQueue: 2, DefaultQueue: 1},
	}
	if cfg != nil {
		serverCfg.Concurrency = cmp.Or(max(cfg.Concurrency, 0), defaultConcurrency)
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return buildRedisOpt(cfg), serverCfg
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	if cfg == nil {
		return asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	}
	host := cmp.Or(strings.TrimSpace(cfg.Host), "127.0.0.1")
	port := cmp.Or(max(cfg.Port, 0), 6379)
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
