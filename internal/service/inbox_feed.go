package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"github.com/redis/go-redis/v9"
)

const defaultInboxFeedSize = 200

// InboxFeed 站内信实时列表
//
// 订阅 Redis 频道，按送达顺序追加到有界内存列表；
// 超出容量时丢弃最旧的消息。订阅异常只记录 debug 日志，
// 断线重连由 go-redis 负责。未启用 Redis 时由 Publish 直接追加。
type InboxFeed struct {
	client  *redis.Client
	channel string
	size    int

	mu          sync.RWMutex
	items       []models.InboxMessage
	subscribers map[chan models.InboxMessage]struct{}

	stopMu sync.Mutex
	stop   context.CancelFunc
}

// NewInboxFeed 创建实时列表，client 为 nil 时退化为进程内列表
func NewInboxFeed(client *redis.Client, channel string, size int) *InboxFeed {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = constants.RedisPrefixDefault + ":" + constants.InboxChannelDefault
	}
	if size <= 0 {
		size = defaultInboxFeedSize
	}
	return &InboxFeed{
		client:      client,
		channel:     channel,
		size:        size,
		subscribers: make(map[chan models.InboxMessage]struct{}),
	}
}

// Name 服务名称
func (f *InboxFeed) Name() string {
	return "inbox_feed"
}

// Start 订阅频道直到 ctx 结束
func (f *InboxFeed) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	f.stopMu.Lock()
	f.stop = cancel
	f.stopMu.Unlock()
	defer cancel()

	if f.client == nil {
		<-ctx.Done()
		return nil
	}

	pubsub := f.client.Subscribe(ctx, f.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var message models.InboxMessage
			if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
				logger.Debugw("inbox_feed_decode_failed", "channel", f.channel, "error", err)
				continue
			}
			f.append(message)
		}
	}
}

// Stop 停止订阅
func (f *InboxFeed) Stop(_ context.Context) error {
	f.stopMu.Lock()
	defer f.stopMu.Unlock()
	if f.stop != nil {
		f.stop()
	}
	return nil
}

// Publish 发布一条消息
func (f *InboxFeed) Publish(ctx context.Context, message models.InboxMessage) {
	if f.client == nil {
		f.append(message)
		return
	}
	body, err := json.Marshal(message)
	if err != nil {
		logger.Debugw("inbox_feed_encode_failed", "message_id", message.ID, "error", err)
		return
	}
	if err := f.client.Publish(ctx, f.channel, body).Err(); err != nil {
		logger.Debugw("inbox_feed_publish_failed", "message_id", message.ID, "error", err)
	}
}

// Snapshot 返回当前列表副本（按送达顺序）
func (f *InboxFeed) Snapshot() []models.InboxMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]models.InboxMessage, len(f.items))
	copy(out, f.items)
	return out
}

// Subscribe 订阅新消息，返回的 cancel 必须调用
func (f *InboxFeed) Subscribe() (<-chan models.InboxMessage, func()) {
	ch := make(chan models.InboxMessage, 16)
	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, ch)
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (f *InboxFeed) append(message models.InboxMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, message)
	if overflow := len(f.items) - f.size; overflow > 0 {
		f.items = append([]models.InboxMessage(nil), f.items[overflow:]...)
	}
	for ch := range f.subscribers {
		select {
		case ch <- message:
		default:
			// 慢订阅者丢弃本条
		}
	}
}
