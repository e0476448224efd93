package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// AnalyticsItem 埋点商品行
type AnalyticsItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// AnalyticsEvent 埋点事件
type AnalyticsEvent struct {
	Name       string          `json:"name"`
	CartToken  string          `json:"cart_token,omitempty"`
	OrderID    string          `json:"order_id,omitempty"`
	Value      decimal.Decimal `json:"value"`
	Currency   string          `json:"currency,omitempty"`
	Items      []AnalyticsItem `json:"items,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

func (e AnalyticsEvent) partitionKey() string {
	if e.OrderID != "" {
		return e.OrderID
	}
	return e.CartToken
}

// AnalyticsPublisher 埋点发布，不返回错误，调用方不应等待结果
type AnalyticsPublisher interface {
	Publish(ctx context.Context, event AnalyticsEvent)
	Close() error
}

// NewAnalyticsPublisher 根据配置选择 Kafka 或日志发布
func NewAnalyticsPublisher(cfg config.AnalyticsConfig) AnalyticsPublisher {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, broker := range cfg.Brokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	if !cfg.Enabled || len(brokers) == 0 {
		return LogAnalyticsPublisher{}
	}
	return NewKafkaAnalyticsPublisher(brokers, cfg.Topic)
}

// KafkaAnalyticsPublisher 异步写入 Kafka
type KafkaAnalyticsPublisher struct {
	writer *kafka.Writer
}

// NewKafkaAnalyticsPublisher 创建 Kafka 发布者
func NewKafkaAnalyticsPublisher(brokers []string, topic string) *KafkaAnalyticsPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		BatchTimeout:           200 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnw("analytics_kafka_write_failed", "messages", len(messages), "error", err)
			}
		},
	}
	return &KafkaAnalyticsPublisher{writer: writer}
}

// Publish 投递事件
func (p *KafkaAnalyticsPublisher) Publish(ctx context.Context, event AnalyticsEvent) {
	if p == nil || p.writer == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	body, err := json.Marshal(event)
	if err != nil {
		logger.Warnw("analytics_event_encode_failed", "event", event.Name, "error", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(event.partitionKey()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event.Name)},
		},
	}
	if err := p.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		logger.Warnw("analytics_event_publish_failed", "event", event.Name, "error", err)
	}
}

// Close 刷新并关闭 writer
func (p *KafkaAnalyticsPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// LogAnalyticsPublisher 未配置 Kafka 时仅输出 debug 日志
type LogAnalyticsPublisher struct{}

// Publish 输出事件日志
func (LogAnalyticsPublisher) Publish(_ context.Context, event AnalyticsEvent) {
	logger.Debugw("analytics_event",
		"event", event.Name,
		"order_id", event.OrderID,
		"cart_token", event.CartToken,
		"value", event.Value.StringFixed(2),
		"currency", event.Currency,
		"items", len(event.Items),
	)
}

// Close 无操作
func (LogAnalyticsPublisher) Close() error { return nil }

func analyticsItemsFromLines(lines []cart.Line) []AnalyticsItem {
	items := make([]AnalyticsItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, AnalyticsItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return items
}
