package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
)

// NotificationDispatcher 非阻塞通知投递，调用方不等待结果
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, req NotificationRequest)
	DispatchOrderStatus(ctx context.Context, order *models.Order)
}

// NotificationQueue 队列启用时入队 asynq 任务，否则在后台 goroutine 中直接发送
type NotificationQueue struct {
	client  *queue.Client
	service *NotificationService
	locale  string
	wg      sync.WaitGroup
}

// NewNotificationQueue 创建通知投递队列
func NewNotificationQueue(client *queue.Client, service *NotificationService) *NotificationQueue {
	return &NotificationQueue{
		client:  client,
		service: service,
		locale:  i18n.DefaultLocale,
	}
}

// Dispatch 投递通知，失败只记录日志
func (q *NotificationQueue) Dispatch(ctx context.Context, req NotificationRequest) {
	if q == nil {
		return
	}
	if req.Locale == "" {
		req.Locale = q.locale
	}
	if q.client.Enabled() {
		body, err := json.Marshal(req)
		if err != nil {
			logger.Warnw("notification_encode_failed", "kind", req.Kind(), "error", err)
			return
		}
		payload := queue.NotificationDispatchPayload{
			Kind:    req.Kind(),
			OrderID: notificationOrderID(req),
			Request: body,
		}
		if err := q.client.EnqueueNotificationDispatch(ctx, payload); err != nil {
			logger.Warnw("notification_enqueue_failed",
				"kind", payload.Kind,
				"order_id", payload.OrderID,
				"error", err,
			)
		}
		return
	}
	q.sendDetached(ctx, req)
}

// DispatchOrderStatus 投递订单状态邮件
func (q *NotificationQueue) DispatchOrderStatus(ctx context.Context, order *models.Order) {
	if q == nil || order == nil {
		return
	}
	if q.client.Enabled() {
		err := q.client.EnqueueOrderStatusEmail(ctx, queue.OrderStatusEmailPayload{
			OrderID: order.ID,
			Status:  order.Status,
			Locale:  q.locale,
		})
		if err != nil {
			logger.Warnw("order_status_email_enqueue_failed",
				"order_id", order.ID,
				"status", order.Status,
				"error", err,
			)
		}
		return
	}
	q.sendDetached(ctx, BuildOrderStatusRequest(order, q.locale))
}

// Wait 等待后台发送完成
func (q *NotificationQueue) Wait() {
	if q == nil {
		return
	}
	q.wg.Wait()
}

func (q *NotificationQueue) sendDetached(ctx context.Context, req NotificationRequest) {
	if q.service == nil {
		logger.Warnw("notification_skip_service_nil", "kind", req.Kind())
		return
	}
	detached := context.WithoutCancel(ctx)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := q.service.Send(detached, req); err != nil {
			logger.Warnw("notification_send_failed",
				"kind", req.Kind(),
				"order_id", notificationOrderID(req),
				"error", err,
			)
		}
	}()
}

func notificationOrderID(req NotificationRequest) string {
	if req.Data == nil {
		return ""
	}
	return req.Data.OrderID
}
