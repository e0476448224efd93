package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/service"

	"github.com/hibiken/asynq"
)

// 同一订单同一状态的邮件去重窗口
const orderStatusEmailDedupeTTL = 24 * time.Hour

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNotificationDispatch, c.handleNotificationDispatch)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
}

func (c *Consumer) handleNotificationDispatch(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_notification_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NotificationDispatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_notification_unmarshal_failed", "error", err)
		return err
	}
	var req service.NotificationRequest
	if err := json.Unmarshal(payload.Request, &req); err != nil {
		logger.Warnw("worker_notification_request_invalid", "kind", payload.Kind, "order_id", payload.OrderID, "error", err)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_notification_skip_service_nil", "kind", payload.Kind, "order_id", payload.OrderID)
		return nil
	}
	if err := c.NotificationService.Send(ctx, req); err != nil {
		if isPermanentNotificationError(err) {
			logger.Warnw("worker_notification_dropped",
				"kind", payload.Kind,
				"order_id", payload.OrderID,
				"error", err,
			)
			return nil
		}
		logger.Warnw("worker_notification_send_failed",
			"kind", payload.Kind,
			"order_id", payload.OrderID,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderStatusEmail(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return err
	}
	payload.OrderID = strings.TrimSpace(payload.OrderID)
	if payload.OrderID == "" {
		logger.Debugw("worker_order_status_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_status_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_status_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_order_status_email_skip_service_nil", "order_id", order.ID)
		return nil
	}
	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = order.Status
	}

	dedupeKey := orderStatusEmailDedupeKey(order.ID, status)
	acquired, err := cache.SetNX(ctx, dedupeKey, "1", orderStatusEmailDedupeTTL)
	if err != nil {
		logger.Warnw("worker_order_status_email_dedupe_failed", "order_id", order.ID, "status", status, "error", err)
	} else if !acquired {
		logger.Debugw("worker_order_status_email_skip_duplicate", "order_id", order.ID, "status", status)
		return nil
	}

	snapshot := *order
	snapshot.Status = status
	if err := c.NotificationService.Send(ctx, service.BuildOrderStatusRequest(&snapshot, payload.Locale)); err != nil {
		if isPermanentNotificationError(err) {
			logger.Warnw("worker_order_status_email_dropped", "order_id", order.ID, "status", status, "error", err)
			return nil
		}
		if delErr := cache.Del(ctx, dedupeKey); delErr != nil {
			logger.Debugw("worker_order_status_email_dedupe_release_failed", "order_id", order.ID, "error", delErr)
		}
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", order.ID,
			"receiver_email", order.CustomerEmail,
			"status", status,
			"error", err,
		)
		return err
	}
	return nil
}

func orderStatusEmailDedupeKey(orderID, status string) string {
	return fmt.Sprintf("notification:order_status:%s:%s", orderID, status)
}

// isPermanentNotificationError 重试也无法成功的错误
func isPermanentNotificationError(err error) bool {
	switch {
	case errors.Is(err, service.ErrNotificationInvalid),
		errors.Is(err, service.ErrNotificationTemplate),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrEmailRecipientRejected),
		errors.Is(err, service.ErrEmailServiceDisabled):
		return true
	default:
		return false
	}
}
