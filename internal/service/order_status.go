package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// 订单状态线性流转：on_hold -> paid -> shipped -> delivered
var orderStatusFlow = []string{
	constants.OrderStatusOnHold,
	constants.OrderStatusPaid,
	constants.OrderStatusShipped,
	constants.OrderStatusDelivered,
}

func isKnownOrderStatus(status string) bool {
	for _, item := range orderStatusFlow {
		if item == status {
			return true
		}
	}
	return false
}

func nextOrderStatus(status string) (string, bool) {
	for i, item := range orderStatusFlow {
		if item == status && i+1 < len(orderStatusFlow) {
			return orderStatusFlow[i+1], true
		}
	}
	return "", false
}

func canTransitOrderStatus(from, to string) bool {
	next, ok := nextOrderStatus(from)
	return ok && next == to
}

// UpdateStatus 管理员更新订单状态（仅允许前进一步，后写覆盖）
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, target string) (*models.Order, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	if !isKnownOrderStatus(target) {
		return nil, ErrOrderStatusInvalid
	}
	order, err := s.GetAdmin(orderID)
	if err != nil {
		return nil, err
	}
	return s.transitOrder(ctx, order, target)
}

// AdvanceStatus 推进到下一状态
func (s *OrderService) AdvanceStatus(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.GetAdmin(orderID)
	if err != nil {
		return nil, err
	}
	next, ok := nextOrderStatus(order.Status)
	if !ok {
		return nil, ErrOrderStatusInvalid
	}
	return s.transitOrder(ctx, order, next)
}

func (s *OrderService) transitOrder(ctx context.Context, order *models.Order, target string) (*models.Order, error) {
	if !canTransitOrderStatus(order.Status, target) {
		return nil, ErrOrderStatusInvalid
	}
	now := s.now()
	updates := map[string]interface{}{
		"updated_at": now,
	}
	switch target {
	case constants.OrderStatusPaid:
		updates["paid_at"] = now
		order.PaidAt = &now
	case constants.OrderStatusShipped:
		updates["shipped_at"] = now
		order.ShippedAt = &now
	case constants.OrderStatusDelivered:
		updates["delivered_at"] = now
		order.DeliveredAt = &now
	}
	if err := s.orderRepo.UpdateStatus(order.ID, target, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Errorw("order_status_update_failed", "order_id", order.ID, "from", order.Status, "to", target, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	logger.Infow("order_status_updated", "order_id", order.ID, "from", order.Status, "to", target)
	order.Status = target
	order.UpdatedAt = now

	s.notifier.DispatchOrderStatus(ctx, order)
	return order, nil
}
