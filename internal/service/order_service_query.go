package service

import (
	"strings"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/google/uuid"
)

// GetForCustomer 按订单号与下单邮箱查询（订单确认页）
func (s *OrderService) GetForCustomer(orderID, email string) (*models.Order, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(orderID))
	if err != nil {
		return nil, ErrOrderNotFound
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByIDAndEmail(parsed.String(), email)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetAdmin 管理端获取订单详情
func (s *OrderService) GetAdmin(orderID string) (*models.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	filter.CustomerEmail = strings.TrimSpace(filter.CustomerEmail)
	return s.orderRepo.ListAdmin(filter)
}
