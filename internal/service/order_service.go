package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/google/uuid"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo      repository.OrderRepository
	cartService    *CartService
	settingService *SettingService
	notifier       NotificationDispatcher
	analytics      AnalyticsPublisher
	now            func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, cartService *CartService, settingService *SettingService, notifier NotificationDispatcher, analytics AnalyticsPublisher) *OrderService {
	if analytics == nil {
		analytics = LogAnalyticsPublisher{}
	}
	return &OrderService{
		orderRepo:      orderRepo,
		cartService:    cartService,
		settingService: settingService,
		notifier:       notifier,
		analytics:      analytics,
		now:            time.Now,
	}
}

// SubmitOrderInput 提交订单参数
type SubmitOrderInput struct {
	OrderID  string
	Customer models.CustomerInfo
	ClientIP string
	Locale   string
}

// SubmitOrderResult 提交订单结果
type SubmitOrderResult struct {
	OrderID  string        `json:"order_id"`
	Order    *models.Order `json:"order"`
	Replayed bool          `json:"replayed"`
}

// Submit 由购物车生成订单
//
// 订单落库成功后才投递通知、上报埋点、清空购物车；
// 这三步的失败只记录日志，不影响下单结果。
// 落库失败时购物车保持不变。
func (s *OrderService) Submit(ctx context.Context, token string, input SubmitOrderInput) (*SubmitOrderResult, error) {
	customer, err := normalizeCustomerInfo(input.Customer)
	if err != nil {
		return nil, err
	}
	orderID, clientSupplied, err := resolveOrderID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if clientSupplied {
		if result, err := s.replayExisting(orderID, customer.Email); result != nil || err != nil {
			return result, err
		}
	}

	current, err := s.cartService.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		return nil, ErrCartEmpty
	}

	settings, err := s.settingService.GetShopSettings()
	if err != nil {
		logger.Warnw("order_shop_settings_load_failed_use_defaults", "error", err)
	}
	lines := current.Lines()
	subtotal := current.Total()
	shipping, total := settings.ShippingPolicy().Quote(subtotal)

	order := &models.Order{
		ID:             orderID,
		CustomerEmail:  customer.Email,
		Customer:       customer,
		LineItems:      buildLineItemSnapshots(lines),
		Status:         constants.OrderStatusOnHold,
		Currency:       settings.Currency,
		SubtotalAmount: models.NewMoneyFromDecimal(subtotal),
		ShippingCost:   models.NewMoneyFromDecimal(shipping),
		TotalAmount:    models.NewMoneyFromDecimal(total),
		ClientIP:       strings.TrimSpace(input.ClientIP),
		CreatedAt:      s.now(),
	}
	if err := s.orderRepo.Create(order, buildOrderItems(lines)); err != nil {
		if clientSupplied {
			// 并发重复提交：另一请求已写入同一订单
			if result, lookupErr := s.replayExisting(orderID, customer.Email); result != nil && lookupErr == nil {
				return result, nil
			}
		}
		logger.Errorw("order_create_failed", "order_id", orderID, "cart_token", token, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}

	s.notifier.Dispatch(ctx, BuildOrderConfirmationRequest(order, input.Locale))
	if settings.AdminAlertEmail != "" {
		s.notifier.Dispatch(ctx, BuildAdminOrderAlertRequest(order, settings.AdminAlertEmail, ""))
	}

	s.publishCheckoutEvents(ctx, token, order, lines)

	if err := s.cartService.Clear(ctx, token); err != nil {
		logger.Warnw("order_cart_clear_failed", "order_id", order.ID, "cart_token", token, "error", err)
	}

	return &SubmitOrderResult{OrderID: order.ID, Order: order}, nil
}

// ConfirmationPath 下单成功后的跳转地址
func ConfirmationPath(orderID string) string {
	return "/order-confirmation/" + orderID
}

func (s *OrderService) replayExisting(orderID, email string) (*SubmitOrderResult, error) {
	existing, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	if !strings.EqualFold(existing.CustomerEmail, email) {
		return nil, ErrOrderIDInvalid
	}
	logger.Infow("order_submit_replayed", "order_id", orderID)
	return &SubmitOrderResult{OrderID: existing.ID, Order: existing, Replayed: true}, nil
}

func (s *OrderService) publishCheckoutEvents(ctx context.Context, token string, order *models.Order, lines []cart.Line) {
	items := analyticsItemsFromLines(lines)
	occurredAt := s.now()
	for _, name := range []string{constants.AnalyticsEventBeginCheckout, constants.AnalyticsEventPurchase} {
		s.analytics.Publish(ctx, AnalyticsEvent{
			Name:       name,
			CartToken:  token,
			OrderID:    order.ID,
			Value:      order.TotalAmount.Decimal,
			Currency:   order.Currency,
			Items:      items,
			OccurredAt: occurredAt,
		})
	}
}

// resolveOrderID 返回订单 ID 以及是否由客户端提供
func resolveOrderID(raw string) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.NewString(), false, nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return "", false, ErrOrderIDInvalid
	}
	return parsed.String(), true, nil
}

func normalizeCustomerInfo(in models.CustomerInfo) (models.CustomerInfo, error) {
	out := models.CustomerInfo{
		Email:        strings.TrimSpace(in.Email),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		AddressLine1: strings.TrimSpace(in.AddressLine1),
		AddressLine2: strings.TrimSpace(in.AddressLine2),
		City:         strings.TrimSpace(in.City),
		PostalCode:   strings.TrimSpace(in.PostalCode),
		Country:      strings.TrimSpace(in.Country),
		Notes:        strings.TrimSpace(in.Notes),
	}
	required := []struct {
		field string
		value string
	}{
		{"email", out.Email},
		{"first_name", out.FirstName},
		{"last_name", out.LastName},
		{"address_line1", out.AddressLine1},
		{"city", out.City},
		{"postal_code", out.PostalCode},
		{"country", out.Country},
	}
	for _, item := range required {
		if item.value == "" {
			return models.CustomerInfo{}, fmt.Errorf("%w: %s is required", ErrCustomerInvalid, item.field)
		}
	}
	parsed, err := mail.ParseAddress(out.Email)
	if err != nil || parsed.Address != out.Email {
		return models.CustomerInfo{}, fmt.Errorf("%w: email", ErrCustomerInvalid)
	}
	return out, nil
}

func buildLineItemSnapshots(lines []cart.Line) models.LineItemSnapshots {
	snapshots := make(models.LineItemSnapshots, 0, len(lines))
	for _, line := range lines {
		snapshots = append(snapshots, models.LineItemSnapshot{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Name:      line.Name,
			SizeLabel: line.SizeLabel,
			UnitPrice: models.NewMoneyFromDecimal(line.UnitPrice),
			Quantity:  line.Quantity,
			ImageURL:  line.ImageURL,
		})
	}
	return snapshots
}

func buildOrderItems(lines []cart.Line) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:  line.ProductID,
			VariantID:  line.VariantID,
			Name:       line.Name,
			SizeLabel:  line.SizeLabel,
			UnitPrice:  models.NewMoneyFromDecimal(line.UnitPrice),
			Quantity:   line.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(line.Subtotal()),
		})
	}
	return items
}
