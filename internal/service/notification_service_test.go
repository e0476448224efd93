package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notificationTestOrder() *models.Order {
	customer := testCustomer()
	customer.FirstName = "<Jane>"
	return &models.Order{
		ID:            "0f8b1c2d-3e4f-4a5b-8c6d-7e8f9a0b1c2d",
		CustomerEmail: customer.Email,
		Customer:      customer,
		LineItems: models.LineItemSnapshots{
			{ProductID: "1", VariantID: "11", Name: "Amber Noir", SizeLabel: "10ml", UnitPrice: models.NewMoneyFromDecimal(decimal.RequireFromString("70.00")), Quantity: 2},
		},
		Status:         constants.OrderStatusOnHold,
		Currency:       "USD",
		SubtotalAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("140.00")),
		ShippingCost:   models.NewMoneyFromDecimal(decimal.RequireFromString("14.99")),
		TotalAmount:    models.NewMoneyFromDecimal(decimal.RequireFromString("154.99")),
	}
}

func TestRenderOrderConfirmation(t *testing.T) {
	svc := NewNotificationService(nil, config.ShopConfig{Name: "Maison Test", SiteURL: "https://shop.example.com"})
	order := notificationTestOrder()

	rendered, err := svc.Render(BuildOrderConfirmationRequest(order, "en-US"))
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", rendered.To)
	assert.Equal(t, "Order confirmation #"+order.ID, rendered.Subject)
	assert.Contains(t, rendered.HTML, "Maison Test")
	assert.Contains(t, rendered.HTML, "Amber Noir (10ml)")
	assert.Contains(t, rendered.HTML, "154.99 USD")
	assert.Contains(t, rendered.HTML, "12345 Springfield")
	// 客户输入需转义
	assert.NotContains(t, rendered.HTML, "<Jane>")
	assert.Contains(t, rendered.HTML, "&lt;Jane&gt;")
}

func TestRenderOrderConfirmationLocalized(t *testing.T) {
	svc := NewNotificationService(nil, config.ShopConfig{})
	order := notificationTestOrder()

	rendered, err := svc.Render(BuildOrderConfirmationRequest(order, "zh-CN"))
	require.NoError(t, err)
	assert.Equal(t, "订单确认 #"+order.ID, rendered.Subject)
	assert.Contains(t, rendered.HTML, defaultShopName)
	assert.Contains(t, rendered.HTML, `lang="zh-CN"`)
}

func TestRenderAdminAlertAndStatus(t *testing.T) {
	svc := NewNotificationService(nil, config.ShopConfig{Name: "Maison Test"})
	order := notificationTestOrder()

	alert, err := svc.Render(BuildAdminOrderAlertRequest(order, "ops@example.com", ""))
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", alert.To)
	assert.Contains(t, alert.Subject, order.ID)
	assert.Contains(t, alert.HTML, "jane@example.com")

	order.Status = constants.OrderStatusShipped
	status, err := svc.Render(BuildOrderStatusRequest(order, ""))
	require.NoError(t, err)
	assert.Equal(t, "Order #"+order.ID+" is now Shipped", status.Subject)
	assert.Contains(t, status.HTML, "Your order is on its way.")

	order.Status = "lost"
	_, err = svc.Render(BuildOrderStatusRequest(order, ""))
	assert.ErrorIs(t, err, ErrNotificationInvalid)
}

func TestRenderRejectsInvalidRequests(t *testing.T) {
	svc := NewNotificationService(nil, config.ShopConfig{})

	tests := []struct {
		name string
		req  NotificationRequest
		want error
	}{
		{name: "raw missing subject", req: NotificationRequest{To: "a@example.com", HTML: "<p>x</p>"}, want: ErrNotificationInvalid},
		{name: "raw bad recipient", req: NotificationRequest{To: "nobody", Subject: "Hi", HTML: "<p>x</p>"}, want: ErrInvalidEmail},
		{name: "template without data", req: NotificationRequest{Template: constants.NotificationTemplateOrderConfirmation}, want: ErrNotificationInvalid},
		{name: "unknown template", req: NotificationRequest{Template: "newsletter", Data: &NotificationTemplateData{Email: "a@example.com", OrderID: "1"}}, want: ErrNotificationTemplate},
		{name: "template bad recipient", req: NotificationRequest{Template: constants.NotificationTemplateOrderConfirmation, Data: &NotificationTemplateData{Email: "nope", OrderID: "1"}}, want: ErrInvalidEmail},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Render(tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	raw, err := svc.Render(NotificationRequest{To: "a@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "raw", NotificationRequest{To: "a@example.com"}.Kind())
	assert.Equal(t, "<p>x</p>", raw.HTML)
}

func TestNotificationServiceSend(t *testing.T) {
	sender := &recordingMailSender{}
	svc := NewNotificationService(sender, config.ShopConfig{Name: "Maison Test"})

	require.NoError(t, svc.Send(context.Background(), BuildOrderConfirmationRequest(notificationTestOrder(), "")))
	mails := sender.mails()
	require.Len(t, mails, 1)
	assert.Equal(t, "jane@example.com", mails[0].to)

	require.NoError(t, svc.SendTest("ops@example.com", "en-US"))
	assert.Len(t, sender.mails(), 2)

	sender.err = errors.New("smtp down")
	assert.Error(t, svc.Send(context.Background(), BuildOrderConfirmationRequest(notificationTestOrder(), "")))

	unconfigured := NewNotificationService(nil, config.ShopConfig{})
	assert.ErrorIs(t, unconfigured.Send(context.Background(), BuildOrderConfirmationRequest(notificationTestOrder(), "")), ErrEmailServiceNotConfigured)
}

func TestNotificationQueueSendsDetachedWithoutQueue(t *testing.T) {
	sender := &recordingMailSender{}
	q := NewNotificationQueue(nil, NewNotificationService(sender, config.ShopConfig{}))
	ctx, cancel := context.WithCancel(context.Background())

	order := notificationTestOrder()
	q.Dispatch(ctx, BuildOrderConfirmationRequest(order, ""))
	order.Status = constants.OrderStatusPaid
	q.DispatchOrderStatus(ctx, order)
	// 请求结束不影响后台发送
	cancel()
	q.Wait()

	mails := sender.mails()
	require.Len(t, mails, 2)
	subjects := []string{mails[0].subject, mails[1].subject}
	assert.Contains(t, subjects, "Order confirmation #"+order.ID)
	assert.Contains(t, subjects, "Order #"+order.ID+" is now Paid")
}

func TestFormatAddressLines(t *testing.T) {
	lines := FormatAddressLines(models.CustomerInfo{
		FirstName:    "Jane",
		LastName:     "Doe",
		AddressLine1: "1 Main St",
		AddressLine2: " ",
		City:         "Springfield",
		PostalCode:   "12345",
		Country:      "US",
	})
	assert.Equal(t, []string{"Jane Doe", "1 Main St", "12345 Springfield", "US"}, lines)
}
