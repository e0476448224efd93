package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/models"
)

const defaultShopName = "Storefront"

// NotificationRequest 通知请求
//
// Template 为空时为原始邮件 { to, subject, html }，
// 否则按模板渲染 Data。
type NotificationRequest struct {
	Template string                    `json:"template,omitempty"`
	Locale   string                    `json:"locale,omitempty"`
	To       string                    `json:"to,omitempty"`
	Subject  string                    `json:"subject,omitempty"`
	HTML     string                    `json:"html,omitempty"`
	Data     *NotificationTemplateData `json:"data,omitempty"`
}

// IsRaw 是否为原始邮件
func (r NotificationRequest) IsRaw() bool {
	return strings.TrimSpace(r.Template) == ""
}

// Kind 请求类型（模板名或 raw）
func (r NotificationRequest) Kind() string {
	if r.IsRaw() {
		return "raw"
	}
	return strings.TrimSpace(r.Template)
}

// NotificationTemplateData 模板邮件数据
type NotificationTemplateData struct {
	Email         string                    `json:"email"`
	Name          string                    `json:"name"`
	OrderID       string                    `json:"order_id"`
	Status        string                    `json:"status,omitempty"`
	Items         []models.LineItemSnapshot `json:"items,omitempty"`
	Address       []string                  `json:"address,omitempty"`
	CustomerEmail string                    `json:"customer_email,omitempty"`
	Subtotal      models.Money              `json:"subtotal"`
	Shipping      models.Money              `json:"shipping"`
	Total         models.Money              `json:"total"`
	Currency      string                    `json:"currency,omitempty"`
}

// RenderedEmail 渲染后的邮件
type RenderedEmail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// NotificationService 通知渲染与发送
type NotificationService struct {
	sender MailSender
	shop   config.ShopConfig
}

// NewNotificationService 创建通知服务
func NewNotificationService(sender MailSender, shop config.ShopConfig) *NotificationService {
	return &NotificationService{sender: sender, shop: shop}
}

// Send 渲染并同步发送，错误原样返回给调用方
func (s *NotificationService) Send(_ context.Context, req NotificationRequest) error {
	rendered, err := s.Render(req)
	if err != nil {
		return err
	}
	if s.sender == nil {
		return ErrEmailServiceNotConfigured
	}
	return s.sender.SendHTML(rendered.To, rendered.Subject, rendered.HTML)
}

// SendTest 发送 SMTP 测试邮件
func (s *NotificationService) SendTest(toEmail, locale string) error {
	if s.sender == nil {
		return ErrEmailServiceNotConfigured
	}
	locale = i18n.NormalizeLocale(locale)
	return s.sender.SendText(toEmail, i18n.T(locale, "email.test.subject"), i18n.T(locale, "email.test.body"))
}

// Render 渲染通知请求
func (s *NotificationService) Render(req NotificationRequest) (*RenderedEmail, error) {
	if req.IsRaw() {
		return renderRawNotification(req)
	}
	data := req.Data
	if data == nil || strings.TrimSpace(data.OrderID) == "" {
		return nil, ErrNotificationInvalid
	}
	to := strings.TrimSpace(data.Email)
	if _, err := mail.ParseAddress(to); err != nil {
		return nil, ErrInvalidEmail
	}
	locale := i18n.NormalizeLocale(req.Locale)
	shell := s.baseShell(locale)
	shell.OrderID = data.OrderID

	var subject string
	switch strings.TrimSpace(req.Template) {
	case constants.NotificationTemplateOrderConfirmation:
		subject = i18n.Sprintf(locale, "email.order_confirmation.subject", data.OrderID)
		shell.Title = i18n.T(locale, "email.order_confirmation.title")
		shell.Intro = i18n.Sprintf(locale, "email.order_confirmation.intro", data.Name)
		shell.Items = data.Items
		shell.Totals = buildEmailTotals(data)
		shell.AddressLines = data.Address
	case constants.NotificationTemplateAdminOrderAlert:
		customer := strings.TrimSpace(data.Name)
		if customer == "" {
			customer = data.CustomerEmail
		}
		subject = i18n.Sprintf(locale, "email.admin_alert.subject", data.OrderID, customer)
		shell.Title = i18n.T(locale, "email.admin_alert.title")
		shell.Intro = i18n.T(locale, "email.admin_alert.intro")
		shell.Message = fmt.Sprintf("%s: %s <%s>", i18n.T(locale, "email.common.customer"), data.Name, data.CustomerEmail)
		shell.Items = data.Items
		shell.Totals = buildEmailTotals(data)
		shell.AddressLines = data.Address
	case constants.NotificationTemplateOrderStatus:
		status := strings.TrimSpace(data.Status)
		if !isKnownOrderStatus(status) {
			return nil, ErrNotificationInvalid
		}
		statusLabel := i18n.T(locale, "order.status."+status)
		subject = i18n.Sprintf(locale, "email.order_status.subject", data.OrderID, statusLabel)
		shell.Title = i18n.Sprintf(locale, "email.order_status.title", statusLabel)
		shell.Intro = i18n.Sprintf(locale, "email.order_status.intro", data.Name)
		bodyKey := "email.order_status.body_" + status
		if body := i18n.T(locale, bodyKey); body != bodyKey {
			shell.Message = body
		}
		shell.Items = data.Items
	default:
		return nil, ErrNotificationTemplate
	}

	html, err := renderEmailShell(shell)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotificationTemplate, err)
	}
	return &RenderedEmail{To: to, Subject: subject, HTML: html}, nil
}

func renderRawNotification(req NotificationRequest) (*RenderedEmail, error) {
	to := strings.TrimSpace(req.To)
	subject := strings.TrimSpace(req.Subject)
	if to == "" || subject == "" || strings.TrimSpace(req.HTML) == "" {
		return nil, ErrNotificationInvalid
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return nil, ErrInvalidEmail
	}
	return &RenderedEmail{To: to, Subject: subject, HTML: req.HTML}, nil
}

func (s *NotificationService) baseShell(locale string) emailShellData {
	name := strings.TrimSpace(s.shop.Name)
	if name == "" {
		name = defaultShopName
	}
	return emailShellData{
		Lang:     locale,
		ShopName: name,
		LogoURL:  strings.TrimSpace(s.shop.LogoURL),
		SiteURL:  strings.TrimSpace(s.shop.SiteURL),
		Labels: emailLabels{
			OrderID:      i18n.T(locale, "email.common.order_id"),
			Item:         i18n.T(locale, "email.common.item"),
			Quantity:     i18n.T(locale, "email.common.quantity"),
			Price:        i18n.T(locale, "email.common.price"),
			Subtotal:     i18n.T(locale, "email.common.subtotal"),
			Shipping:     i18n.T(locale, "email.common.shipping"),
			ShippingFree: i18n.T(locale, "email.common.shipping_free"),
			Total:        i18n.T(locale, "email.common.total"),
			ShipTo:       i18n.T(locale, "email.common.ship_to"),
		},
	}
}

func buildEmailTotals(data *NotificationTemplateData) *emailTotals {
	if data == nil || data.Total.IsZero() {
		return nil
	}
	return &emailTotals{
		Subtotal:     data.Subtotal.String(),
		Shipping:     data.Shipping.String(),
		Total:        data.Total.String(),
		Currency:     data.Currency,
		FreeShipping: data.Shipping.IsZero(),
	}
}

// BuildOrderConfirmationRequest 构建客户下单确认邮件
func BuildOrderConfirmationRequest(order *models.Order, locale string) NotificationRequest {
	data := orderTemplateData(order)
	data.Email = order.CustomerEmail
	return NotificationRequest{
		Template: constants.NotificationTemplateOrderConfirmation,
		Locale:   locale,
		Data:     data,
	}
}

// BuildAdminOrderAlertRequest 构建管理员新订单提醒
func BuildAdminOrderAlertRequest(order *models.Order, adminEmail, locale string) NotificationRequest {
	data := orderTemplateData(order)
	data.Email = strings.TrimSpace(adminEmail)
	return NotificationRequest{
		Template: constants.NotificationTemplateAdminOrderAlert,
		Locale:   locale,
		Data:     data,
	}
}

// BuildOrderStatusRequest 构建订单状态变更邮件
func BuildOrderStatusRequest(order *models.Order, locale string) NotificationRequest {
	data := orderTemplateData(order)
	data.Email = order.CustomerEmail
	data.Status = order.Status
	return NotificationRequest{
		Template: constants.NotificationTemplateOrderStatus,
		Locale:   locale,
		Data:     data,
	}
}

func orderTemplateData(order *models.Order) *NotificationTemplateData {
	return &NotificationTemplateData{
		Name:          order.Customer.FullName(),
		OrderID:       order.ID,
		Items:         order.LineItems,
		Address:       FormatAddressLines(order.Customer),
		CustomerEmail: order.CustomerEmail,
		Subtotal:      order.SubtotalAmount,
		Shipping:      order.ShippingCost,
		Total:         order.TotalAmount,
		Currency:      order.Currency,
	}
}
