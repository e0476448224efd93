package service

import "errors"

// 通用
var (
	ErrNotFound = errors.New("not found")
)

// 认证
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrCaptchaRequired    = errors.New("captcha required")
	ErrCaptchaInvalid     = errors.New("captcha invalid")
	ErrWeakPassword       = errors.New("password too weak")
)

// 商品
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrProductInvalid      = errors.New("product invalid")
	ErrProductPriceInvalid = errors.New("product price invalid")
	ErrSlugExists          = errors.New("slug already exists")
	ErrVariantNotFound     = errors.New("variant not found")
	ErrVariantNotAvailable = errors.New("variant not available")
)

// 购物车
var (
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrCartTokenInvalid = errors.New("cart token invalid")
	ErrCartEmpty        = errors.New("cart is empty")
)

// 订单
var (
	ErrCustomerInvalid    = errors.New("customer info invalid")
	ErrOrderIDInvalid     = errors.New("order id invalid")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderStatusInvalid = errors.New("order status transition not allowed")
	ErrOrderCreateFailed  = errors.New("order create failed")
	ErrOrderUpdateFailed  = errors.New("order update failed")
)

// 邮件与通知
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrEmailServiceUnavailable   = errors.New("email service temporarily unavailable")
	ErrNotificationInvalid       = errors.New("notification request invalid")
	ErrNotificationTemplate      = errors.New("notification template unknown")
)

// 收件箱与设置
var (
	ErrInboxMessageInvalid = errors.New("inbox message invalid")
	ErrSettingInvalid      = errors.New("setting invalid")
)
