package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 支持的语言
const (
	LocaleEN = "en-US"
	LocaleZH = "zh-CN"
)

// DefaultLocale 默认语言
const DefaultLocale = LocaleEN

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":              "Invalid request",
		"error.unauthorized":             "Unauthorized",
		"error.forbidden":                "Forbidden",
		"error.not_found":                "Not found",
		"error.internal":                 "Internal server error",
		"error.login_failed":             "Invalid username or password",
		"error.password_weak":            "Password must be at least 8 characters",
		"error.captcha_required":         "Captcha is required",
		"error.captcha_invalid":          "Captcha is invalid",
		"error.product_not_found":        "Product not found",
		"error.product_unavailable":      "Product is not available",
		"error.product_invalid":          "Product data is invalid",
		"error.slug_exists":              "Slug already exists",
		"error.variant_not_found":        "Variant not found",
		"error.invalid_quantity":         "Quantity is invalid",
		"error.cart_token_invalid":       "Cart token is invalid",
		"error.cart_save_failed":         "Failed to save cart",
		"error.cart_empty":               "Your cart is empty",
		"error.customer_invalid":         "Please fill in all required fields",
		"error.order_id_invalid":         "Order id is invalid",
		"error.order_create_failed":      "Failed to place order, please try again",
		"error.order_not_found":          "Order not found",
		"error.order_status_invalid":     "Order status transition is not allowed",
		"error.order_update_failed":      "Failed to update order",
		"error.email_disabled":           "Email service is disabled",
		"error.email_not_configured":     "Email service is not configured",
		"error.email_invalid":            "Email address is invalid",
		"error.email_recipient_rejected": "Recipient was rejected by the mail server",
		"error.email_send_failed":        "Failed to send email",
		"error.email_unavailable":        "Email service is temporarily unavailable",
		"error.template_invalid":         "Notification template is invalid",
		"error.inbox_invalid":            "Message is invalid",
		"error.setting_invalid":          "Setting value is invalid",
		"error.fetch_failed":             "Failed to load data",
		"error.save_failed":              "Failed to save",
		"error.password_old_invalid":     "Current password is incorrect",
		"error.captcha_generate_failed":  "Failed to generate captcha",
		"error.auth_header_missing":      "Authorization header is missing",
		"error.auth_header_invalid":      "Authorization header is invalid",
		"error.token_invalid":            "Token is invalid or expired",
		"error.role_invalid":             "Role is invalid",
		"error.rate_limited":             "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":   "Rate limiter is unavailable",

		"order.status.on_hold":   "On hold",
		"order.status.paid":      "Paid",
		"order.status.shipped":   "Shipped",
		"order.status.delivered": "Delivered",

		"email.common.order_id":      "Order ID",
		"email.common.item":          "Item",
		"email.common.quantity":      "Qty",
		"email.common.price":         "Price",
		"email.common.subtotal":      "Subtotal",
		"email.common.shipping":      "Shipping",
		"email.common.shipping_free": "Free",
		"email.common.total":         "Total",
		"email.common.ship_to":       "Ship to",
		"email.common.customer":      "Customer",

		"email.order_confirmation.subject": "Order confirmation #%s",
		"email.order_confirmation.title":   "Thank you for your order",
		"email.order_confirmation.intro":   "Hi %s, we have received your order. It is on hold until we confirm your bank transfer.",
		"email.admin_alert.subject":        "New order #%s from %s",
		"email.admin_alert.title":          "New order received",
		"email.admin_alert.intro":          "A new order was placed and is waiting for payment confirmation.",
		"email.order_status.subject":       "Order #%s is now %s",
		"email.order_status.title":         "Order status: %s",
		"email.order_status.intro":         "Hi %s, the status of your order has changed.",
		"email.order_status.body_paid":      "We have received your payment and are preparing your order.",
		"email.order_status.body_shipped":   "Your order is on its way.",
		"email.order_status.body_delivered": "Your order has been delivered. Enjoy!",
		"email.test.subject":               "SMTP test email",
		"email.test.body":                  "This is a test email. Your SMTP settings work.",
	},
	LocaleZH: {
		"error.bad_request":              "请求参数错误",
		"error.unauthorized":             "未登录或登录已失效",
		"error.forbidden":                "无权限访问",
		"error.not_found":                "资源不存在",
		"error.internal":                 "服务器内部错误",
		"error.login_failed":             "用户名或密码错误",
		"error.password_weak":            "密码至少需要 8 位",
		"error.captcha_required":         "请输入验证码",
		"error.captcha_invalid":          "验证码错误",
		"error.product_not_found":        "商品不存在",
		"error.product_unavailable":      "商品已下架",
		"error.product_invalid":          "商品数据不合法",
		"error.slug_exists":              "标识已存在",
		"error.variant_not_found":        "规格不存在",
		"error.invalid_quantity":         "数量不合法",
		"error.cart_token_invalid":       "购物车令牌不合法",
		"error.cart_save_failed":         "购物车保存失败",
		"error.cart_empty":               "购物车为空",
		"error.customer_invalid":         "请填写完整的收货信息",
		"error.order_id_invalid":         "订单号不合法",
		"error.order_create_failed":      "下单失败，请重试",
		"error.order_not_found":          "订单不存在",
		"error.order_status_invalid":     "不允许的订单状态流转",
		"error.order_update_failed":      "订单更新失败",
		"error.email_disabled":           "邮件服务未启用",
		"error.email_not_configured":     "邮件服务未配置",
		"error.email_invalid":            "邮箱格式不正确",
		"error.email_recipient_rejected": "收件人被邮件服务器拒绝",
		"error.email_send_failed":        "邮件发送失败",
		"error.email_unavailable":        "邮件服务暂不可用",
		"error.template_invalid":         "通知模板不合法",
		"error.inbox_invalid":            "消息内容不合法",
		"error.setting_invalid":          "设置值不合法",
		"error.fetch_failed":             "数据加载失败",
		"error.save_failed":              "保存失败",
		"error.password_old_invalid":     "原密码错误",
		"error.captcha_generate_failed":  "验证码生成失败",
		"error.auth_header_missing":      "缺少认证信息",
		"error.auth_header_invalid":      "认证信息格式错误",
		"error.token_invalid":            "令牌无效或已过期",
		"error.role_invalid":             "角色不合法",
		"error.rate_limited":             "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":   "限流服务暂不可用",

		"order.status.on_hold":   "待确认收款",
		"order.status.paid":      "已付款",
		"order.status.shipped":   "已发货",
		"order.status.delivered": "已送达",

		"email.common.order_id":      "订单号",
		"email.common.item":          "商品",
		"email.common.quantity":      "数量",
		"email.common.price":         "单价",
		"email.common.subtotal":      "小计",
		"email.common.shipping":      "运费",
		"email.common.shipping_free": "免运费",
		"email.common.total":         "合计",
		"email.common.ship_to":       "收货地址",
		"email.common.customer":      "客户",

		"email.order_confirmation.subject":  "订单确认 #%s",
		"email.order_confirmation.title":    "感谢您的订单",
		"email.order_confirmation.intro":    "%s，您好，我们已收到您的订单，确认银行转账后将为您发货。",
		"email.admin_alert.subject":         "新订单 #%s（%s）",
		"email.admin_alert.title":           "收到新订单",
		"email.admin_alert.intro":           "有新订单等待确认收款。",
		"email.order_status.subject":        "订单 #%s 状态更新：%s",
		"email.order_status.title":          "订单状态：%s",
		"email.order_status.intro":          "%s，您好，您的订单状态已更新。",
		"email.order_status.body_paid":      "我们已确认收款，正在为您备货。",
		"email.order_status.body_shipped":   "您的订单已发出。",
		"email.order_status.body_delivered": "您的订单已送达。",
		"email.test.subject":                "SMTP 配置测试邮件",
		"email.test.body":                   "这是一封 SMTP 测试邮件，说明当前配置可正常发送。",
	},
}

// NormalizeLocale 归一化语言标识，未知语言回退到默认语言
func NormalizeLocale(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case strings.HasPrefix(l, "zh"):
		return LocaleZH
	case strings.HasPrefix(l, "en"):
		return LocaleEN
	default:
		return DefaultLocale
	}
}

// ResolveLocale 从请求中解析语言（?lang= 优先，其次 Accept-Language）
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return NormalizeLocale(lang)
	}
	header := c.GetHeader("Accept-Language")
	if header == "" {
		return DefaultLocale
	}
	first := strings.SplitN(header, ",", 2)[0]
	first = strings.SplitN(first, ";", 2)[0]
	return NormalizeLocale(first)
}

// T 翻译，缺失时回退默认语言，仍缺失返回 key 本身
func T(locale, key string) string {
	if msg, ok := messages[NormalizeLocale(locale)][key]; ok {
		return msg
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译后格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
