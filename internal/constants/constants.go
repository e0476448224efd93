package constants

// 订单状态常量（线性流转，不可回退）
const (
	OrderStatusOnHold    = "on_hold"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

// 通知模板常量
const (
	NotificationTemplateOrderConfirmation = "order_confirmation"
	NotificationTemplateAdminOrderAlert   = "admin_order_alert"
	NotificationTemplateOrderStatus       = "order_status"
)

// 埋点事件常量
const (
	AnalyticsEventAddToCart     = "add_to_cart"
	AnalyticsEventBeginCheckout = "begin_checkout"
	AnalyticsEventPurchase      = "purchase"
)

// 队列常量
const (
	QueueDefault             = "default"
	QueueCritical            = "critical"
	TaskNotificationDispatch = "notification:dispatch"
	TaskOrderStatusEmail     = "order:status_email"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault  = "sf"
	CartKeyPrefix       = "cart"
	InboxChannelDefault = "inbox"
)

// 请求头常量
const (
	HeaderCartToken = "X-Cart-Token"
	HeaderRequestID = "X-Request-ID"
)

// 设置键常量
const (
	SettingKeyShopConfig              = "shop_config"
	SettingFieldCurrency              = "currency"
	SettingFieldFlatShippingFee       = "flat_shipping_fee"
	SettingFieldFreeShippingThreshold = "free_shipping_threshold"
	SettingFieldAdminAlertEmail       = "admin_alert_email"
)

// 币种常量
const (
	CurrencyDefault = "USD"
)
