package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// CustomerInfo 下单客户信息（收货表单快照）
type CustomerInfo struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone,omitempty"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Notes        string `json:"notes,omitempty"`
}

// FullName 客户姓名
func (c CustomerInfo) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// LineItemSnapshot 下单时的购物车行快照
type LineItemSnapshot struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Name      string `json:"name"`
	SizeLabel string `json:"size_label,omitempty"`
	UnitPrice Money  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

// LineItemSnapshots 行快照列表，整体以 JSON 存储
type LineItemSnapshots []LineItemSnapshot

// Value 实现 driver.Valuer 接口
func (s LineItemSnapshots) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan 实现 sql.Scanner 接口
func (s *LineItemSnapshots) Scan(value interface{}) error {
	if value == nil {
		*s = LineItemSnapshots{}
		return nil
	}
	raw, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, s)
}

// Order 订单表
type Order struct {
	ID             string            `gorm:"primarykey;type:varchar(36)" json:"id"`                         // 订单ID（落库前生成）
	CustomerEmail  string            `gorm:"index;type:varchar(255);not null" json:"customer_email"`        // 客户邮箱
	Customer       CustomerInfo      `gorm:"serializer:json;type:text;not null" json:"customer"`            // 客户信息快照
	LineItems      LineItemSnapshots `gorm:"type:text;not null" json:"line_items"`                          // 购物车行快照
	Status         string            `gorm:"index;type:varchar(20);not null" json:"status"`                 // 订单状态
	Currency       string            `gorm:"type:varchar(10);not null" json:"currency"`                     // 币种
	SubtotalAmount Money             `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal_amount"`  // 商品小计
	ShippingCost   Money             `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_cost"`    // 运费
	TotalAmount    Money             `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // 应付金额
	ClientIP       string            `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                   // 下单客户端IP
	PaidAt         *time.Time        `gorm:"index" json:"paid_at"`                                          // 确认收款时间
	ShippedAt      *time.Time        `gorm:"index" json:"shipped_at"`                                       // 发货时间
	DeliveredAt    *time.Time        `gorm:"index" json:"delivered_at"`                                     // 送达时间
	CreatedAt      time.Time         `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time         `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt      gorm.DeletedAt    `gorm:"index" json:"-"`                                                // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
