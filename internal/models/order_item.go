package models

import (
	"time"
)

// OrderItem 订单项表（按规格归一）
type OrderItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID    string    `gorm:"index;type:varchar(36);not null" json:"order_id"`          // 订单ID
	ProductID  string    `gorm:"index;type:varchar(64);not null" json:"product_id"`        // 商品ID
	VariantID  string    `gorm:"index;type:varchar(64);not null" json:"variant_id"`        // 规格ID
	Name       string    `gorm:"type:varchar(200);not null" json:"name"`                   // 商品名称快照
	SizeLabel  string    `gorm:"type:varchar(64)" json:"size_label"`                       // 规格名称快照
	UnitPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价
	Quantity   int       `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                  // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
