package models

import "time"

// CartSlot 购物车持久化槽位（Redis 未启用时使用）
type CartSlot struct {
	Token     string    `gorm:"primarykey;type:varchar(64)" json:"token"` // 购物车令牌
	Payload   string    `gorm:"type:text;not null" json:"payload"`        // 购物车行 JSON 数组
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                  // 更新时间
}

// TableName 指定表名
func (CartSlot) TableName() string {
	return "cart_slots"
}
