package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant 商品规格表（尺寸/规格，每个规格独立定价）
type ProductVariant struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                      // 主键
	ProductID uint           `gorm:"not null;index" json:"product_id"`                          // 商品ID
	SizeLabel string         `gorm:"type:varchar(64);not null" json:"size_label"`               // 规格名称
	Price     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`        // 规格价格
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`                       // 是否启用
	SortOrder int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}
