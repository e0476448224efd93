package repository

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartSlotRepository 购物车槽位数据访问接口
type CartSlotRepository interface {
	Get(token string) (*models.CartSlot, error)
	Put(token, payload string) error
	Delete(token string) error
	DeleteUpdatedBefore(cutoff time.Time) (int64, error)
}

// GormCartSlotRepository GORM 实现
type GormCartSlotRepository struct {
	db *gorm.DB
}

// NewCartSlotRepository 创建购物车槽位仓库
func NewCartSlotRepository(db *gorm.DB) *GormCartSlotRepository {
	return &GormCartSlotRepository{db: db}
}

// Get 读取槽位，不存在返回 nil
func (r *GormCartSlotRepository) Get(token string) (*models.CartSlot, error) {
	var slot models.CartSlot
	if err := r.db.Where("token = ?", token).First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &slot, nil
}

// Put 整体覆盖写入槽位
func (r *GormCartSlotRepository) Put(token, payload string) error {
	slot := models.CartSlot{Token: token, Payload: payload, UpdatedAt: time.Now()}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&slot).Error
}

// Delete 删除槽位
func (r *GormCartSlotRepository) Delete(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.CartSlot{}).Error
}

// DeleteUpdatedBefore 清理过期槽位
func (r *GormCartSlotRepository) DeleteUpdatedBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("updated_at < ?", cutoff).Delete(&models.CartSlot{})
	return result.RowsAffected, result.Error
}
