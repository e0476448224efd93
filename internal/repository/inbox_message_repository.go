package repository

import (
	"strings"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// InboxMessageRepository 收件箱数据访问接口
type InboxMessageRepository interface {
	Create(message *models.InboxMessage) error
	List(filter InboxListFilter) ([]models.InboxMessage, int64, error)
}

// GormInboxMessageRepository GORM 实现
type GormInboxMessageRepository struct {
	db *gorm.DB
}

// NewInboxMessageRepository 创建收件箱仓库
func NewInboxMessageRepository(db *gorm.DB) *GormInboxMessageRepository {
	return &GormInboxMessageRepository{db: db}
}

// Create 写入消息
func (r *GormInboxMessageRepository) Create(message *models.InboxMessage) error {
	return r.db.Create(message).Error
}

// List 消息列表（最新在前）
func (r *GormInboxMessageRepository) List(filter InboxListFilter) ([]models.InboxMessage, int64, error) {
	var messages []models.InboxMessage
	query := r.db.Model(&models.InboxMessage{})
	if sender := strings.TrimSpace(filter.Sender); sender != "" {
		query = query.Where("sender = ?", sender)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at desc, id desc").Find(&messages).Error; err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}
