package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// InboxMessageInput 收件箱消息输入
type InboxMessageInput struct {
	Sender   string
	Subject  string
	BodyText string
	BodyHTML string
}

// InboxService 收件箱服务
type InboxService struct {
	repo repository.InboxMessageRepository
	feed *InboxFeed
}

// NewInboxService 创建收件箱服务
func NewInboxService(repo repository.InboxMessageRepository, feed *InboxFeed) *InboxService {
	return &InboxService{repo: repo, feed: feed}
}

// Receive 保存消息并推送到实时列表
func (s *InboxService) Receive(ctx context.Context, input InboxMessageInput) (*models.InboxMessage, error) {
	sender := strings.TrimSpace(input.Sender)
	if _, err := mail.ParseAddress(sender); err != nil {
		return nil, ErrInboxMessageInvalid
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" && strings.TrimSpace(input.BodyText) == "" && strings.TrimSpace(input.BodyHTML) == "" {
		return nil, ErrInboxMessageInvalid
	}
	message := &models.InboxMessage{
		Sender:    sender,
		Subject:   subject,
		BodyText:  input.BodyText,
		BodyHTML:  input.BodyHTML,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(message); err != nil {
		logger.Errorw("inbox_message_create_failed", "sender", sender, "error", err)
		return nil, err
	}
	if s.feed != nil {
		s.feed.Publish(ctx, *message)
	}
	return message, nil
}

// List 已保存消息列表
func (s *InboxService) List(filter repository.InboxListFilter) ([]models.InboxMessage, int64, error) {
	return s.repo.List(filter)
}

// Live 实时列表快照
func (s *InboxService) Live() []models.InboxMessage {
	if s.feed == nil {
		return []models.InboxMessage{}
	}
	return s.feed.Snapshot()
}

// Subscribe 订阅实时消息
func (s *InboxService) Subscribe() (<-chan models.InboxMessage, func()) {
	if s.feed == nil {
		ch := make(chan models.InboxMessage)
		close(ch)
		return ch, func() {}
	}
	return s.feed.Subscribe()
}
