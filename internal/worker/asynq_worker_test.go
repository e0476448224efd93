package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentMail struct {
	to      string
	subject string
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []sentMail
	fails []error
}

func (s *recordingSender) SendHTML(to, subject, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.fails) > 0 {
		err := s.fails[0]
		s.fails = s.fails[1:]
		return err
	}
	s.sent = append(s.sent, sentMail{to: to, subject: subject})
	return nil
}

func (s *recordingSender) SendText(to, subject, _ string) error {
	return s.SendHTML(to, subject, "")
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func setupConsumer(t *testing.T, sender *recordingSender) (*Consumer, repository.OrderRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	mr := miniredis.RunT(t)
	cache.UseClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	t.Cleanup(func() { cache.UseClient(nil, "") })

	orderRepo := repository.NewOrderRepository(db)
	container := &provider.Container{
		Config:              &config.Config{},
		OrderRepo:           orderRepo,
		NotificationService: service.NewNotificationService(sender, config.ShopConfig{Name: "Test Shop"}),
	}
	return NewConsumer(container), orderRepo
}

func createWorkerTestOrder(t *testing.T, repo repository.OrderRepository, id string) *models.Order {
	t.Helper()
	total := models.NewMoneyFromDecimal(decimal.RequireFromString("40.00"))
	order := &models.Order{
		ID:            id,
		CustomerEmail: "jane@example.com",
		Customer: models.CustomerInfo{
			Email:        "jane@example.com",
			FirstName:    "Jane",
			LastName:     "Doe",
			AddressLine1: "1 Main St",
			City:         "Springfield",
			PostalCode:   "12345",
			Country:      "US",
		},
		Status:         constants.OrderStatusPaid,
		Currency:       "USD",
		SubtotalAmount: total,
		TotalAmount:    total,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, repo.Create(order, nil))
	return order
}

func orderStatusTask(t *testing.T, orderID, status string) *asynq.Task {
	t.Helper()
	task, err := queue.NewOrderStatusEmailTask(queue.OrderStatusEmailPayload{OrderID: orderID, Status: status})
	require.NoError(t, err)
	return task
}

func TestHandleOrderStatusEmailSendsOncePerStatus(t *testing.T) {
	sender := &recordingSender{}
	consumer, repo := setupConsumer(t, sender)
	order := createWorkerTestOrder(t, repo, "4f7c1a52-6a3e-4b0e-9d0c-2d8f1c3b7a10")

	task := orderStatusTask(t, order.ID, constants.OrderStatusPaid)
	require.NoError(t, consumer.handleOrderStatusEmail(context.Background(), task))
	require.NoError(t, consumer.handleOrderStatusEmail(context.Background(), task))

	require.Equal(t, 1, sender.count())
	assert.Equal(t, "jane@example.com", sender.sent[0].to)
	assert.Contains(t, sender.sent[0].subject, order.ID)
}

func TestHandleOrderStatusEmailReleasesDedupeOnFailure(t *testing.T) {
	sender := &recordingSender{fails: []error{errors.New("smtp down")}}
	consumer, repo := setupConsumer(t, sender)
	order := createWorkerTestOrder(t, repo, "8a0d7f3e-1b2c-4d5e-8f90-a1b2c3d4e5f6")

	task := orderStatusTask(t, order.ID, constants.OrderStatusPaid)
	err := consumer.handleOrderStatusEmail(context.Background(), task)
	require.Error(t, err)
	assert.Equal(t, 0, sender.count())

	// asynq 重试时应能再次发送
	require.NoError(t, consumer.handleOrderStatusEmail(context.Background(), task))
	assert.Equal(t, 1, sender.count())
}

func TestHandleOrderStatusEmailSkipsMissingOrder(t *testing.T) {
	sender := &recordingSender{}
	consumer, _ := setupConsumer(t, sender)

	task := orderStatusTask(t, "9b1e2f3a-0000-4000-8000-000000000000", constants.OrderStatusShipped)
	require.NoError(t, consumer.handleOrderStatusEmail(context.Background(), task))
	assert.Equal(t, 0, sender.count())
}

func TestHandleNotificationDispatch(t *testing.T) {
	validRaw := service.NotificationRequest{To: "ops@example.com", Subject: "Hello", HTML: "<p>hi</p>"}
	invalidRaw := service.NotificationRequest{To: "not-an-email", Subject: "Hello", HTML: "<p>hi</p>"}

	tests := []struct {
		name      string
		req       service.NotificationRequest
		fails     []error
		wantErr   bool
		wantSends int
	}{
		{name: "sends raw email", req: validRaw, wantSends: 1},
		{name: "drops invalid recipient", req: invalidRaw, wantSends: 0},
		{name: "retries transient failure", req: validRaw, fails: []error{errors.New("connection reset")}, wantErr: true},
		{name: "drops rejected recipient", req: validRaw, fails: []error{service.ErrEmailRecipientRejected}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sender := &recordingSender{fails: tc.fails}
			consumer, _ := setupConsumer(t, sender)

			body, err := json.Marshal(tc.req)
			require.NoError(t, err)
			task, err := queue.NewNotificationDispatchTask(queue.NotificationDispatchPayload{
				Kind:    tc.req.Kind(),
				Request: body,
			})
			require.NoError(t, err)

			err = consumer.handleNotificationDispatch(context.Background(), task)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantSends, sender.count())
		})
	}
}
