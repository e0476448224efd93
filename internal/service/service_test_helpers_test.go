package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// memoryCartStore 进程内购物车槽位
type memoryCartStore struct {
	mu    sync.Mutex
	slots map[string][]byte
}

func newMemoryCartStore() *memoryCartStore {
	return &memoryCartStore{slots: make(map[string][]byte)}
}

func (s *memoryCartStore) Load(_ context.Context, token string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decodeCartSlot(token, s.slots[token]), nil
}

func (s *memoryCartStore) Save(_ context.Context, token string, c *cart.Cart) error {
	raw, err := c.MarshalJSON()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[token] = raw
	return nil
}

func (s *memoryCartStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, token)
	return nil
}

type recordedMail struct {
	to      string
	subject string
	body    string
}

type recordingMailSender struct {
	mu   sync.Mutex
	sent []recordedMail
	err  error
}

func (s *recordingMailSender) SendHTML(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, recordedMail{to: to, subject: subject, body: body})
	return nil
}

func (s *recordingMailSender) SendText(to, subject, body string) error {
	return s.SendHTML(to, subject, body)
}

func (s *recordingMailSender) mails() []recordedMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordedMail, len(s.sent))
	copy(out, s.sent)
	return out
}

// recordingDispatcher 同步记录投递请求
type recordingDispatcher struct {
	mu       sync.Mutex
	requests []NotificationRequest
	statuses []string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, req NotificationRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
}

func (d *recordingDispatcher) DispatchOrderStatus(_ context.Context, order *models.Order) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses = append(d.statuses, order.Status)
}

type recordingAnalytics struct {
	mu     sync.Mutex
	events []AnalyticsEvent
}

func (a *recordingAnalytics) Publish(_ context.Context, event AnalyticsEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

func (a *recordingAnalytics) Close() error { return nil }

func (a *recordingAnalytics) names() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.events))
	for _, event := range a.events {
		names = append(names, event.Name)
	}
	return names
}

func createTestProduct(t *testing.T, svc *ProductService, slug string, prices ...string) *models.Product {
	t.Helper()
	input := CreateProductInput{Slug: slug, Name: strings.ToUpper(slug[:1]) + slug[1:]}
	for i, price := range prices {
		input.Variants = append(input.Variants, ProductVariantInput{
			SizeLabel: fmt.Sprintf("%dml", (i+1)*10),
			Price:     decimal.RequireFromString(price),
			SortOrder: i,
		})
	}
	product, err := svc.Create(input)
	require.NoError(t, err)
	return product
}

func testCustomer() models.CustomerInfo {
	return models.CustomerInfo{
		Email:        "jane@example.com",
		FirstName:    "Jane",
		LastName:     "Doe",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		PostalCode:   "12345",
		Country:      "US",
	}
}
