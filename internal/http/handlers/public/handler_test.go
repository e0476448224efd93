package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mailRecorder struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mailRecorder) SendHTML(_, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mailRecorder) SendText(to, subject, body string) error {
	return m.SendHTML(to, subject, body)
}

type apiEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type storefrontHarness struct {
	router    *gin.Engine
	container *provider.Container
	product   *models.Product
}

func newStorefrontHarness(t *testing.T) *storefrontHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.UseClient(client, "test")
	t.Cleanup(func() { cache.UseClient(nil, "") })

	cfg := &config.Config{Shop: config.ShopConfig{Name: "Test Shop", Currency: "USD"}}
	shopDefaults := service.ShopSettingsFromConfig(cfg.Shop)

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	inboxRepo := repository.NewInboxMessageRepository(db)
	settingService := service.NewSettingService(repository.NewSettingRepository(db), shopDefaults)
	notificationService := service.NewNotificationService(&mailRecorder{}, cfg.Shop)
	notificationQueue := service.NewNotificationQueue(nil, notificationService)
	t.Cleanup(notificationQueue.Wait)
	analytics := service.LogAnalyticsPublisher{}

	cartService := service.NewCartService(service.NewRedisCartStore(client, "test", time.Hour), productRepo, analytics, shopDefaults.Currency)
	inboxFeed := service.NewInboxFeed(nil, "", 10)

	container := &provider.Container{
		Config:              cfg,
		ProductRepo:         productRepo,
		OrderRepo:           orderRepo,
		SettingService:      settingService,
		NotificationService: notificationService,
		NotificationQueue:   notificationQueue,
		ProductService:      service.NewProductService(productRepo),
		CartService:         cartService,
		OrderService:        service.NewOrderService(orderRepo, cartService, settingService, notificationQueue, analytics),
		InboxFeed:           inboxFeed,
		InboxService:        service.NewInboxService(inboxRepo, inboxFeed),
	}

	product, err := container.ProductService.Create(service.CreateProductInput{
		Slug: "amber-noir",
		Name: "Amber Noir",
		Variants: []service.ProductVariantInput{
			{SizeLabel: "10ml", Price: decimal.RequireFromString("70.00")},
			{SizeLabel: "50ml", Price: decimal.RequireFromString("200.00"), SortOrder: 1},
		},
	})
	require.NoError(t, err)

	h := New(container)
	r := gin.New()
	api := r.Group("/api/v1")
	api.GET("/public/products/:slug", h.GetProductBySlug)
	api.POST("/public/contact", h.SubmitContact)
	api.GET("/cart", h.GetCart)
	api.DELETE("/cart", h.ClearCart)
	api.POST("/cart/items", h.AddCartItem)
	api.PATCH("/cart/items/:variant_id", h.UpdateCartItem)
	api.DELETE("/cart/items/:variant_id", h.DeleteCartItem)
	api.POST("/orders", h.SubmitOrder)
	api.GET("/orders/:id", h.GetOrder)

	return &storefrontHarness{router: r, container: container, product: product}
}

func (h *storefrontHarness) do(t *testing.T, method, path, cartToken string, body interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cartToken != "" {
		req.Header.Set(constants.HeaderCartToken, cartToken)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (h *storefrontHarness) addVariant(t *testing.T, token string, variantIndex, quantity int) (string, service.CartView) {
	t.Helper()
	w, env := h.do(t, http.MethodPost, "/api/v1/cart/items", token, AddCartItemRequest{
		ProductID: h.product.ID,
		VariantID: h.product.Variants[variantIndex].ID,
		Quantity:  quantity,
	})
	require.Equal(t, 0, env.StatusCode, env.Msg)
	var view service.CartView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	return w.Header().Get(constants.HeaderCartToken), view
}

func validCustomer() models.CustomerInfo {
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

func TestAddCartItemIssuesTokenAndOpensCart(t *testing.T) {
	h := newStorefrontHarness(t)

	token, view := h.addVariant(t, "", 0, 2)
	require.NotEmpty(t, token)
	assert.Equal(t, token, view.Token)
	assert.True(t, view.OpenCart)
	assert.Equal(t, 2, view.ItemCount)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "10ml", view.Lines[0].SizeLabel)
	assert.Equal(t, "140.00", view.Subtotal.StringFixed(2))

	// 同一令牌再次加入同规格时数量累加
	sameToken, view := h.addVariant(t, token, 0, 1)
	assert.Equal(t, token, sameToken)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Lines[0].Quantity)
}

func TestCartRejectsInvalidToken(t *testing.T) {
	h := newStorefrontHarness(t)

	w, env := h.do(t, http.MethodGet, "/api/v1/cart", "not a token!", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 400, env.StatusCode)
	assert.Empty(t, w.Header().Get(constants.HeaderCartToken))
}

func TestCartUpdateAndRemoveLine(t *testing.T) {
	h := newStorefrontHarness(t)
	token, view := h.addVariant(t, "", 1, 1)
	variantID := view.Lines[0].VariantID

	_, env := h.do(t, http.MethodPatch, "/api/v1/cart/items/"+variantID, token, UpdateCartItemRequest{Quantity: 4})
	require.Equal(t, 0, env.StatusCode, env.Msg)
	var updated service.CartView
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 4, updated.ItemCount)

	_, env = h.do(t, http.MethodDelete, "/api/v1/cart/items/"+variantID, token, nil)
	require.Equal(t, 0, env.StatusCode, env.Msg)
	var removed service.CartView
	require.NoError(t, json.Unmarshal(env.Data, &removed))
	assert.Empty(t, removed.Lines)
	assert.Equal(t, 0, removed.ItemCount)
}

func TestCartRejectsQuantityAboveLineLimit(t *testing.T) {
	h := newStorefrontHarness(t)
	token, view := h.addVariant(t, "", 0, 1)

	_, env := h.do(t, http.MethodPost, "/api/v1/cart/items", token, AddCartItemRequest{
		ProductID: h.product.ID,
		VariantID: h.product.Variants[0].ID,
		Quantity:  10000,
	})
	assert.Equal(t, 400, env.StatusCode)

	_, env = h.do(t, http.MethodPatch, "/api/v1/cart/items/"+view.Lines[0].VariantID, token, UpdateCartItemRequest{Quantity: 10000})
	assert.Equal(t, 400, env.StatusCode)
}

func TestSubmitOrderRedirectsToConfirmation(t *testing.T) {
	h := newStorefrontHarness(t)
	token, _ := h.addVariant(t, "", 0, 2)

	_, env := h.do(t, http.MethodPost, "/api/v1/orders", token, SubmitOrderRequest{Customer: validCustomer()})
	require.Equal(t, 0, env.StatusCode, env.Msg)
	var resp SubmitOrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(t, resp.OrderID)
	assert.Equal(t, "/order-confirmation/"+resp.OrderID, resp.Redirect)
	assert.False(t, resp.Replayed)

	order, err := h.container.OrderRepo.GetByID(resp.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, constants.OrderStatusOnHold, order.Status)
	assert.Equal(t, "140.00", order.SubtotalAmount.StringFixed(2))
	assert.Equal(t, "154.99", order.TotalAmount.StringFixed(2))

	// 下单后购物车清空
	_, env = h.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, 0, env.StatusCode)
	var view service.CartView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Empty(t, view.Lines)
}

func TestSubmitOrderEmptyCart(t *testing.T) {
	h := newStorefrontHarness(t)

	_, env := h.do(t, http.MethodPost, "/api/v1/orders", "", SubmitOrderRequest{Customer: validCustomer()})
	assert.Equal(t, 400, env.StatusCode)
}

func TestSubmitOrderInvalidCustomerKeepsCart(t *testing.T) {
	h := newStorefrontHarness(t)
	token, _ := h.addVariant(t, "", 0, 1)

	customer := validCustomer()
	customer.Email = "not-an-email"
	_, env := h.do(t, http.MethodPost, "/api/v1/orders", token, SubmitOrderRequest{Customer: customer})
	assert.Equal(t, 400, env.StatusCode)

	_, env = h.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	var view service.CartView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Len(t, view.Lines, 1)
}

func TestGetOrderRequiresMatchingEmail(t *testing.T) {
	h := newStorefrontHarness(t)
	token, _ := h.addVariant(t, "", 1, 1)

	_, env := h.do(t, http.MethodPost, "/api/v1/orders", token, SubmitOrderRequest{Customer: validCustomer()})
	require.Equal(t, 0, env.StatusCode, env.Msg)
	var resp SubmitOrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))

	_, env = h.do(t, http.MethodGet, "/api/v1/orders/"+resp.OrderID+"?email=JANE@example.com", "", nil)
	require.Equal(t, 0, env.StatusCode, env.Msg)
	var order models.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, resp.OrderID, order.ID)
	assert.Equal(t, "200.00", order.TotalAmount.StringFixed(2))

	_, env = h.do(t, http.MethodGet, "/api/v1/orders/"+resp.OrderID+"?email=someone@example.com", "", nil)
	assert.Equal(t, 404, env.StatusCode)
}

func TestSubmitContactStoresInboxMessage(t *testing.T) {
	h := newStorefrontHarness(t)

	_, env := h.do(t, http.MethodPost, "/api/v1/public/contact", "", map[string]string{
		"email":   "visitor@example.com",
		"subject": "Samples",
		"message": "Do you ship samples abroad?",
	})
	require.Equal(t, 0, env.StatusCode, env.Msg)

	live := h.container.InboxService.Live()
	require.Len(t, live, 1)
	assert.Equal(t, "visitor@example.com", live[0].Sender)

	_, env = h.do(t, http.MethodPost, "/api/v1/public/contact", "", map[string]string{
		"email":   "nope",
		"message": "hi",
	})
	assert.Equal(t, 400, env.StatusCode)
}
