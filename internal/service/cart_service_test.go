package service

import (
	"context"
	"testing"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCart() *cart.Cart {
	c := cart.New()
	c.Add(cart.Item{ProductID: "1", VariantID: "11", Name: "Amber Noir", Price: decimal.RequireFromString("32.00")}, 2, "10ml")
	c.Add(cart.Item{ProductID: "2", VariantID: "21", Name: "Rose Oud", Price: decimal.RequireFromString("24.00")}, 1, "5ml")
	return c
}

func TestRedisCartStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisCartStore(client, "test", time.Hour)
	ctx := context.Background()
	token := uuid.NewString()

	empty, err := store.Load(ctx, token)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	require.NoError(t, store.Save(ctx, token, sampleCart()))
	key := "test:" + constants.CartKeyPrefix + ":" + token
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	restored, err := store.Load(ctx, token)
	require.NoError(t, err)
	require.Equal(t, 2, restored.Len())
	assert.Equal(t, "88.00", restored.Total().StringFixed(2))
	line, ok := restored.Line("11")
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "10ml", line.SizeLabel)

	require.NoError(t, store.Delete(ctx, token))
	assert.False(t, mr.Exists(key))
}

func TestRedisCartStoreCorruptSlotFallsBackToEmpty(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisCartStore(client, "test", time.Hour)
	token := uuid.NewString()
	require.NoError(t, mr.Set("test:"+constants.CartKeyPrefix+":"+token, "{not json"))

	restored, err := store.Load(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, restored.IsEmpty())
}

func TestRedisCartStoreSurfacesConnectionErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	store := NewRedisCartStore(client, "test", time.Hour)
	mr.Close()

	_, err := store.Load(context.Background(), uuid.NewString())
	assert.Error(t, err)
	assert.Error(t, store.Save(context.Background(), uuid.NewString(), sampleCart()))
}

func TestDBCartStoreRoundTrip(t *testing.T) {
	db := openServiceTestDB(t)
	store := NewDBCartStore(repository.NewCartSlotRepository(db))
	ctx := context.Background()
	token := uuid.NewString()

	empty, err := store.Load(ctx, token)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	require.NoError(t, store.Save(ctx, token, sampleCart()))
	// 覆盖写入
	updated := sampleCart()
	updated.Remove("21")
	require.NoError(t, store.Save(ctx, token, updated))

	restored, err := store.Load(ctx, token)
	require.NoError(t, err)
	require.Equal(t, 1, restored.Len())
	assert.Equal(t, "64.00", restored.Total().StringFixed(2))

	require.NoError(t, store.Delete(ctx, token))
	restored, err = store.Load(ctx, token)
	require.NoError(t, err)
	assert.True(t, restored.IsEmpty())
}

func newCartTestService(t *testing.T) (*CartService, *ProductService, *recordingAnalytics) {
	t.Helper()
	db := openServiceTestDB(t)
	productRepo := repository.NewProductRepository(db)
	analytics := &recordingAnalytics{}
	return NewCartService(newMemoryCartStore(), productRepo, analytics, "usd"), NewProductService(productRepo), analytics
}

func TestCartServiceAddSnapshotsVariantPrice(t *testing.T) {
	carts, products, analytics := newCartTestService(t)
	product := createTestProduct(t, products, "amber-noir", "32.00", "129.00")
	ctx := context.Background()
	token := uuid.NewString()

	view, err := carts.Add(ctx, token, AddCartItemInput{ProductID: product.ID, VariantID: product.Variants[1].ID, Quantity: 2})
	require.NoError(t, err)
	assert.True(t, view.OpenCart)
	assert.Equal(t, "USD", view.Currency)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "20ml", view.Lines[0].SizeLabel)
	assert.Equal(t, "258.00", view.Subtotal.StringFixed(2))

	// 价格变更不影响已加入的行
	_, err = products.Update(product.ID, CreateProductInput{
		Slug: product.Slug,
		Name: product.Name,
		Variants: []ProductVariantInput{
			{ID: product.Variants[0].ID, SizeLabel: "10ml", Price: decimal.RequireFromString("32.00")},
			{ID: product.Variants[1].ID, SizeLabel: "20ml", Price: decimal.RequireFromString("150.00")},
		},
	})
	require.NoError(t, err)

	view, err = carts.Get(ctx, token)
	require.NoError(t, err)
	assert.False(t, view.OpenCart)
	assert.Equal(t, "258.00", view.Subtotal.StringFixed(2))

	require.Len(t, analytics.events, 1)
	assert.Equal(t, constants.AnalyticsEventAddToCart, analytics.events[0].Name)
	assert.Equal(t, "258.00", analytics.events[0].Value.StringFixed(2))
}

func TestCartServiceAddWithoutVariantUsesFirstActiveVariant(t *testing.T) {
	carts, products, _ := newCartTestService(t)
	product := createTestProduct(t, products, "rose-oud", "24.00", "45.00")

	// 规格按 sort_order 倒序，排序权重最高的 20ml 在前
	view, err := carts.Add(context.Background(), uuid.NewString(), AddCartItemInput{ProductID: product.ID})
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, variantLineID(product.Variants[1].ID), view.Lines[0].VariantID)
	assert.Equal(t, "20ml", view.Lines[0].SizeLabel)
	assert.Equal(t, "45.00", view.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, 1, view.Lines[0].Quantity)
}

func TestCartServiceAddRejectsUnavailableItems(t *testing.T) {
	carts, products, _ := newCartTestService(t)
	product := createTestProduct(t, products, "citrus-vetiver", "15.00")
	ctx := context.Background()
	token := uuid.NewString()

	_, err := carts.Add(ctx, token, AddCartItemInput{ProductID: product.ID, Quantity: -1})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = carts.Add(ctx, token, AddCartItemInput{ProductID: 9999})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = carts.Add(ctx, token, AddCartItemInput{ProductID: product.ID, VariantID: 9999})
	assert.ErrorIs(t, err, ErrVariantNotFound)

	require.NoError(t, products.SetActive(product.ID, false))
	_, err = carts.Add(ctx, token, AddCartItemInput{ProductID: product.ID})
	assert.ErrorIs(t, err, ErrProductNotAvailable)

	view, err := carts.Get(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestCartServiceUpdateAndRemove(t *testing.T) {
	carts, products, _ := newCartTestService(t)
	product := createTestProduct(t, products, "amber-noir", "32.00")
	ctx := context.Background()
	token := uuid.NewString()
	variantID := variantLineID(product.Variants[0].ID)

	_, err := carts.Add(ctx, token, AddCartItemInput{ProductID: product.ID, VariantID: product.Variants[0].ID})
	require.NoError(t, err)

	view, err := carts.UpdateQuantity(ctx, token, variantID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, view.ItemCount)

	view, err = carts.UpdateQuantity(ctx, token, variantID, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, view.ItemCount)

	view, err = carts.Remove(ctx, token, "missing")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)

	view, err = carts.Remove(ctx, token, variantID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Equal(t, "0.00", view.Subtotal.StringFixed(2))
}

func TestCartServiceSeparatesProductAndVariantIdentities(t *testing.T) {
	carts, products, _ := newCartTestService(t)
	plain, err := products.Create(CreateProductInput{Slug: "plain", Name: "Plain", BasePrice: decimal.RequireFromString("10.00")})
	require.NoError(t, err)
	require.Empty(t, plain.Variants)
	other := createTestProduct(t, products, "other", "99.00")
	require.Equal(t, plain.ID, other.Variants[0].ID)

	ctx := context.Background()
	token := uuid.NewString()
	_, err = carts.Add(ctx, token, AddCartItemInput{ProductID: plain.ID})
	require.NoError(t, err)
	view, err := carts.Add(ctx, token, AddCartItemInput{ProductID: other.ID, VariantID: other.Variants[0].ID})
	require.NoError(t, err)

	require.Len(t, view.Lines, 2)
	assert.Equal(t, productLineID(plain.ID), view.Lines[0].VariantID)
	assert.Equal(t, "Plain", view.Lines[0].Name)
	assert.Equal(t, 1, view.Lines[0].Quantity)
	assert.Equal(t, variantLineID(other.Variants[0].ID), view.Lines[1].VariantID)
	assert.Equal(t, "Other", view.Lines[1].Name)
	assert.Equal(t, "99.00", view.Lines[1].UnitPrice.StringFixed(2))
	assert.Equal(t, "109.00", view.Subtotal.StringFixed(2))
}

func TestCartServiceRejectsQuantityAboveLineLimit(t *testing.T) {
	carts, products, _ := newCartTestService(t)
	product := createTestProduct(t, products, "amber-noir", "32.00")
	ctx := context.Background()
	token := uuid.NewString()
	variantID := variantLineID(product.Variants[0].ID)
	input := AddCartItemInput{ProductID: product.ID, VariantID: product.Variants[0].ID}

	input.Quantity = cart.MaxLineQuantity + 1
	_, err := carts.Add(ctx, token, input)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	input.Quantity = cart.MaxLineQuantity
	_, err = carts.Add(ctx, token, input)
	require.NoError(t, err)

	input.Quantity = 2
	_, err = carts.Add(ctx, token, input)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = carts.UpdateQuantity(ctx, token, variantID, cart.MaxLineQuantity+1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	view, err := carts.Get(ctx, token)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, cart.MaxLineQuantity, view.Lines[0].Quantity)
	assert.True(t, view.Subtotal.IsPositive())
}

func TestNormalizeCartToken(t *testing.T) {
	token, generated, err := NormalizeCartToken("")
	require.NoError(t, err)
	assert.True(t, generated)
	_, err = uuid.Parse(token)
	assert.NoError(t, err)

	existing := uuid.NewString()
	token, generated, err = NormalizeCartToken(" " + existing + " ")
	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, existing, token)

	_, _, err = NormalizeCartToken("../etc/passwd")
	assert.ErrorIs(t, err, ErrCartTokenInvalid)
}
