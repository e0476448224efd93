package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/google/uuid"
)

// CartService 购物车服务：每次变更后整体写回槽位
type CartService struct {
	store       CartStore
	productRepo repository.ProductRepository
	analytics   AnalyticsPublisher
	currency    string
}

// NewCartService 创建购物车服务
func NewCartService(store CartStore, productRepo repository.ProductRepository, analytics AnalyticsPublisher, currency string) *CartService {
	if analytics == nil {
		analytics = LogAnalyticsPublisher{}
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = constants.CurrencyDefault
	}
	return &CartService{
		store:       store,
		productRepo: productRepo,
		analytics:   analytics,
		currency:    currency,
	}
}

// AddCartItemInput 加入购物车参数
type AddCartItemInput struct {
	ProductID uint
	VariantID uint
	Quantity  int
	SizeLabel string
}

// CartView 购物车视图
type CartView struct {
	Token     string       `json:"token"`
	Lines     []cart.Line  `json:"lines"`
	ItemCount int          `json:"item_count"`
	Subtotal  models.Money `json:"subtotal"`
	Currency  string       `json:"currency"`
	OpenCart  bool         `json:"open_cart"`
}

// NormalizeCartToken 校验购物车令牌，空令牌时生成新令牌
func NormalizeCartToken(token string) (string, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.NewString(), true, nil
	}
	parsed, err := uuid.Parse(token)
	if err != nil {
		return "", false, ErrCartTokenInvalid
	}
	return parsed.String(), false, nil
}

// Get 获取购物车
func (s *CartService) Get(ctx context.Context, token string) (*CartView, error) {
	current, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.view(token, current, false), nil
}

// Add 加入购物车，价格取加入时的目录价
func (s *CartService) Add(ctx context.Context, token string, input AddCartItemInput) (*CartView, error) {
	if input.Quantity < 0 || input.Quantity > cart.MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	item, sizeLabel, err := s.resolveCatalogItem(input)
	if err != nil {
		return nil, err
	}

	current, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	if existing, ok := current.Line(cart.ResolveLineIdentity(item)); ok && existing.Quantity > cart.MaxLineQuantity-input.Quantity {
		return nil, ErrInvalidQuantity
	}
	line := current.Add(item, input.Quantity, sizeLabel)
	if err := s.store.Save(ctx, token, current); err != nil {
		return nil, err
	}

	s.analytics.Publish(ctx, AnalyticsEvent{
		Name:       constants.AnalyticsEventAddToCart,
		CartToken:  token,
		Value:      line.UnitPrice.Mul(decimalFromInt(input.Quantity)),
		Currency:   s.currency,
		Items:      analyticsItemsFromLines([]cart.Line{line}),
		OccurredAt: time.Now(),
	})
	return s.view(token, current, true), nil
}

// Remove 移除购物车行
func (s *CartService) Remove(ctx context.Context, token, variantID string) (*CartView, error) {
	current, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.Remove(variantID) {
		if err := s.store.Save(ctx, token, current); err != nil {
			return nil, err
		}
	}
	return s.view(token, current, false), nil
}

// UpdateQuantity 更新数量，quantity < 1 时不做任何变更，超过单行上限时拒绝
func (s *CartService) UpdateQuantity(ctx context.Context, token, variantID string, quantity int) (*CartView, error) {
	if quantity > cart.MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}
	current, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	if current.UpdateQuantity(variantID, quantity) {
		if err := s.store.Save(ctx, token, current); err != nil {
			return nil, err
		}
	}
	return s.view(token, current, false), nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, token string) error {
	return s.store.Save(ctx, token, cart.New())
}

// Load 读取购物车模型（供下单使用）
func (s *CartService) Load(ctx context.Context, token string) (*cart.Cart, error) {
	return s.store.Load(ctx, token)
}

func (s *CartService) resolveCatalogItem(input AddCartItemInput) (cart.Item, string, error) {
	if input.ProductID == 0 {
		return cart.Item{}, "", ErrProductNotFound
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return cart.Item{}, "", err
	}
	if product == nil {
		return cart.Item{}, "", ErrProductNotFound
	}
	if !product.IsActive {
		return cart.Item{}, "", ErrProductNotAvailable
	}

	item := cart.Item{
		ProductID: formatID(product.ID),
		Name:      product.Name,
		Price:     product.BasePrice.Decimal,
		ImageURL:  product.ImageURL,
	}
	sizeLabel := strings.TrimSpace(input.SizeLabel)

	if input.VariantID != 0 {
		variant := findVariant(product.Variants, input.VariantID)
		if variant == nil {
			return cart.Item{}, "", ErrVariantNotFound
		}
		if !variant.IsActive {
			return cart.Item{}, "", ErrVariantNotAvailable
		}
		item.VariantID = variantLineID(variant.ID)
		item.Price = variant.Price.Decimal
		if sizeLabel == "" {
			sizeLabel = variant.SizeLabel
		}
		return item, sizeLabel, nil
	}

	for _, variant := range product.Variants {
		if !variant.IsActive {
			continue
		}
		item.Variants = append(item.Variants, cart.VariantRef{
			ID:        variantLineID(variant.ID),
			SizeLabel: variant.SizeLabel,
			Price:     variant.Price.Decimal,
		})
	}
	if len(item.Variants) == 0 {
		if !item.Price.IsPositive() {
			return cart.Item{}, "", ErrProductPriceInvalid
		}
		item.VariantID = productLineID(product.ID)
	}
	return item, sizeLabel, nil
}

func (s *CartService) view(token string, c *cart.Cart, openCart bool) *CartView {
	return &CartView{
		Token:     token,
		Lines:     c.Lines(),
		ItemCount: c.ItemCount(),
		Subtotal:  models.NewMoneyFromDecimal(c.Total()),
		Currency:  s.currency,
		OpenCart:  openCart,
	}
}

func findVariant(variants []models.ProductVariant, id uint) *models.ProductVariant {
	for i := range variants {
		if variants[i].ID == id {
			return &variants[i]
		}
	}
	return nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// 商品与规格来自两张自增表，行身份加前缀区分，避免同号合并
func variantLineID(id uint) string {
	return "v:" + formatID(id)
}

func productLineID(id uint) string {
	return "p:" + formatID(id)
}
