package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var productSlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ProductService 商品业务服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ProductVariantInput 规格输入
type ProductVariantInput struct {
	ID        uint
	SizeLabel string
	Price     decimal.Decimal
	IsActive  *bool
	SortOrder int
}

// CreateProductInput 创建/更新商品输入
type CreateProductInput struct {
	Slug        string
	Name        string
	Description string
	ImageURL    string
	BasePrice   decimal.Decimal
	IsActive    *bool
	SortOrder   int
	Variants    []ProductVariantInput
}

// ListPublic 获取公开商品列表（含上架规格）
func (s *ProductService) ListPublic(search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		Search:       search,
		OnlyActive:   true,
		WithVariants: true,
	}
	return s.repo.List(filter)
}

// GetPublicBySlug 获取公开商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		Search:       search,
		OnlyActive:   false,
		WithVariants: true,
	}
	return s.repo.List(filter)
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	normalized, variants, err := normalizeProductInput(input)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(normalized.Slug, 0)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	product := models.Product{
		Slug:        normalized.Slug,
		Name:        normalized.Name,
		Description: normalized.Description,
		ImageURL:    normalized.ImageURL,
		BasePrice:   models.NewMoneyFromDecimal(normalized.BasePrice),
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
		Variants:    variants,
	}
	for i := range product.Variants {
		product.Variants[i].ID = 0
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update 更新商品，规格列表整体替换
func (s *ProductService) Update(id uint, input CreateProductInput) (*models.Product, error) {
	normalized, variants, err := normalizeProductInput(input)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	count, err := s.repo.CountBySlug(normalized.Slug, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugExists
	}
	existing := make(map[uint]struct{}, len(product.Variants))
	for _, variant := range product.Variants {
		existing[variant.ID] = struct{}{}
	}
	for _, variant := range variants {
		if variant.ID == 0 {
			continue
		}
		if _, ok := existing[variant.ID]; !ok {
			return nil, ErrVariantNotFound
		}
	}

	product.Slug = normalized.Slug
	product.Name = normalized.Name
	product.Description = normalized.Description
	product.ImageURL = normalized.ImageURL
	product.BasePrice = models.NewMoneyFromDecimal(normalized.BasePrice)
	product.SortOrder = input.SortOrder
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.repo.Update(product, variants); err != nil {
		return nil, err
	}
	return product, nil
}

// SetActive 上下架
func (s *ProductService) SetActive(id uint, active bool) error {
	if err := s.repo.SetActive(id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func normalizeProductInput(input CreateProductInput) (CreateProductInput, []models.ProductVariant, error) {
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	input.BasePrice = input.BasePrice.Round(2)
	if !productSlugPattern.MatchString(input.Slug) || input.Name == "" {
		return input, nil, ErrProductInvalid
	}
	if input.BasePrice.IsNegative() {
		return input, nil, ErrProductPriceInvalid
	}
	if len(input.Variants) == 0 && !input.BasePrice.IsPositive() {
		return input, nil, ErrProductPriceInvalid
	}

	variants := make([]models.ProductVariant, 0, len(input.Variants))
	seen := make(map[string]struct{}, len(input.Variants))
	for _, item := range input.Variants {
		label := strings.TrimSpace(item.SizeLabel)
		if label == "" {
			return input, nil, ErrProductInvalid
		}
		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			return input, nil, ErrProductInvalid
		}
		seen[key] = struct{}{}
		price := item.Price.Round(2)
		if !price.IsPositive() {
			return input, nil, ErrProductPriceInvalid
		}
		active := true
		if item.IsActive != nil {
			active = *item.IsActive
		}
		variants = append(variants, models.ProductVariant{
			ID:        item.ID,
			SizeLabel: label,
			Price:     models.NewMoneyFromDecimal(price),
			IsActive:  active,
			SortOrder: item.SortOrder,
		})
	}
	return input, variants, nil
}
