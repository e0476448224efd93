package admin

import (
	"strconv"
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductVariantRequest 规格请求
type ProductVariantRequest struct {
	ID        uint   `json:"id"`
	SizeLabel string `json:"size_label"`
	Price     string `json:"price"`
	IsActive  *bool  `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	Slug        string                  `json:"slug" binding:"required"`
	Name        string                  `json:"name" binding:"required"`
	Description string                  `json:"description"`
	ImageURL    string                  `json:"image_url"`
	BasePrice   string                  `json:"base_price"`
	IsActive    *bool                   `json:"is_active"`
	SortOrder   int                     `json:"sort_order"`
	Variants    []ProductVariantRequest `json:"variants"`
}

// ProductActiveRequest 上下架请求
type ProductActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (req ProductRequest) toServiceInput() (service.CreateProductInput, error) {
	input := service.CreateProductInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
		SortOrder:   req.SortOrder,
	}
	basePrice, err := parseOptionalDecimal(req.BasePrice)
	if err != nil {
		return input, err
	}
	input.BasePrice = basePrice
	for _, variant := range req.Variants {
		price, err := parseOptionalDecimal(variant.Price)
		if err != nil {
			return input, err
		}
		input.Variants = append(input.Variants, service.ProductVariantInput{
			ID:        variant.ID,
			SizeLabel: variant.SizeLabel,
			Price:     price,
			IsActive:  variant.IsActive,
			SortOrder: variant.SortOrder,
		})
	}
	return input, nil
}

func parseOptionalDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, service.ErrProductPriceInvalid
	}
	return value, nil
}

func parseProductID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}

// GetAdminProducts 获取商品列表 (Admin)
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, pageSize := pageFromQuery(c)
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListAdmin(search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetAdminProduct 获取商品详情 (Admin)
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	product, err := h.ProductService.GetAdminByID(id)
	if err != nil {
		respondProductError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	input, err := req.toServiceInput()
	if err != nil {
		respondProductError(c, err, "error.save_failed")
		return
	}
	product, err := h.ProductService.Create(input)
	if err != nil {
		respondProductError(c, err, "error.save_failed")
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	input, err := req.toServiceInput()
	if err != nil {
		respondProductError(c, err, "error.save_failed")
		return
	}
	product, err := h.ProductService.Update(id, input)
	if err != nil {
		respondProductError(c, err, "error.save_failed")
		return
	}
	response.Success(c, product)
}

// SetProductActive 商品上下架
func (h *Handler) SetProductActive(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	var req ProductActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.ProductService.SetActive(id, *req.IsActive); err != nil {
		respondProductError(c, err, "error.save_failed")
		return
	}
	response.Success(c, gin.H{"id": id, "is_active": *req.IsActive})
}
