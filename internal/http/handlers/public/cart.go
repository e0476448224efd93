package public

import (
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	VariantID uint   `json:"variant_id"`
	Quantity  int    `json:"quantity" binding:"max=9999"`
	SizeLabel string `json:"size_label"`
}

// UpdateCartItemRequest 修改数量请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"max=9999"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	token, ok := resolveCartToken(c)
	if !ok {
		return
	}
	view, err := h.CartService.Get(c.Request.Context(), token)
	if err != nil {
		respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.fetch_failed")
		return
	}
	response.Success(c, view)
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	token, ok := resolveCartToken(c)
	if !ok {
		return
	}
	view, err := h.CartService.Add(c.Request.Context(), token, service.AddCartItemInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		SizeLabel: req.SizeLabel,
	})
	if err != nil {
		respondCartAddError(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateCartItem 修改购物车行数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	variantID := strings.TrimSpace(c.Param("variant_id"))
	if variantID == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	token, ok := resolveCartToken(c)
	if !ok {
		return
	}
	view, err := h.CartService.UpdateQuantity(c.Request.Context(), token, variantID, req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// DeleteCartItem 移除购物车行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	variantID := strings.TrimSpace(c.Param("variant_id"))
	if variantID == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	token, ok := resolveCartToken(c)
	if !ok {
		return
	}
	view, err := h.CartService.Remove(c.Request.Context(), token, variantID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	token, ok := resolveCartToken(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(c.Request.Context(), token); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, nil)
}
