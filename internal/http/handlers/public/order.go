package public

import (
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitOrderRequest 结账请求
type SubmitOrderRequest struct {
	OrderID  string              `json:"order_id"`
	Customer models.CustomerInfo `json:"customer" binding:"required"`
}

// SubmitOrderResponse 结账响应
type SubmitOrderResponse struct {
	OrderID  string `json:"order_id"`
	Redirect string `json:"redirect"`
	Replayed bool   `json:"replayed"`
}

// SubmitOrder 由购物车下单
func (h *Handler) SubmitOrder(c *gin.Context) {
	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.customer_invalid", nil)
		return
	}
	token, ok := resolveCartToken(c)
	if !ok {
		return
	}

	result, err := h.OrderService.Submit(c.Request.Context(), token, service.SubmitOrderInput{
		OrderID:  req.OrderID,
		Customer: req.Customer,
		ClientIP: clientIP(c),
		Locale:   i18n.ResolveLocale(c),
	})
	if err != nil {
		respondOrderSubmitError(c, err)
		return
	}
	if result.Replayed {
		requestLog(c).Infow("order_submit_replayed", "order_id", result.OrderID)
	}

	response.Success(c, SubmitOrderResponse{
		OrderID:  result.OrderID,
		Redirect: service.ConfirmationPath(result.OrderID),
		Replayed: result.Replayed,
	})
}

// GetOrder 订单确认页查询（需提供下单邮箱）
func (h *Handler) GetOrder(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("id"))
	email := strings.TrimSpace(c.Query("email"))
	if orderID == "" || email == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetForCustomer(orderID, email)
	if err != nil {
		respondOrderLookupError(c, err)
		return
	}
	response.Success(c, order)
}
