package admin

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrProductInvalid, code: response.CodeBadRequest, key: "error.product_invalid"},
	{target: service.ErrProductPriceInvalid, code: response.CodeBadRequest, key: "error.product_invalid"},
	{target: service.ErrSlugExists, code: response.CodeBadRequest, key: "error.slug_exists"},
	{target: service.ErrVariantNotFound, code: response.CodeNotFound, key: "error.variant_not_found"},
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, key: "error.order_status_invalid"},
}

var emailErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.email_invalid"},
	{target: service.ErrEmailRecipientRejected, code: response.CodeBadRequest, key: "error.email_recipient_rejected"},
	{target: service.ErrEmailServiceDisabled, code: response.CodeBadRequest, key: "error.email_disabled"},
	{target: service.ErrEmailServiceNotConfigured, code: response.CodeBadRequest, key: "error.email_not_configured"},
	{target: service.ErrEmailServiceUnavailable, code: response.CodeInternal, key: "error.email_unavailable"},
	{target: service.ErrNotificationInvalid, code: response.CodeBadRequest, key: "error.template_invalid"},
	{target: service.ErrNotificationTemplate, code: response.CodeBadRequest, key: "error.template_invalid"},
}

func respondProductError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, productErrorRules, response.CodeInternal, fallbackKey)
}

func respondOrderError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, fallbackKey)
}

func respondEmailError(c *gin.Context, err error) {
	respondWithMappedError(c, err, emailErrorRules, response.CodeInternal, "error.email_send_failed")
}
