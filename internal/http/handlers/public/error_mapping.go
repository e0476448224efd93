package public

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

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartCommonErrorRules = []mappedHandlerError{
	{target: service.ErrCartTokenInvalid, code: response.CodeBadRequest, key: "error.cart_token_invalid"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, key: "error.invalid_quantity"},
}

var cartAddExtraErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_unavailable"},
	{target: service.ErrVariantNotFound, code: response.CodeNotFound, key: "error.variant_not_found"},
	{target: service.ErrVariantNotAvailable, code: response.CodeBadRequest, key: "error.product_unavailable"},
	{target: service.ErrProductPriceInvalid, code: response.CodeBadRequest, key: "error.product_invalid"},
}

var orderSubmitErrorRules = []mappedHandlerError{
	{target: service.ErrCartTokenInvalid, code: response.CodeBadRequest, key: "error.cart_token_invalid"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrCustomerInvalid, code: response.CodeBadRequest, key: "error.customer_invalid"},
	{target: service.ErrOrderIDInvalid, code: response.CodeBadRequest, key: "error.order_id_invalid"},
}

var orderLookupErrorRules = []mappedHandlerError{
	{target: service.ErrOrderIDInvalid, code: response.CodeBadRequest, key: "error.order_id_invalid"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartCommonErrorRules, response.CodeInternal, "error.cart_save_failed")
}

func respondCartAddError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(cartCommonErrorRules, cartAddExtraErrorRules), response.CodeInternal, "error.cart_save_failed")
}

func respondOrderSubmitError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderSubmitErrorRules, response.CodeInternal, "error.order_create_failed")
}

func respondOrderLookupError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderLookupErrorRules, response.CodeInternal, "error.fetch_failed")
}
