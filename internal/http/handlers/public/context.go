package public

import (
	"strings"

	"github.com/storefront-next/internal/constants"
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func pageFromQuery(c *gin.Context) (int, int) {
	return handlershared.PageFromQuery(c)
}

// resolveCartToken 读取请求头中的购物车令牌，缺失时生成新令牌，并回写到响应头
func resolveCartToken(c *gin.Context) (string, bool) {
	token, _, err := service.NormalizeCartToken(c.GetHeader(constants.HeaderCartToken))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.cart_token_invalid", nil)
		return "", false
	}
	c.Header(constants.HeaderCartToken, token)
	return token, true
}

func clientIP(c *gin.Context) string {
	return strings.TrimSpace(c.ClientIP())
}
