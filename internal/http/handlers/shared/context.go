package shared

import (
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入 gin 上下文的键
const (
	AdminIDKey      = "admin_id"
	AdminNameKey    = "username"
	AdminIsSuperKey = "admin_is_super"
	RequestIDKey    = response.RequestIDKey
)

// AdminIDFromContext 读取当前管理员 ID，缺失或非法时直接写入 401 响应
func AdminIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get(AdminIDKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok {
		RespondError(c, response.CodeInternal, "error.internal", nil)
		return 0, false
	}
	if id == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	return id, true
}

// IsSuperAdmin 当前管理员是否为超级管理员
func IsSuperAdmin(c *gin.Context) bool {
	value, exists := c.Get(AdminIsSuperKey)
	if !exists {
		return false
	}
	flag, ok := value.(bool)
	return ok && flag
}
