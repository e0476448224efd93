package admin

import (
	"errors"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// 与前台配置缓存键保持一致
const publicConfigCacheKey = "public:config"

// GetShopSettings 获取店铺配置
func (h *Handler) GetShopSettings(c *gin.Context) {
	settings, err := h.SettingService.GetShopSettings()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, settings)
}

// UpdateShopSettings 更新店铺配置（部分字段）
func (h *Handler) UpdateShopSettings(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	settings, err := h.SettingService.UpdateShopSettings(req)
	if err != nil {
		if errors.Is(err, service.ErrSettingInvalid) {
			respondError(c, response.CodeBadRequest, "error.setting_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}
	if err := cache.Del(c.Request.Context(), publicConfigCacheKey); err != nil {
		requestLog(c).Warnw("admin_public_config_cache_invalidate_failed", "error", err)
	}
	response.Success(c, settings)
}
