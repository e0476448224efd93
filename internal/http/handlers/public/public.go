package public

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// PublicConfigView 店铺前台配置
type PublicConfigView struct {
	ShopName              string       `json:"shop_name"`
	LogoURL               string       `json:"logo_url"`
	Currency              string       `json:"currency"`
	FlatShippingFee       models.Money `json:"flat_shipping_fee"`
	FreeShippingThreshold models.Money `json:"free_shipping_threshold"`
	CaptchaAdminLogin     bool         `json:"captcha_admin_login"`
}

// GetConfig 获取店铺前台配置
func (h *Handler) GetConfig(c *gin.Context) {
	var cached PublicConfigView
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	settings, err := h.SettingService.GetShopSettings()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	data := PublicConfigView{
		ShopName:              strings.TrimSpace(h.Config.Shop.Name),
		LogoURL:               strings.TrimSpace(h.Config.Shop.LogoURL),
		Currency:              settings.Currency,
		FlatShippingFee:       models.NewMoneyFromDecimal(settings.FlatShippingFee),
		FreeShippingThreshold: models.NewMoneyFromDecimal(settings.FreeShippingThreshold),
	}
	if h.CaptchaService != nil {
		data.CaptchaAdminLogin = h.CaptchaService.Enabled()
	}

	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL)
	response.Success(c, data)
}

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := pageFromQuery(c)
	search := strings.TrimSpace(c.Query("search"))

	products, total, err := h.ProductService.ListPublic(search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}

	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProductBySlug 获取商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.ProductService.GetPublicBySlug(slug)
	if err != nil {
		respondWithMappedError(c, err, []mappedHandlerError{
			{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
		}, response.CodeInternal, "error.fetch_failed")
		return
	}
	response.Success(c, product)
}
