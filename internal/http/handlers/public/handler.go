package public

import "github.com/storefront-next/internal/provider"

// Handler 店铺前台接口：商品浏览、购物车、下单与留言，全部免登录
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
