package admin

import "github.com/storefront-next/internal/provider"

// Handler 后台控制台接口，服务依赖统一从容器取用
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
