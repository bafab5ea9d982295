package public

import "github.com/fuguang-next/internal/provider"

// Handler 用户侧接口：购物车、下单、支付与积分，以及支付宝回调
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
