package admin

import "github.com/fuguang-next/internal/provider"

// Handler 运营后台接口：发券、积分调整、支付异常处理
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
