package public

import "github.com/greencart/internal/provider"

// Handler 前台/顾客接口处理器入口
// 说明：该处理器用于公开目录与顾客侧 API。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
