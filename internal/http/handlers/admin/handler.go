package admin

import "github.com/greencart/internal/provider"

// Handler 员工管理接口处理器入口
// 说明：该处理器仅用于员工侧 API，路由层已完成员工鉴权。
type Handler struct {
	*provider.Container
}

// New 创建员工处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
