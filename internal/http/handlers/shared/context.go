package shared

import (
	"strconv"
	"strings"

	"github.com/greencart/internal/constants"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	CustomerIDKey    = constants.ContextKeyCustomerID
	CustomerEmailKey = constants.ContextKeyEmail
	IsStaffKey       = constants.ContextKeyIsStaff
)

// GetContextUint 从上下文读取 uint 值并统一处理错误响应。
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "authentication credentials were not provided", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "invalid "+key, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, "invalid "+key, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, "invalid "+key+" type", nil)
		return 0, false
	}
}

// GetActor 组装当前调用者
func GetActor(c *gin.Context) (service.Actor, bool) {
	customerID, ok := GetContextUint(c, CustomerIDKey)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{CustomerID: customerID, IsStaff: c.GetBool(IsStaffKey)}, true
}

// ParseIDParam 解析路径中的数字 ID，非法时直接返回 404
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeNotFound, "not found", nil)
		return 0, false
	}
	return uint(id), true
}
