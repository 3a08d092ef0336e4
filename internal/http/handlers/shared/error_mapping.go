package shared

import (
	"errors"

	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedHandlerError 定义业务错误到接口错误响应的映射关系。
// Msg 为空时直接使用错误文本，保留 %w 包装的字段细节
type MappedHandlerError struct {
	Target error
	Code   int
	Msg    string
	Log    bool
}

// RespondWithMappedError 依次匹配规则，未命中时按 fallback 返回并记录日志
func RespondWithMappedError(c *gin.Context, err error, rules []MappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if !errors.Is(err, rule.Target) {
			continue
		}
		msg := rule.Msg
		if msg == "" {
			msg = err.Error()
		}
		var logged error
		if rule.Log {
			logged = err
		}
		RespondError(c, rule.Code, msg, logged)
		return
	}
	if service.IsValidationError(err) {
		RespondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	RespondError(c, fallbackCode, fallbackMsg, err)
}

// ConcatMappedHandlerErrors 合并多组映射规则，靠前的优先
func ConcatMappedHandlerErrors(groups ...[]MappedHandlerError) []MappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// CommonErrorRules 通用错误分类
var CommonErrorRules = []MappedHandlerError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Msg: "not found"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Msg: "you do not have permission to perform this action"},
	{Target: service.ErrInsufficientStock, Code: response.CodeBadRequest, Msg: "insufficient stock"},
	{Target: service.ErrAuthentication, Code: response.CodeUnauthorized, Msg: "authentication failed"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Msg: "invalid credentials"},
	{Target: service.ErrAccountDisabled, Code: response.CodeUnauthorized, Msg: "account disabled"},
	{Target: service.ErrSignatureInvalid, Code: response.CodeBadRequest, Msg: "invalid signature"},
	{Target: service.ErrGateway, Code: response.CodeBadRequest, Msg: "payment gateway error", Log: true},
}

// RespondServiceError 使用通用规则映射业务错误
func RespondServiceError(c *gin.Context, err error) {
	RespondWithMappedError(c, err, CommonErrorRules, response.CodeInternal, "internal server error")
}
