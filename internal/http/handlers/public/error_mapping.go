package public

import (
	handlershared "github.com/greencart/internal/http/handlers/shared"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

// 刷新令牌失效按未认证处理
var refreshErrorRules = []handlershared.MappedHandlerError{
	{Target: service.ErrInvalidToken, Code: response.CodeUnauthorized, Msg: "token is invalid or expired"},
	{Target: service.ErrTokenRevoked, Code: response.CodeUnauthorized, Msg: "token is blacklisted"},
	{Target: service.ErrAccountDisabled, Code: response.CodeUnauthorized, Msg: "account disabled"},
}

// 登出时令牌非法属于请求错误
var logoutErrorRules = []handlershared.MappedHandlerError{
	{Target: service.ErrInvalidToken, Code: response.CodeBadRequest, Msg: "token is invalid or expired"},
	{Target: service.ErrTokenRevoked, Code: response.CodeBadRequest, Msg: "token is blacklisted"},
}

// 支付意图：订单不存在或不属于当前顾客时统一返回 404
var paymentIntentErrorRules = []handlershared.MappedHandlerError{
	{Target: service.ErrPaymentAmountInvalid, Code: response.CodeBadRequest},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Msg: "order is not pending"},
}

func respondWithRules(c *gin.Context, err error, rules []handlershared.MappedHandlerError) {
	handlershared.RespondWithMappedError(c, err,
		handlershared.ConcatMappedHandlerErrors(rules, handlershared.CommonErrorRules),
		response.CodeInternal, "internal server error",
	)
}
