package service

import "errors"

// 通用错误
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("service unavailable")
)

// 库存与订单
var (
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrInvalidOrderItem       = errors.New("invalid order item")
	ErrProductNotFound        = errors.New("product not found")
	ErrEmptyOrder             = errors.New("order has no items")
	ErrOrderStatusInvalid     = errors.New("order status does not allow this operation")
	ErrInvalidStock           = errors.New("stock must be a non-negative integer")
	ErrInvalidCoupon          = errors.New("invalid or expired coupon code")
	ErrCouponCodeExists       = errors.New("coupon code already exists")
	ErrCategoryNameExists     = errors.New("category name already exists")
	ErrInvoiceOrderIncomplete = errors.New("invoice can only be issued for completed orders")
)

// 支付
var (
	ErrSignatureInvalid       = errors.New("signature verification failed")
	ErrGateway                = errors.New("payment gateway error")
	ErrPaymentAmountInvalid   = errors.New("amount must be a positive integer in minor units")
	ErrPaymentMethodType      = errors.New("invalid payment method type")
	ErrPaymentMethodDuplicate = errors.New("payment method of this type already exists")
)

// 认证
var (
	ErrAuthentication     = errors.New("authentication failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrEmailExists        = errors.New("email already registered")
	ErrUsernameExists     = errors.New("username already taken")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrOldPasswordInvalid = errors.New("old password is incorrect")
)

// 评分与推荐
var (
	ErrRatingOutOfRange         = errors.New("rating must be between 1 and 5")
	ErrRatingExists             = errors.New("product already rated")
	ErrRecommendationSelf       = errors.New("product cannot recommend itself")
	ErrRecommendationDuplicated = errors.New("recommendation already exists")
)

// IsValidationError 判断是否属于参数校验类错误（映射为 400）
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var validationErrors = []error{
	ErrValidation,
	ErrInvalidQuantity,
	ErrInvalidOrderItem,
	ErrProductNotFound,
	ErrEmptyOrder,
	ErrOrderStatusInvalid,
	ErrInvalidStock,
	ErrInvalidCoupon,
	ErrCouponCodeExists,
	ErrCategoryNameExists,
	ErrInvoiceOrderIncomplete,
	ErrPaymentAmountInvalid,
	ErrPaymentMethodType,
	ErrPaymentMethodDuplicate,
	ErrInvalidToken,
	ErrTokenRevoked,
	ErrEmailExists,
	ErrUsernameExists,
	ErrWeakPassword,
	ErrPasswordMismatch,
	ErrOldPasswordInvalid,
	ErrRatingOutOfRange,
	ErrRatingExists,
	ErrRecommendationSelf,
	ErrRecommendationDuplicated,
}
