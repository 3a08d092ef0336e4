package public

import (
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,notblank,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Phone     string `json:"phone" binding:"max=20"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新/登出请求
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// Register 顾客注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.CustomerAuthService.Register(service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("customer_registered", "customer_id", customer.ID)
	response.Created(c, customer)
}

// Login 顾客登录，/token/ 为同一入口
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, tokens, err := h.CustomerAuthService.Login(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"access":             tokens.Access,
		"refresh":            tokens.Refresh,
		"access_expires_at":  tokens.AccessExpiresAt,
		"refresh_expires_at": tokens.RefreshExpiresAt,
		"user":               customer,
	})
}

// RefreshToken 使用刷新令牌换取新令牌
func (h *Handler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	tokens, err := h.CustomerAuthService.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondWithRules(c, err, refreshErrorRules)
		return
	}
	response.Success(c, tokens)
}

// Logout 拉黑刷新令牌
func (h *Handler) Logout(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.CustomerAuthService.Logout(c.Request.Context(), customerID, req.Refresh); err != nil {
		respondWithRules(c, err, logoutErrorRules)
		return
	}
	response.NoContent(c)
}

// ChangePassword 修改密码，旧令牌随之失效
func (h *Handler) ChangePassword(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.CustomerAuthService.ChangePassword(customerID, service.ChangePasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithMsg(c, "password updated", nil)
}

// Me 当前顾客资料
func (h *Handler) Me(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	customer, err := h.CustomerAuthService.Me(customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, customer)
}
