package public

import (
	"strings"

	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentMethodRequest 支付方式请求，details 为原始号码
type PaymentMethodRequest struct {
	MethodType string `json:"method_type" binding:"required,oneof=CREDIT_CARD DEBIT_CARD BANK_ACCOUNT"`
	Details    string `json:"details" binding:"required,notblank,max=255"`
}

// ListPaymentMethods 当前顾客的支付方式
func (h *Handler) ListPaymentMethods(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	methods, err := h.PaymentMethodService.List(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, methods)
}

// GetPaymentMethod 支付方式详情
func (h *Handler) GetPaymentMethod(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	method, err := h.PaymentMethodService.Get(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, method)
}

// CreatePaymentMethod 新增支付方式，号码脱敏后保存
func (h *Handler) CreatePaymentMethod(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req PaymentMethodRequest
	if !bindJSON(c, &req) {
		return
	}
	method, err := h.PaymentMethodService.Create(actor, service.PaymentMethodInput{
		MethodType: strings.TrimSpace(req.MethodType),
		Details:    req.Details,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, method)
}

// UpdatePaymentMethod 更新支付方式
func (h *Handler) UpdatePaymentMethod(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req PaymentMethodRequest
	if !bindJSON(c, &req) {
		return
	}
	method, err := h.PaymentMethodService.Update(actor, id, service.PaymentMethodInput{
		MethodType: strings.TrimSpace(req.MethodType),
		Details:    req.Details,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, method)
}

// DeletePaymentMethod 删除支付方式，关联流水的引用置空
func (h *Handler) DeletePaymentMethod(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.PaymentMethodService.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.NoContent(c)
}
