package public

import (
	"io"

	handlershared "github.com/greencart/internal/http/handlers/shared"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

const maxWebhookBodyBytes = 64 << 10

// PaymentIntentRequest 创建支付意图请求，amount 为最小货币单位
type PaymentIntentRequest struct {
	Amount  int64 `json:"amount" binding:"required,min=1"`
	OrderID uint  `json:"order_id" binding:"required"`
}

// CreatePaymentIntent 为待支付订单创建网关支付意图
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req PaymentIntentRequest
	if !bindJSON(c, &req) {
		return
	}
	intent, err := h.PaymentService.CreatePaymentIntent(c.Request.Context(), actor, service.CreateIntentInput{
		OrderID:     req.OrderID,
		AmountMinor: req.Amount,
	})
	if err != nil {
		respondWithRules(c, err, paymentIntentErrorRules)
		return
	}
	response.Success(c, gin.H{
		"client_secret":     intent.ClientSecret,
		"payment_intent_id": intent.ID,
	})
}

// StripeWebhook Stripe 事件回调，只依赖签名校验
func (h *Handler) StripeWebhook(c *gin.Context) {
	log := requestLog(c)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		log.Warnw("payment_webhook_body_read_failed", "error", err)
		respondError(c, response.CodeBadRequest, "invalid payload", nil)
		return
	}
	if len(body) > maxWebhookBodyBytes {
		log.Warnw("payment_webhook_body_too_large", "limit_bytes", maxWebhookBodyBytes)
		respondError(c, response.CodeBadRequest, "payload too large", nil)
		return
	}
	headers := make(map[string]string, len(c.Request.Header))
	for key, values := range c.Request.Header {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}
	result, err := h.PaymentService.HandleStripeWebhook(headers, body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	log.Infow("payment_webhook_acknowledged",
		"event_id", result.EventID,
		"event_type", result.EventType,
		"order_id", result.OrderID,
		"outcome", result.Outcome,
	)
	response.Success(c, gin.H{
		"received":   true,
		"event_type": result.EventType,
		"outcome":    result.Outcome,
	})
}

// ListTransactions 支付流水列表
func (h *Handler) ListTransactions(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	items, total, err := h.PaymentService.ListTransactions(actor, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetTransaction 支付流水详情
func (h *Handler) GetTransaction(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	txn, err := h.PaymentService.GetTransaction(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, txn)
}
