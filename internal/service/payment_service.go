package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/greencart/internal/constants"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/payment/stripe"
	"github.com/greencart/internal/queue"
	"github.com/greencart/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentGateway 支付网关能力，由 *stripe.Client 实现
type PaymentGateway interface {
	Currency() string
	CreatePaymentIntent(ctx context.Context, input stripe.CreateIntentInput) (*stripe.PaymentIntent, error)
	VerifyAndParseWebhook(headers map[string]string, body []byte, now time.Time) (*stripe.WebhookEvent, error)
}

// Webhook 处理结果
const (
	WebhookOutcomeCompleted       = "completed"
	WebhookOutcomeDuplicate       = "duplicate"
	WebhookOutcomeOrderNotFound   = "order_not_found"
	WebhookOutcomeOrderNotPending = "order_not_pending"
	WebhookOutcomeAmountMismatch  = "amount_mismatch"
	WebhookOutcomeMissingMetadata = "missing_metadata"
	WebhookOutcomeAcknowledged    = "acknowledged"
	WebhookOutcomeIgnored         = "ignored"
	WebhookOutcomeError           = "error"
)

var (
	errWebhookDuplicate       = errors.New("payment intent already applied")
	errWebhookOrderNotPending = errors.New("order is not pending")
)

// PaymentService 支付服务
type PaymentService struct {
	gateway         PaymentGateway
	orderRepo       repository.OrderRepository
	transactionRepo repository.TransactionRepository
	invoiceService  *InvoiceService
	queueClient     *queue.Client
}

// NewPaymentService 创建支付服务
func NewPaymentService(gateway PaymentGateway, orderRepo repository.OrderRepository, transactionRepo repository.TransactionRepository, invoiceService *InvoiceService, queueClient *queue.Client) *PaymentService {
	return &PaymentService{
		gateway:         gateway,
		orderRepo:       orderRepo,
		transactionRepo: transactionRepo,
		invoiceService:  invoiceService,
		queueClient:     queueClient,
	}
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// CreateIntentInput 创建支付意图输入，金额为最小货币单位
type CreateIntentInput struct {
	OrderID     uint
	AmountMinor int64
}

// CreatePaymentIntent 为待支付订单创建网关支付意图，返回 client_secret
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, actor Actor, input CreateIntentInput) (*stripe.PaymentIntent, error) {
	log := paymentLogger("order_id", input.OrderID, "customer_id", actor.CustomerID)
	if input.AmountMinor <= 0 {
		return nil, ErrPaymentAmountInvalid
	}
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil || !actor.owns(order.CustomerID) {
		return nil, ErrNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return nil, ErrOrderStatusInvalid
	}
	if s.gateway == nil {
		log.Errorw("payment_gateway_not_configured")
		return nil, ErrGateway
	}

	currency := s.gateway.Currency()
	expected, err := orderTotalMinor(order, currency)
	if err != nil {
		return nil, mapStripeGatewayError(err)
	}
	if expected != input.AmountMinor {
		log.Warnw("payment_intent_amount_mismatch",
			"order_total_minor", expected,
			"requested_minor", input.AmountMinor,
		)
		return nil, ErrPaymentAmountInvalid
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, stripe.CreateIntentInput{
		AmountMinor: input.AmountMinor,
		Currency:    currency,
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		Description: fmt.Sprintf("GreenCart order #%d", order.ID),
	})
	if err != nil {
		log.Errorw("payment_intent_create_failed", "error", err)
		return nil, mapStripeGatewayError(err)
	}
	log.Infow("payment_intent_created",
		"payment_intent_id", intent.ID,
		"amount_minor", intent.AmountMinor,
		"currency", intent.Currency,
	)
	return intent, nil
}

// WebhookResult Webhook 处理结果
type WebhookResult struct {
	EventID   string
	EventType string
	OrderID   uint
	Outcome   string
}

// HandleStripeWebhook 校验签名并对账
// 签名或报文错误返回 error（400）；其余情况均视为已确认（200），内部错误只记录日志
func (s *PaymentService) HandleStripeWebhook(headers map[string]string, body []byte) (*WebhookResult, error) {
	log := paymentLogger("body_size", len(body))
	if s.gateway == nil {
		log.Errorw("payment_webhook_gateway_not_configured")
		return nil, ErrSignatureInvalid
	}
	event, err := s.gateway.VerifyAndParseWebhook(headers, body, time.Now())
	if err != nil {
		log.Warnw("payment_webhook_verify_failed", "error", err)
		if errors.Is(err, stripe.ErrResponseInvalid) {
			return nil, fmt.Errorf("%w: malformed webhook payload", ErrValidation)
		}
		return nil, ErrSignatureInvalid
	}
	log = log.With(
		"event_id", event.EventID,
		"event_type", event.EventType,
		"payment_intent_id", event.PaymentIntentID,
		"order_id", event.OrderID,
	)
	log.Infow("payment_webhook_event_parsed")

	result := &WebhookResult{
		EventID:   event.EventID,
		EventType: event.EventType,
		OrderID:   event.OrderID,
	}
	switch event.EventType {
	case constants.StripeEventPaymentIntentSucceeded:
		outcome, err := s.applyPaymentSucceeded(event, log)
		if err != nil {
			log.Errorw("payment_webhook_apply_failed", "error", err)
			result.Outcome = WebhookOutcomeError
			return result, nil
		}
		result.Outcome = outcome
		if outcome == WebhookOutcomeCompleted {
			s.afterOrderCompleted(event.OrderID, log)
		}
	case constants.StripeEventPaymentIntentFailed, constants.StripeEventPaymentIntentCanceled:
		log.Infow("payment_webhook_intent_not_completed", "status", event.Status)
		result.Outcome = WebhookOutcomeAcknowledged
	default:
		log.Debugw("payment_webhook_event_ignored")
		result.Outcome = WebhookOutcomeIgnored
	}
	log.Infow("payment_webhook_processed", "outcome", result.Outcome)
	return result, nil
}

// applyPaymentSucceeded 写入支付流水并在金额足额时将订单 PENDING -> COMPLETED
// 支付意图唯一索引保证重复事件只生效一次；订单已非 PENDING 时仍落流水以便退款
func (s *PaymentService) applyPaymentSucceeded(event *stripe.WebhookEvent, log *zap.SugaredLogger) (string, error) {
	if event.OrderID == 0 || event.PaymentIntentID == "" {
		log.Warnw("payment_webhook_missing_metadata")
		return WebhookOutcomeMissingMetadata, nil
	}

	var outcome string
	var err error
	// 状态迁移与过期取消并发时回滚重来，第二次按非 PENDING 订单落流水
	for attempt := 0; attempt < 2; attempt++ {
		outcome, err = s.applyPaymentInTx(event, log)
		if !errors.Is(err, errWebhookOrderNotPending) {
			break
		}
	}
	switch {
	case errors.Is(err, errWebhookDuplicate):
		return WebhookOutcomeDuplicate, nil
	case errors.Is(err, errWebhookOrderNotPending):
		return WebhookOutcomeOrderNotPending, nil
	case err != nil:
		return "", err
	}
	return outcome, nil
}

func (s *PaymentService) applyPaymentInTx(event *stripe.WebhookEvent, log *zap.SugaredLogger) (string, error) {
	outcome := WebhookOutcomeCompleted
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		transactionRepo := s.transactionRepo.WithTx(tx)

		existing, err := transactionRepo.GetByPaymentIntentID(event.PaymentIntentID)
		if err != nil {
			return err
		}
		if existing != nil {
			outcome = WebhookOutcomeDuplicate
			return nil
		}
		order, err := orderRepo.GetByID(event.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			outcome = WebhookOutcomeOrderNotFound
			return nil
		}
		if event.CustomerID != 0 && event.CustomerID != order.CustomerID {
			log.Warnw("payment_webhook_customer_mismatch", "order_customer_id", order.CustomerID)
		}

		currency := event.Currency
		if currency == "" && s.gateway != nil {
			currency = s.gateway.Currency()
		}
		amount := order.TotalAmount
		if event.Amount != "" {
			if parsed, err := models.NewMoneyFromString(event.Amount); err == nil {
				amount = parsed
			}
		}
		now := time.Now()
		txn := &models.Transaction{
			OrderID:               order.ID,
			CustomerID:            order.CustomerID,
			TransactionID:         uuid.NewString(),
			Amount:                amount,
			Currency:              currency,
			StripePaymentIntentID: event.PaymentIntentID,
			StripeEventID:         event.EventID,
			TransactionDate:       now,
		}
		if err := transactionRepo.Create(txn); err != nil {
			if repository.IsUniqueViolation(err) {
				return errWebhookDuplicate
			}
			return err
		}

		if !isTransitionAllowed(order.Status, constants.OrderStatusCompleted) {
			log.Errorw("payment_received_for_cancelled_order",
				"order_status", order.Status,
				"transaction_id", txn.TransactionID,
				"amount", amount.String(),
			)
			outcome = WebhookOutcomeOrderNotPending
			return nil
		}
		short, expected, err := s.isUnderpaid(order, event, currency)
		if err != nil {
			return err
		}
		if short {
			log.Warnw("payment_webhook_amount_mismatch",
				"order_total_minor", expected,
				"paid_minor", event.AmountMinor,
				"paid_currency", event.Currency,
				"transaction_id", txn.TransactionID,
			)
			outcome = WebhookOutcomeAmountMismatch
			return nil
		}

		trackingNumber, err := nextTrackingNumber(orderRepo)
		if err != nil {
			return err
		}
		affected, err := orderRepo.TransitionStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusCompleted, map[string]interface{}{
			"tracking_number": trackingNumber,
			"completed_at":    now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return errWebhookOrderNotPending
		}
		log.Infow("payment_webhook_order_completed",
			"transaction_id", txn.TransactionID,
			"tracking_number", trackingNumber,
			"amount", amount.String(),
		)
		return nil
	})
	return outcome, err
}

// isUnderpaid 实付币种不符或金额低于订单应付时视为未足额
func (s *PaymentService) isUnderpaid(order *models.Order, event *stripe.WebhookEvent, currency string) (bool, int64, error) {
	if s.gateway != nil && event.Currency != "" && !strings.EqualFold(event.Currency, s.gateway.Currency()) {
		return true, 0, nil
	}
	expected, err := orderTotalMinor(order, currency)
	if err != nil {
		return false, 0, err
	}
	return event.AmountMinor < expected, expected, nil
}

// orderTotalMinor 订单应付金额的最小货币单位，全额抵扣的订单为 0
func orderTotalMinor(order *models.Order, currency string) (int64, error) {
	if !order.TotalAmount.Decimal.IsPositive() {
		return 0, nil
	}
	return stripe.ToMinorAmount(order.TotalAmount.Decimal, currency)
}

// nextTrackingNumber 生成未被占用的物流单号，冲突时重新生成
func nextTrackingNumber(orderRepo repository.OrderRepository) (string, error) {
	for attempt := 0; attempt < trackingNumberAttempts; attempt++ {
		candidate := generateTrackingNumber()
		exists, err := orderRepo.TrackingNumberExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("tracking number collision after %d attempts", trackingNumberAttempts)
}

// afterOrderCompleted 提交后的副作用：队列可用时异步开票，否则同步开票
func (s *PaymentService) afterOrderCompleted(orderID uint, log *zap.SugaredLogger) {
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueInvoiceIssue(queue.InvoiceIssuePayload{OrderID: orderID})
		if err == nil {
			return
		}
		log.Warnw("payment_enqueue_invoice_failed", "error", err)
	}
	if s.invoiceService == nil {
		return
	}
	if _, err := s.invoiceService.IssueForOrder(orderID); err != nil {
		log.Warnw("payment_invoice_issue_failed", "error", err)
	}
}

// ListTransactions 支付流水列表（员工查看全部）
func (s *PaymentService) ListTransactions(actor Actor, page, pageSize int) ([]models.Transaction, int64, error) {
	return s.transactionRepo.List(repository.TransactionListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: actor.scopeCustomerID(),
	})
}

// GetTransaction 支付流水详情
func (s *PaymentService) GetTransaction(actor Actor, id uint) (*models.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if txn == nil || !actor.owns(txn.CustomerID) {
		return nil, ErrNotFound
	}
	return txn, nil
}

func mapStripeGatewayError(err error) error {
	switch {
	case errors.Is(err, stripe.ErrSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, stripe.ErrAmountInvalid):
		return ErrPaymentAmountInvalid
	default:
		return ErrGateway
	}
}
