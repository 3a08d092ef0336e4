package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/greencart/internal/config"
	"github.com/greencart/internal/constants"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/payment/stripe"
	"github.com/greencart/internal/queue"
	"github.com/greencart/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test"

func newTestPaymentService(t *testing.T, svc *testServices, apiBaseURL string) *PaymentService {
	t.Helper()
	if apiBaseURL == "" {
		apiBaseURL = "https://api.stripe.com"
	}
	client, err := stripe.NewClient(stripe.Config{
		SecretKey:     "sk_test",
		WebhookSecret: testWebhookSecret,
		APIBaseURL:    apiBaseURL,
		Currency:      "usd",
		Timeout:       2 * time.Second,
	}, nil)
	require.NoError(t, err)
	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	require.NoError(t, err)
	return NewPaymentService(
		client,
		repository.NewOrderRepository(svc.db),
		repository.NewTransactionRepository(svc.db),
		svc.invoices,
		queueClient,
	)
}

func signedWebhook(t *testing.T, eventType, intentID string, orderID, customerID uint, amountMinor int64) (map[string]string, []byte) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":   "evt_" + intentID,
		"type": eventType,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":       intentID,
				"object":   "payment_intent",
				"amount":   amountMinor,
				"currency": "usd",
				"status":   "succeeded",
				"metadata": map[string]string{
					"order_id":    strconv.FormatUint(uint64(orderID), 10),
					"customer_id": strconv.FormatUint(uint64(customerID), 10),
				},
			},
		},
	})
	require.NoError(t, err)
	ts := time.Now().Unix()
	headers := map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=%s", ts, stripe.ComputeSignature(testWebhookSecret, ts, body)),
	}
	return headers, body
}

func createPendingOrder(t *testing.T, svc *testServices, customer *models.Customer, product *models.Product, quantity int) *models.Order {
	t.Helper()
	order, err := svc.orders.CreateOrder(CreateOrderInput{
		CustomerID: customer.ID,
		Items:      []CreateOrderItem{{ProductID: product.ID, Quantity: quantity}},
	})
	require.NoError(t, err)
	return order
}

func TestWebhookCompletesOrderOnce(t *testing.T) {
	svc := setupServiceTest(t)
	payments := newTestPaymentService(t, svc, "")
	alice := seedCustomer(t, svc.db, "alice")
	product := seedProduct(t, svc.db, "Cotton Tote", "12.50", 5)
	order := createPendingOrder(t, svc, alice, product, 2)

	headers, body := signedWebhook(t, constants.StripeEventPaymentIntentSucceeded, "pi_123", order.ID, alice.ID, 2500)
	result, err := payments.HandleStripeWebhook(headers, body)
	require.NoError(t, err)
	require.Equal(t, WebhookOutcomeCompleted, result.Outcome)

	completed, err := svc.orders.GetOrder(customerActor(alice), order.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCompleted, completed.Status)
	require.NotNil(t, completed.TrackingNumber)
	require.Regexp(t, `^TRACK-[0-9A-F]{10}$`, *completed.TrackingNumber)
	require.NotNil(t, completed.CompletedAt)

	var txns []models.Transaction
	require.NoError(t, svc.db.Find(&txns).Error)
	require.Len(t, txns, 1)
	require.Equal(t, "pi_123", txns[0].StripePaymentIntentID)
	require.Equal(t, "25.00", txns[0].Amount.String())
	require.Len(t, txns[0].TransactionID, 36)

	// 队列未启用时同步开票
	var invoice models.Invoice
	require.NoError(t, svc.db.Where("order_id = ?", order.ID).First(&invoice).Error)
	require.Regexp(t, `^INV-\d{8}-[0-9A-F]{6}$`, invoice.InvoiceNumber)

	for i := 0; i < 3; i++ {
		replay, err := payments.HandleStripeWebhook(headers, body)
		require.NoError(t, err)
		require.Equal(t, WebhookOutcomeDuplicate, replay.Outcome)
	}
	var count int64
	require.NoError(t, svc.db.Model(&models.Transaction{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
	again, err := svc.orders.GetOrder(customerActor(alice), order.ID)
	require.NoError(t, err)
	require.Equal(t, *completed.TrackingNumber, *again.TrackingNumber)
}

func TestWebhookInvalidSignatureDoesNotMutate(t *testing.T) {
	svc := setupServiceTest(t)
	payments := newTestPaymentService(t, svc, "")
	alice := seedCustomer(t, svc.db, "alice")
	product := seedProduct(t, svc.db, "Cotton Tote", "12.50", 5)
	order := createPendingOrder(t, svc, alice, product, 1)

	headers, body := signedWebhook(t, constants.StripeEventPaymentIntentSucceeded, "pi_bad", order.ID, alice.ID, 1250)
	headers["Stripe-Signature"] = fmt.Sprintf("t=%d,v1=%s", time.Now().Unix(), "deadbeef")
	_, err := payments.HandleStripeWebhook(headers, body)
	require.ErrorIs(t, err, ErrSignatureInvalid)

	_, err = payments.HandleStripeWebhook(map[string]string{}, body)
	require.ErrorIs(t, err, ErrSignatureInvalid)

	reloaded, err := svc.orders.GetOrder(customerActor(alice), order.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusPending, reloaded.Status)
	var count int64
	require.NoError(t, svc.db.Model(&models.Transaction{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestWebhookMalformedPayloadIsValidationError(t *testing.T) {
	svc := setupServiceTest(t)
	payments := newTestPaymentService(t, svc, "")
	body := []byte(`{"type":`)
	ts := time.Now().Unix()
	headers := map[string]string{
		"Stripe-Signature": fmt.Sprintf("t=%d,v1=%s", ts, stripe.ComputeSignature(testWebhookSecret, ts, body)),
	}
	_, err := payments.HandleStripeWebhook(headers, body)
	require.ErrorIs(t, err, ErrValidation)
}

func TestWebhookAcknowledgesUnappliedEvents(t *testing.T) {
	svc := setupServiceTest(t)
	payments := newTestPaymentService(t, svc, "")
	alice := seedCustomer(t, svc.db, "alice")
	product := seedProduct(t, svc.db, "Cotton Tote", "12.50", 5)
	order := createPendingOrder(t, svc, alice, product, 1)

	headers, body := signedWebhook(t, constants.StripeEventPaymentIntentSucceeded, "pi_missing", 9999, alice.ID, 1250)
	result, err := payments.HandleStripeWebhook(headers, body)
	require.NoError(t, err)
	require.Equal(t, WebhookOutcomeOrderNotFound, result.Outcome)

	headers, body = signedWebhook(t, constants.StripeEventPaymentIntentSucceeded, "pi_nometa", 0, 0, 1250)
	result, err = payments.HandleStripeWebhook(headers, body)
	require.NoError(t, err)
	require.Equal(t, WebhookOutcomeMissingMetadata, result.Outcome)

	headers, body = signedWebhook(t, constants.StripeEventPaymentIntentFailed, "pi_failed", order.ID, alice.ID, 1250)
	result, err = payments.HandleStripeWebhook(headers, body)
	require.NoError(t, err)
	require.Equal(t, WebhookOutcomeAcknowledged, result.Outcome)

	_, err = svc.orders.CancelOrder(customerActor(alice), order.ID)
	require.NoError(t, err)
	headers, body = signedWebhook(t, constants.StripeEventPaymentIntentSucceeded, "pi_late", order.ID, alice.ID, 1250)
	result, err = payments.HandleStripeWebhook(headers, body)
	require.NoError(t, err)
	require.Equal(t, WebhookOutcomeOrderNotPending, result.Outcome)

	// 已取消订单收到的付款仍落流水，供人工退款
	var count int64
	require.NoError(t, svc.db.Model(&models.Transaction{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
	reloaded, err := svc.orders.GetOrder(customerActor(alice), order.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCancelled, reloaded.Status)
}

func TestWebhookUnderpaymentLeavesOrderPending(t *testing.T) {
	svc := setupServiceTest(t)
	payments := newTestPaymentService(t, svc, "")
	alice := seedCustomer(t, svc.db, "alice")
	product := seedProduct(t, svc.db, "Oak Bench", "250.00", 5)
	order := createPendingOrder(t, svc, alice, product, 2)
	require.Equal(t, "500.00", order.TotalAmount.String())

	headers, body := signedWebhook(t, constants.StripeEventPaymentIntentSucceeded, "pi_cent", order.ID, alice.ID, 1)
	result, err := payments.HandleStripeWebhook(headers, body)
	require.NoError(t, err)
	require.Equal(t, WebhookOutcomeAmountMismatch, result.Outcome)

	reloaded, err := svc.orders.GetOrder(customerActor(alice), order.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusPending, reloaded.Status)
	require.Nil(t, reloaded.TrackingNumber)

	var txns []models.Transaction
	require.NoError(t, svc.db.Find(&txns).Error)
	require.Len(t, txns, 1)
	require.Equal(t, "0.01", txns[0].Amount.String())
	var invoices int64
	require.NoError(t, svc.db.Model(&models.Invoice{}).Count(&invoices).Error)
	require.Zero(t, invoices)

	// 补足差额的另一笔支付完成订单
	headers, body = signedWebhook(t, constants.StripeEventPaymentIntentSucceeded, "pi_full", order.ID, alice.ID, 50000)
	result, err = payments.HandleStripeWebhook(headers, body)
	require.NoError(t, err)
	require.Equal(t, WebhookOutcomeCompleted, result.Outcome)
}

func TestWebhookAfterExpiryCancellationRecordsTransaction(t *testing.T) {
	svc := setupServiceTest(t)
	payments := newTestPaymentService(t, svc, "")
	alice := seedCustomer(t, svc.db, "alice")
	product := seedProduct(t, svc.db, "Cotton Tote", "12.50", 5)
	order := createPendingOrder(t, svc, alice, product, 2)

	cancelled, err := svc.orders.CancelExpiredOrders(time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Equal(t, 1, cancelled)
	require.Equal(t, 5, productStock(t, svc.db, product.ID))

	headers, body := signedWebhook(t, constants.StripeEventPaymentIntentSucceeded, "pi_after_expiry", order.ID, alice.ID, 2500)
	result, err := payments.HandleStripeWebhook(headers, body)
	require.NoError(t, err)
	require.Equal(t, WebhookOutcomeOrderNotPending, result.Outcome)

	var txns []models.Transaction
	require.NoError(t, svc.db.Find(&txns).Error)
	require.Len(t, txns, 1)
	require.Equal(t, order.ID, txns[0].OrderID)
	require.Equal(t, "pi_after_expiry", txns[0].StripePaymentIntentID)

	reloaded, err := svc.orders.GetOrder(customerActor(alice), order.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCancelled, reloaded.Status)

	replay, err := payments.HandleStripeWebhook(headers, body)
	require.NoError(t, err)
	require.Equal(t, WebhookOutcomeDuplicate, replay.Outcome)
}

func TestCreatePaymentIntent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "2500", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_abc","client_secret":"pi_abc_secret","status":"requires_payment_method","amount":2500,"currency":"usd"}`))
	}))
	defer server.Close()

	svc := setupServiceTest(t)
	payments := newTestPaymentService(t, svc, server.URL)
	alice := seedCustomer(t, svc.db, "alice")
	bob := seedCustomer(t, svc.db, "bob")
	product := seedProduct(t, svc.db, "Cotton Tote", "12.50", 5)
	order := createPendingOrder(t, svc, alice, product, 2)

	intent, err := payments.CreatePaymentIntent(context.Background(), customerActor(alice), CreateIntentInput{OrderID: order.ID, AmountMinor: 2500})
	require.NoError(t, err)
	require.Equal(t, "pi_abc_secret", intent.ClientSecret)

	_, err = payments.CreatePaymentIntent(context.Background(), customerActor(alice), CreateIntentInput{OrderID: order.ID, AmountMinor: 0})
	require.ErrorIs(t, err, ErrPaymentAmountInvalid)
	_, err = payments.CreatePaymentIntent(context.Background(), customerActor(alice), CreateIntentInput{OrderID: order.ID, AmountMinor: 1})
	require.ErrorIs(t, err, ErrPaymentAmountInvalid)
	_, err = payments.CreatePaymentIntent(context.Background(), customerActor(bob), CreateIntentInput{OrderID: order.ID, AmountMinor: 2500})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePaymentIntentGatewayFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"declined"}}`))
	}))
	defer server.Close()

	svc := setupServiceTest(t)
	payments := newTestPaymentService(t, svc, server.URL)
	alice := seedCustomer(t, svc.db, "alice")
	product := seedProduct(t, svc.db, "Cotton Tote", "12.50", 5)
	order := createPendingOrder(t, svc, alice, product, 1)

	_, err := payments.CreatePaymentIntent(context.Background(), customerActor(alice), CreateIntentInput{OrderID: order.ID, AmountMinor: 1250})
	require.ErrorIs(t, err, ErrGateway)
}

func TestMapStripeGatewayError(t *testing.T) {
	require.ErrorIs(t, mapStripeGatewayError(stripe.ErrRequestFailed), ErrGateway)
	require.ErrorIs(t, mapStripeGatewayError(stripe.ErrResponseInvalid), ErrGateway)
	require.ErrorIs(t, mapStripeGatewayError(stripe.ErrConfigInvalid), ErrGateway)
	require.ErrorIs(t, mapStripeGatewayError(stripe.ErrSignatureInvalid), ErrSignatureInvalid)
}

func TestInvoiceIssueIsIdempotent(t *testing.T) {
	svc := setupServiceTest(t)
	alice := seedCustomer(t, svc.db, "alice")
	product := seedProduct(t, svc.db, "Cotton Tote", "12.50", 5)
	order := createPendingOrder(t, svc, alice, product, 1)

	_, err := svc.invoices.IssueForOrder(order.ID)
	require.ErrorIs(t, err, ErrInvoiceOrderIncomplete)

	require.NoError(t, svc.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", constants.OrderStatusCompleted).Error)
	first, err := svc.invoices.IssueForOrder(order.ID)
	require.NoError(t, err)
	second, err := svc.invoices.IssueForOrder(order.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "12.50", first.Amount.String())
	require.WithinDuration(t, first.IssuedAt.AddDate(0, 0, 30), first.DueDate, time.Second)

	_, err = svc.invoices.Get(customerActor(seedCustomer(t, svc.db, "mallory")), first.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
