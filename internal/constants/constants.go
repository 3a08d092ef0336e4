package constants

// 订单状态常量
const (
	OrderStatusPending   = "PENDING"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

// 支付方式类型常量
const (
	PaymentMethodCreditCard  = "CREDIT_CARD"
	PaymentMethodDebitCard   = "DEBIT_CARD"
	PaymentMethodBankAccount = "BANK_ACCOUNT"
)

// Stripe 事件类型常量
const (
	StripeEventPaymentIntentSucceeded = "payment_intent.succeeded"
	StripeEventPaymentIntentFailed    = "payment_intent.payment_failed"
	StripeEventPaymentIntentCanceled  = "payment_intent.canceled"
)

// 令牌类型常量
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// 队列与任务常量
const (
	QueueDefault            = "default"
	QueueCritical           = "critical"
	TaskInvoiceIssue        = "invoice:issue"
	TaskOrderTimeoutCancel  = "order:timeout_cancel"
	TaskOrderExpireSweep    = "order:expire_sweep"
	TaskTokenBlacklistPurge = "auth:blacklist_purge"
)

// 单号前缀
const (
	TrackingNumberPrefix = "TRACK-"
	InvoiceNumberPrefix  = "INV-"
)

// Gin 上下文键
const (
	ContextKeyCustomerID = "customer_id"
	ContextKeyEmail      = "customer_email"
	ContextKeyIsStaff    = "is_staff"
)
