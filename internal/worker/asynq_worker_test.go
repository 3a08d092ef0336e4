package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/greencart/internal/config"
	"github.com/greencart/internal/constants"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/provider"
	"github.com/greencart/internal/queue"
	"github.com/greencart/internal/repository"
	"github.com/greencart/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var workerTestDBSeq int64

func setupWorkerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", atomic.AddInt64(&workerTestDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	prevDB := models.DB
	models.DB = db
	t.Cleanup(func() {
		models.DB = prevDB
		_ = sqlDB.Close()
	})

	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: "worker-secret"}}
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	coupons := service.NewCouponService(repository.NewCouponRepository(db))
	container := &provider.Container{
		Config:              cfg,
		OrderRepo:           orderRepo,
		ProductRepo:         productRepo,
		OrderService:        service.NewOrderService(orderRepo, productRepo, cartRepo, coupons, nil, 30),
		InvoiceService:      service.NewInvoiceService(repository.NewInvoiceRepository(db), orderRepo, 30),
		CustomerAuthService: service.NewCustomerAuthService(cfg, repository.NewCustomerRepository(db), repository.NewTokenBlacklistRepository(db)),
	}
	return NewConsumer(container), db
}

func seedWorkerOrder(t *testing.T, db *gorm.DB, status string, createdAt time.Time, stock, quantity int) (*models.Order, *models.Product) {
	t.Helper()
	customer := &models.Customer{
		Username:     fmt.Sprintf("worker_%d", time.Now().UnixNano()),
		Email:        fmt.Sprintf("worker_%d@example.com", time.Now().UnixNano()),
		PasswordHash: "x",
		IsActive:     true,
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	product := &models.Product{Name: "Loofah", Price: models.NewMoneyFromDecimal(mustDecimal(t, "2.50")), Stock: stock}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	order := &models.Order{
		CustomerID:  customer.ID,
		Status:      status,
		TotalAmount: product.Price.Mul(quantity),
		CreatedAt:   createdAt,
		Items: []models.OrderItem{
			{ProductID: product.ID, ProductName: product.Name, Quantity: quantity, Price: product.Price},
		},
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order, product
}

func taskFor(t *testing.T, name string, payload interface{}) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return asynq.NewTask(name, body)
}

func TestHandleInvoiceIssue(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	completed, _ := seedWorkerOrder(t, db, constants.OrderStatusCompleted, time.Now(), 5, 1)
	pending, _ := seedWorkerOrder(t, db, constants.OrderStatusPending, time.Now(), 5, 1)

	task := taskFor(t, queue.TaskInvoiceIssue, queue.InvoiceIssuePayload{OrderID: completed.ID})
	if err := consumer.handleInvoiceIssue(context.Background(), task); err != nil {
		t.Fatalf("issue invoice failed: %v", err)
	}
	if err := consumer.handleInvoiceIssue(context.Background(), task); err != nil {
		t.Fatalf("replayed issue should be idempotent: %v", err)
	}
	var count int64
	if err := db.Model(&models.Invoice{}).Where("order_id = ?", completed.ID).Count(&count).Error; err != nil {
		t.Fatalf("count invoices failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one invoice, got %d", count)
	}

	skip := taskFor(t, queue.TaskInvoiceIssue, queue.InvoiceIssuePayload{OrderID: pending.ID})
	if err := consumer.handleInvoiceIssue(context.Background(), skip); err != nil {
		t.Fatalf("pending order should be skipped, got %v", err)
	}
	missing := taskFor(t, queue.TaskInvoiceIssue, queue.InvoiceIssuePayload{OrderID: 9999})
	if err := consumer.handleInvoiceIssue(context.Background(), missing); err != nil {
		t.Fatalf("missing order should be skipped, got %v", err)
	}
	if err := consumer.handleInvoiceIssue(context.Background(), asynq.NewTask(queue.TaskInvoiceIssue, []byte("{"))); err == nil {
		t.Fatalf("malformed payload should be retried")
	}
}

func TestHandleOrderTimeoutCancel(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	expired, product := seedWorkerOrder(t, db, constants.OrderStatusPending, time.Now().Add(-time.Hour), 2, 3)
	fresh, _ := seedWorkerOrder(t, db, constants.OrderStatusPending, time.Now(), 2, 1)

	if err := consumer.handleOrderTimeoutCancel(context.Background(), taskFor(t, queue.TaskOrderTimeoutCancel, queue.OrderTimeoutCancelPayload{OrderID: expired.ID})); err != nil {
		t.Fatalf("timeout cancel failed: %v", err)
	}
	var reloaded models.Order
	if err := db.First(&reloaded, expired.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", reloaded.Status)
	}
	var stock models.Product
	if err := db.First(&stock, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if stock.Stock != 5 {
		t.Fatalf("expected stock restored to 5, got %d", stock.Stock)
	}

	if err := consumer.handleOrderTimeoutCancel(context.Background(), taskFor(t, queue.TaskOrderTimeoutCancel, queue.OrderTimeoutCancelPayload{OrderID: fresh.ID})); err != nil {
		t.Fatalf("fresh order task failed: %v", err)
	}
	if err := db.First(&reloaded, fresh.ID).Error; err != nil {
		t.Fatalf("reload fresh order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusPending {
		t.Fatalf("fresh order must stay pending, got %s", reloaded.Status)
	}

	if err := consumer.handleOrderTimeoutCancel(context.Background(), taskFor(t, queue.TaskOrderTimeoutCancel, queue.OrderTimeoutCancelPayload{OrderID: 4242})); err != nil {
		t.Fatalf("missing order should be skipped, got %v", err)
	}
}

func TestHandleOrderExpireSweep(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	first, _ := seedWorkerOrder(t, db, constants.OrderStatusPending, time.Now().Add(-2*time.Hour), 0, 1)
	second, _ := seedWorkerOrder(t, db, constants.OrderStatusPending, time.Now().Add(-40*time.Minute), 0, 1)
	done, _ := seedWorkerOrder(t, db, constants.OrderStatusCompleted, time.Now().Add(-2*time.Hour), 0, 1)

	if err := consumer.handleOrderExpireSweep(context.Background(), queue.NewOrderExpireSweepTask()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	for _, id := range []uint{first.ID, second.ID} {
		var order models.Order
		if err := db.First(&order, id).Error; err != nil {
			t.Fatalf("reload order failed: %v", err)
		}
		if order.Status != constants.OrderStatusCancelled {
			t.Fatalf("order %d should be cancelled, got %s", id, order.Status)
		}
	}
	var order models.Order
	if err := db.First(&order, done.ID).Error; err != nil {
		t.Fatalf("reload completed order failed: %v", err)
	}
	if order.Status != constants.OrderStatusCompleted {
		t.Fatalf("completed order must not change, got %s", order.Status)
	}
}

func TestHandleTokenBlacklistPurge(t *testing.T) {
	consumer, db := setupWorkerTest(t)
	rows := []models.TokenBlacklist{
		{JTI: "expired-jti", CustomerID: 1, ExpiresAt: time.Now().Add(-time.Hour)},
		{JTI: "live-jti", CustomerID: 1, ExpiresAt: time.Now().Add(time.Hour)},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("seed blacklist failed: %v", err)
	}
	if err := consumer.handleTokenBlacklistPurge(context.Background(), queue.NewTokenBlacklistPurgeTask()); err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	var remaining []models.TokenBlacklist
	if err := db.Find(&remaining).Error; err != nil {
		t.Fatalf("list blacklist failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].JTI != "live-jti" {
		t.Fatalf("expected only live-jti to remain, got %+v", remaining)
	}
}

type recordingRegistrar struct {
	specs []string
	tasks []string
}

func (r *recordingRegistrar) Register(cronspec string, task *asynq.Task, _ ...asynq.Option) (string, error) {
	r.specs = append(r.specs, cronspec)
	r.tasks = append(r.tasks, task.Type())
	return fmt.Sprintf("entry-%d", len(r.tasks)), nil
}

func TestRegisterPeriodicTasks(t *testing.T) {
	registrar := &recordingRegistrar{}
	if err := registerPeriodicTasks(registrar); err != nil {
		t.Fatalf("register periodic tasks failed: %v", err)
	}
	if len(registrar.tasks) != 2 || registrar.tasks[0] != queue.TaskOrderExpireSweep || registrar.tasks[1] != queue.TaskTokenBlacklistPurge {
		t.Fatalf("unexpected periodic tasks: %v", registrar.tasks)
	}
	if registrar.specs[0] != orderExpireSweepSpec || registrar.specs[1] != blacklistPurgeSpec {
		t.Fatalf("unexpected specs: %v", registrar.specs)
	}
}

func TestRegisterNilSafe(t *testing.T) {
	var consumer *Consumer
	consumer.Register(asynq.NewServeMux())
	if err := consumer.handleInvoiceIssue(context.Background(), nil); err != nil {
		t.Fatalf("nil consumer should be a no-op, got %v", err)
	}
}

func mustDecimal(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse decimal failed: %v", err)
	}
	return value
}
