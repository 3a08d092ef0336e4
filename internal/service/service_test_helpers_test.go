package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/greencart/internal/config"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/queue"
	"github.com/greencart/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var serviceTestDBSeq int64

type testServices struct {
	db             *gorm.DB
	cfg            *config.Config
	products       *ProductService
	cart           *CartService
	coupons        *CouponService
	orders         *OrderService
	invoices       *InvoiceService
	paymentMethods *PaymentMethodService
	addresses      *AddressService
	ratings        *RatingService
	recs           *RecommendationService
	auth           *CustomerAuthService
}

// setupServiceTest 内存库 + 单连接，所有服务共享同一个 models.DB
func setupServiceTest(t *testing.T) *testServices {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", atomic.AddInt64(&serviceTestDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	prevDB := models.DB
	models.DB = db
	t.Cleanup(func() {
		models.DB = prevDB
		_ = sqlDB.Close()
	})

	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:          "test-secret",
			AccessTTLMinutes:   30,
			RefreshTTLHours:    168,
			RotateRefreshToken: true,
		},
		Security: config.SecurityConfig{
			PasswordMinLength: 8,
			StaffEmails:       []string{"boss@example.com"},
		},
	}
	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	require.NoError(t, err)

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	coupons := NewCouponService(repository.NewCouponRepository(db))
	return &testServices{
		db:             db,
		cfg:            cfg,
		products:       NewProductService(productRepo, repository.NewCategoryRepository(db), ratingRepo),
		cart:           NewCartService(cartRepo, productRepo),
		coupons:        coupons,
		orders:         NewOrderService(orderRepo, productRepo, cartRepo, coupons, queueClient, 30),
		invoices:       NewInvoiceService(repository.NewInvoiceRepository(db), orderRepo, 30),
		paymentMethods: NewPaymentMethodService(repository.NewPaymentMethodRepository(db)),
		addresses:      NewAddressService(repository.NewAddressRepository(db)),
		ratings:        NewRatingService(ratingRepo, productRepo),
		recs:           NewRecommendationService(repository.NewRecommendationRepository(db), productRepo),
		auth:           NewCustomerAuthService(cfg, repository.NewCustomerRepository(db), repository.NewTokenBlacklistRepository(db)),
	}
}

func seedCustomer(t *testing.T, db *gorm.DB, username string) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:  name,
		Price: models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		Stock: stock,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, id).Error)
	return product.Stock
}

func customerActor(customer *models.Customer) Actor {
	return Actor{CustomerID: customer.ID}
}

func repositoryOrderFilter(status string) repository.OrderListFilter {
	return repository.OrderListFilter{Page: 1, PageSize: 20, Status: status}
}
