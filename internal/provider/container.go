package provider

import (
	"time"

	"github.com/greencart/internal/authz"
	"github.com/greencart/internal/cache"
	"github.com/greencart/internal/config"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/payment/stripe"
	"github.com/greencart/internal/queue"
	"github.com/greencart/internal/repository"
	"github.com/greencart/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Stripe      *stripe.Client

	// Repositories
	CustomerRepo       repository.CustomerRepository
	TokenBlacklistRepo repository.TokenBlacklistRepository
	CategoryRepo       repository.CategoryRepository
	ProductRepo        repository.ProductRepository
	CartRepo           repository.CartRepository
	OrderRepo          repository.OrderRepository
	CouponRepo         repository.CouponRepository
	TransactionRepo    repository.TransactionRepository
	InvoiceRepo        repository.InvoiceRepository
	PaymentMethodRepo  repository.PaymentMethodRepository
	AddressRepo        repository.AddressRepository
	RatingRepo         repository.RatingRepository
	RecommendationRepo repository.RecommendationRepository
	AuthzAuditLogRepo  repository.AuthzAuditLogRepository

	// Services
	AuthzService          *authz.Service
	AuthzAuditService     *service.AuthzAuditService
	CustomerAuthService   *service.CustomerAuthService
	CategoryService       *service.CategoryService
	ProductService        *service.ProductService
	CartService           *service.CartService
	CouponService         *service.CouponService
	OrderService          *service.OrderService
	InvoiceService        *service.InvoiceService
	PaymentService        *service.PaymentService
	PaymentMethodService  *service.PaymentMethodService
	AddressService        *service.AddressService
	RatingService         *service.RatingService
	RecommendationService *service.RecommendationService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initStripe()

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initStripe() {
	client, err := stripe.NewClient(stripe.Config{
		SecretKey:               c.Config.Stripe.SecretKey,
		WebhookSecret:           c.Config.Stripe.WebhookSecret,
		APIBaseURL:              c.Config.Stripe.APIBaseURL,
		Currency:                c.Config.Stripe.Currency,
		Timeout:                 time.Duration(c.Config.Stripe.TimeoutSeconds) * time.Second,
		WebhookToleranceSeconds: c.Config.Stripe.WebhookToleranceSeconds,
	}, nil)
	if err != nil {
		logger.Errorw("provider_init_stripe_failed", "error", err)
		return
	}
	c.Stripe = client
}

func (c *Container) initRepositories() {
	db := models.DB
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.TokenBlacklistRepo = repository.NewTokenBlacklistRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.TransactionRepo = repository.NewTransactionRepository(db)
	c.InvoiceRepo = repository.NewInvoiceRepository(db)
	c.PaymentMethodRepo = repository.NewPaymentMethodRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.RatingRepo = repository.NewRatingRepository(db)
	c.RecommendationRepo = repository.NewRecommendationRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
	c.CustomerAuthService = service.NewCustomerAuthService(c.Config, c.CustomerRepo, c.TokenBlacklistRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.ProductService = service.NewProductService(c.ProductRepo, c.CategoryRepo, c.RatingRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo, c.CartRepo, c.CouponService, c.QueueClient, c.Config.Order.PaymentExpireMinutes)
	c.InvoiceService = service.NewInvoiceService(c.InvoiceRepo, c.OrderRepo, c.Config.Invoice.DueDays)
	var gateway service.PaymentGateway
	if c.Stripe != nil {
		gateway = c.Stripe
	}
	c.PaymentService = service.NewPaymentService(gateway, c.OrderRepo, c.TransactionRepo, c.InvoiceService, c.QueueClient)
	c.PaymentMethodService = service.NewPaymentMethodService(c.PaymentMethodRepo)
	c.AddressService = service.NewAddressService(c.AddressRepo)
	c.RatingService = service.NewRatingService(c.RatingRepo, c.ProductRepo)
	c.RecommendationService = service.NewRecommendationService(c.RecommendationRepo, c.ProductRepo)
}
