package router

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/greencart/internal/authz"
	"github.com/greencart/internal/cache"
	"github.com/greencart/internal/config"
	adminhandlers "github.com/greencart/internal/http/handlers/admin"
	publichandlers "github.com/greencart/internal/http/handlers/public"
	handlershared "github.com/greencart/internal/http/handlers/shared"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/provider"

	"github.com/gin-gonic/gin"
)

const staffHandlerPackage = "/internal/http/handlers/admin."

// SetupRouter 初始化路由
// 所有业务路由同时挂载在根路径与 /api/v1 下
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	handlershared.RegisterValidators()
	r := gin.New()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	routes := newRouteSet(cfg, c)
	routes.register(&r.RouterGroup)
	routes.register(r.Group("/api/v1"))

	// 健康检查
	r.GET("/healthz", healthz)

	routes.staffCatalog = buildStaffPermissionCatalog(r)
	return r
}

type routeSet struct {
	container    *provider.Container
	public       *publichandlers.Handler
	admin        *adminhandlers.Handler
	loginLimiter gin.HandlerFunc
	staffCatalog []staffPermissionCatalogItem
}

func newRouteSet(cfg *config.Config, c *provider.Container) *routeSet {
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "gc"
	}
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts, retry in %d seconds",
	}
	// 根路径与 /api/v1 共用同一个限流器
	return &routeSet{
		container:    c,
		public:       publichandlers.New(c),
		admin:        adminhandlers.New(c),
		loginLimiter: RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("email")),
	}
}

func (s *routeSet) register(g *gin.RouterGroup) {
	publicHandler := s.public
	adminHandler := s.admin
	loginLimiter := s.loginLimiter

	// 公开接口
	g.GET("/products/", publicHandler.ListProducts)
	g.GET("/products/:id/", publicHandler.GetProduct)
	g.GET("/categories/", publicHandler.ListCategories)
	g.GET("/categories/:id/", publicHandler.GetCategory)
	g.GET("/coupons/", publicHandler.ListCoupons)
	g.GET("/product-recommendations/", publicHandler.ListRecommendations)
	g.POST("/register/", publicHandler.Register)
	g.POST("/login/", loginLimiter, publicHandler.Login)
	g.POST("/token/", loginLimiter, publicHandler.Login)
	g.POST("/token/refresh/", publicHandler.RefreshToken)
	g.POST("/stripe-webhook/", publicHandler.StripeWebhook)

	// 顾客接口（需鉴权）
	customer := g.Group("")
	customer.Use(CustomerJWTAuthMiddleware(s.container.CustomerAuthService))
	{
		customer.GET("/me/", publicHandler.Me)
		customer.POST("/logout/", publicHandler.Logout)
		customer.POST("/change-password/", publicHandler.ChangePassword)

		customer.GET("/cart-items/", publicHandler.ListCartItems)
		customer.POST("/cart-items/", publicHandler.AddCartItem)
		customer.GET("/cart-items/:id/", publicHandler.GetCartItem)
		customer.PUT("/cart-items/:id/", publicHandler.UpdateCartItem)
		customer.PATCH("/cart-items/:id/", publicHandler.UpdateCartItem)
		customer.DELETE("/cart-items/:id/", publicHandler.RemoveCartItem)

		customer.POST("/orders/create/", publicHandler.CreateOrder)
		customer.GET("/orders/", publicHandler.ListOrders)
		customer.GET("/orders/:id/", publicHandler.GetOrder)
		customer.POST("/orders/:id/cancel/", publicHandler.CancelOrder)

		customer.POST("/create-payment-intent/", publicHandler.CreatePaymentIntent)
		customer.GET("/transactions/", publicHandler.ListTransactions)
		customer.GET("/transactions/:id/", publicHandler.GetTransaction)
		customer.GET("/invoices/", publicHandler.ListInvoices)
		customer.GET("/invoices/:id/", publicHandler.GetInvoice)

		customer.GET("/payment-methods/", publicHandler.ListPaymentMethods)
		customer.POST("/payment-methods/", publicHandler.CreatePaymentMethod)
		customer.GET("/payment-methods/:id/", publicHandler.GetPaymentMethod)
		customer.PUT("/payment-methods/:id/", publicHandler.UpdatePaymentMethod)
		customer.PATCH("/payment-methods/:id/", publicHandler.UpdatePaymentMethod)
		customer.DELETE("/payment-methods/:id/", publicHandler.DeletePaymentMethod)

		customer.GET("/addresses/", publicHandler.ListAddresses)
		customer.POST("/addresses/", publicHandler.CreateAddress)
		customer.GET("/addresses/:id/", publicHandler.GetAddress)
		customer.PUT("/addresses/:id/", publicHandler.UpdateAddress)
		customer.PATCH("/addresses/:id/", publicHandler.UpdateAddress)
		customer.DELETE("/addresses/:id/", publicHandler.DeleteAddress)

		customer.GET("/product-ratings/", publicHandler.ListRatings)
		customer.POST("/product-ratings/", publicHandler.CreateRating)
		customer.GET("/product-ratings/:id/", publicHandler.GetRating)
		customer.PUT("/product-ratings/:id/", publicHandler.UpdateRating)
		customer.PATCH("/product-ratings/:id/", publicHandler.UpdateRating)
		customer.DELETE("/product-ratings/:id/", publicHandler.DeleteRating)
	}

	// 员工接口（需鉴权 + RBAC）
	staff := g.Group("")
	staff.Use(CustomerJWTAuthMiddleware(s.container.CustomerAuthService), StaffRBACMiddleware(s.container.AuthzService))
	{
		// 商品与分类
		staff.POST("/products/", adminHandler.CreateProduct)
		staff.PUT("/products/:id/", adminHandler.UpdateProduct)
		staff.PATCH("/products/:id/", adminHandler.UpdateProduct)
		staff.DELETE("/products/:id/", adminHandler.DeleteProduct)
		staff.POST("/products/:id/update_stock/", adminHandler.UpdateStock)
		staff.POST("/categories/", adminHandler.CreateCategory)
		staff.PUT("/categories/:id/", adminHandler.UpdateCategory)
		staff.PATCH("/categories/:id/", adminHandler.UpdateCategory)
		staff.DELETE("/categories/:id/", adminHandler.DeleteCategory)
		staff.POST("/product-recommendations/", adminHandler.CreateRecommendation)
		staff.DELETE("/product-recommendations/:id/", adminHandler.DeleteRecommendation)

		// 优惠券
		staff.POST("/coupons/", adminHandler.CreateCoupon)
		staff.GET("/coupons/:id/", adminHandler.GetCoupon)
		staff.PUT("/coupons/:id/", adminHandler.UpdateCoupon)
		staff.PATCH("/coupons/:id/", adminHandler.UpdateCoupon)
		staff.DELETE("/coupons/:id/", adminHandler.DeleteCoupon)
		staff.GET("/staff/coupons/", adminHandler.ListCoupons)

		// 发票与顾客
		staff.POST("/invoices/", adminHandler.IssueInvoice)
		staff.GET("/customers/", adminHandler.ListCustomers)
		staff.GET("/customers/:id/", adminHandler.GetCustomer)
		staff.DELETE("/customers/:id/", adminHandler.DeleteCustomer)

		// 权限管理
		staff.GET("/staff/authz/me", adminHandler.GetAuthzMe)
		staff.GET("/staff/authz/roles", adminHandler.ListAuthzRoles)
		staff.GET("/staff/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
		staff.POST("/staff/authz/policies", adminHandler.GrantAuthzPolicy)
		staff.DELETE("/staff/authz/policies", adminHandler.RevokeAuthzPolicy)
		staff.PUT("/staff/authz/staff/:id/roles", adminHandler.SetStaffRoles)
		staff.GET("/staff/authz/audit-logs", adminHandler.ListAuthzAuditLogs)
		staff.GET("/staff/authz/permissions/catalog", func(ctx *gin.Context) {
			response.Success(ctx, s.staffCatalog)
		})
	}
}

func healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "ok", "database": "ok", "redis": "disabled"}
	healthy := true
	if models.DB == nil {
		status["database"] = "unavailable"
		healthy = false
	} else if sqlDB, err := models.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status["database"] = "unavailable"
		healthy = false
	}
	if cache.Enabled() {
		status["redis"] = "ok"
		if err := cache.Ping(ctx); err != nil {
			status["redis"] = "unavailable"
			healthy = false
		}
	}
	if !healthy {
		status["status"] = "degraded"
		response.ErrorWithData(c, response.CodeServiceUnavailable, "service degraded", status)
		return
	}
	response.Success(c, status)
}

type staffPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildStaffPermissionCatalog 从已注册的员工路由生成权限目录，供角色配置使用
func buildStaffPermissionCatalog(engine *gin.Engine) []staffPermissionCatalogItem {
	if engine == nil {
		return []staffPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]staffPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.Contains(item.Handler, staffHandlerPackage) {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, staffPermissionCatalogItem{
			Module:     deriveStaffPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveStaffPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if segments[0] != "staff" || len(segments) == 1 {
		return segments[0]
	}
	return segments[1]
}
