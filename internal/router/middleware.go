package router

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/greencart/internal/authz"
	"github.com/greencart/internal/config"
	"github.com/greencart/internal/constants"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-Request-ID",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if customerID, ok := c.Get(constants.ContextKeyCustomerID); ok {
			entry = entry.With("customer_id", customerID)
		}
		if len(c.Errors) > 0 {
			entry.Errorw("request", "errors", c.Errors.String())
			return
		}
		entry.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// CustomerJWTAuthMiddleware 顾客 JWT 鉴权中间件
// 令牌版本与账号状态以鉴权快照为准，员工标识同样取自快照
func CustomerJWTAuthMiddleware(authService *service.CustomerAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil {
			response.Unauthorized(c, "authentication service unavailable")
			c.Abort()
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "authentication credentials were not provided")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			response.Unauthorized(c, "authorization header must be Bearer <token>")
			c.Abort()
			return
		}

		claims, err := authService.ParseAccessToken(strings.TrimSpace(parts[1]))
		if err != nil || claims == nil || claims.CustomerID == 0 {
			response.Unauthorized(c, "token is invalid or expired")
			c.Abort()
			return
		}

		state, err := authService.ValidateAccessClaims(c.Request.Context(), claims)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrAccountDisabled):
				response.Unauthorized(c, "account disabled")
			case errors.Is(err, service.ErrTokenRevoked):
				response.Unauthorized(c, "token has been revoked")
			case errors.Is(err, service.ErrAuthentication):
				response.Unauthorized(c, "token is invalid or expired")
			default:
				logger.Errorw("customer_auth_state_resolve_failed",
					"customer_id", claims.CustomerID,
					"request_id", getRequestID(c),
					"error", err,
				)
				response.Unauthorized(c, "token is invalid or expired")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyCustomerID, claims.CustomerID)
		c.Set(constants.ContextKeyEmail, claims.Email)
		c.Set(constants.ContextKeyIsStaff, state.IsStaff)
		c.Next()
	}
}

// StaffRBACMiddleware 员工 RBAC 鉴权中间件
// 非员工直接 403；员工按 casbin 策略校验当前路由
func StaffRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(constants.ContextKeyIsStaff) {
			response.Forbidden(c, "you do not have permission to perform this action")
			c.Abort()
			return
		}
		if authzService == nil {
			logger.Errorw("staff_rbac_service_unavailable")
			response.Forbidden(c, "you do not have permission to perform this action")
			c.Abort()
			return
		}

		customerID := c.GetUint(constants.ContextKeyCustomerID)
		if customerID == 0 {
			response.Unauthorized(c, "authentication credentials were not provided")
			c.Abort()
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceStaff(customerID, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("staff_rbac_enforce_failed",
				"customer_id", customerID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			response.Forbidden(c, "you do not have permission to perform this action")
			c.Abort()
			return
		}
		if !allowed {
			logger.Warnw("staff_rbac_permission_denied",
				"customer_id", customerID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, "you do not have permission to perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}
