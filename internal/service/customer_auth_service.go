package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/greencart/internal/cache"
	"github.com/greencart/internal/config"
	"github.com/greencart/internal/constants"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAccessTTLMinutes = 30
	defaultRefreshTTLHours  = 7 * 24
)

// CustomerAuthService 顾客注册、登录与令牌服务
type CustomerAuthService struct {
	cfg           *config.Config
	repo          repository.CustomerRepository
	blacklistRepo repository.TokenBlacklistRepository
}

// NewCustomerAuthService 创建顾客认证服务
func NewCustomerAuthService(cfg *config.Config, repo repository.CustomerRepository, blacklistRepo repository.TokenBlacklistRepository) *CustomerAuthService {
	return &CustomerAuthService{
		cfg:           cfg,
		repo:          repo,
		blacklistRepo: blacklistRepo,
	}
}

// CustomerClaims 顾客 JWT 声明，jti 放在 RegisteredClaims.ID
type CustomerClaims struct {
	CustomerID   uint   `json:"customer_id"`
	Email        string `json:"email"`
	IsStaff      bool   `json:"is_staff"`
	TokenType    string `json:"token_type"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// TokenPair 访问令牌与刷新令牌
type TokenPair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// RegisterInput 注册输入
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Register 注册顾客账号
func (s *CustomerAuthService) Register(input RegisterInput) (*models.Customer, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if err := validatePassword(s.cfg.Security.PasswordMinLength, input.Password); err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailExists
	}
	if existing, err := s.repo.GetByUsername(username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUsernameExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	customer := &models.Customer{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        strings.TrimSpace(input.Phone),
		IsStaff:      s.isStaffEmail(email),
		IsActive:     true,
	}
	if err := s.repo.Create(customer); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email or username already in use", ErrValidation)
		}
		return nil, err
	}
	logger.Infow("customer_registered", "customer_id", customer.ID, "is_staff", customer.IsStaff)
	return customer, nil
}

// Login 邮箱密码登录，返回令牌对
func (s *CustomerAuthService) Login(email, password string) (*models.Customer, *TokenPair, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	customer, err := s.repo.GetByEmail(normalized)
	if err != nil {
		return nil, nil, err
	}
	if customer == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !customer.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	pair, err := s.issueTokenPair(customer)
	if err != nil {
		return nil, nil, err
	}
	now := time.Now()
	customer.LastLoginAt = &now
	if err := s.repo.Update(customer); err != nil {
		return nil, nil, err
	}
	_ = cache.SetCustomerAuthState(context.Background(), cache.BuildCustomerAuthState(customer))
	logger.Infow("customer_login", "customer_id", customer.ID)
	return customer, pair, nil
}

// Refresh 使用刷新令牌换取新的访问令牌；开启轮换时旧刷新令牌立即吊销
func (s *CustomerAuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken, constants.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	revoked, err := s.isRefreshRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	customer, err := s.repo.GetByID(claims.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || !customer.IsActive {
		return nil, ErrInvalidToken
	}
	if claims.TokenVersion != customer.TokenVersion {
		return nil, ErrTokenRevoked
	}

	if !s.cfg.JWT.RotateRefreshToken {
		access, accessExpiresAt, err := s.signToken(customer, constants.TokenTypeAccess, s.accessTTL())
		if err != nil {
			return nil, err
		}
		return &TokenPair{
			Access:           access,
			Refresh:          refreshToken,
			AccessExpiresAt:  accessExpiresAt,
			RefreshExpiresAt: claims.ExpiresAt.Time,
		}, nil
	}
	if err := s.revokeRefresh(ctx, claims); err != nil {
		return nil, err
	}
	return s.issueTokenPair(customer)
}

// Logout 吊销刷新令牌
func (s *CustomerAuthService) Logout(ctx context.Context, customerID uint, refreshToken string) error {
	claims, err := s.parseToken(refreshToken, constants.TokenTypeRefresh)
	if err != nil {
		return err
	}
	if claims.CustomerID != customerID {
		return ErrInvalidToken
	}
	if err := s.revokeRefresh(ctx, claims); err != nil {
		return err
	}
	logger.Infow("customer_logout", "customer_id", customerID)
	return nil
}

// ChangePasswordInput 修改密码输入
type ChangePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

// ChangePassword 修改密码并使此前签发的令牌全部失效
func (s *CustomerAuthService) ChangePassword(customerID uint, input ChangePasswordInput) error {
	if input.NewPassword != input.ConfirmPassword {
		return ErrPasswordMismatch
	}
	customer, err := s.Me(customerID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(input.OldPassword)); err != nil {
		return ErrOldPasswordInvalid
	}
	if err := validatePassword(s.cfg.Security.PasswordMinLength, input.NewPassword); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	customer.PasswordHash = string(hashed)
	customer.TokenVersion++
	customer.TokenInvalidBefore = &now
	if err := s.repo.Update(customer); err != nil {
		return err
	}
	_ = cache.SetCustomerAuthState(context.Background(), cache.BuildCustomerAuthState(customer))
	logger.Infow("customer_password_changed", "customer_id", customer.ID)
	return nil
}

// Me 当前顾客资料
func (s *CustomerAuthService) Me(customerID uint) (*models.Customer, error) {
	if customerID == 0 {
		return nil, ErrNotFound
	}
	customer, err := s.repo.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrNotFound
	}
	return customer, nil
}

// ParseAccessToken 解析访问令牌
func (s *CustomerAuthService) ParseAccessToken(tokenString string) (*CustomerClaims, error) {
	return s.parseToken(tokenString, constants.TokenTypeAccess)
}

// ResolveAuthState 读取鉴权快照，缓存未命中时回源数据库
func (s *CustomerAuthService) ResolveAuthState(ctx context.Context, customerID uint) (*cache.CustomerAuthState, error) {
	if state, ok, err := cache.GetCustomerAuthState(ctx, customerID); err == nil && ok && state != nil {
		return state, nil
	}
	customer, err := s.repo.GetByID(customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, nil
	}
	state := cache.BuildCustomerAuthState(customer)
	_ = cache.SetCustomerAuthState(ctx, state)
	return state, nil
}

// ValidateAccessClaims 校验令牌版本与账号状态
func (s *CustomerAuthService) ValidateAccessClaims(ctx context.Context, claims *CustomerClaims) (*cache.CustomerAuthState, error) {
	state, err := s.ResolveAuthState(ctx, claims.CustomerID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrAuthentication
	}
	if !state.IsActive {
		return nil, ErrAccountDisabled
	}
	if claims.TokenVersion != state.TokenVersion {
		return nil, ErrTokenRevoked
	}
	if state.TokenInvalidBefore > 0 && claims.IssuedAt != nil && claims.IssuedAt.Unix() < state.TokenInvalidBefore {
		return nil, ErrTokenRevoked
	}
	return state, nil
}

// ListCustomers 员工查看顾客列表
func (s *CustomerAuthService) ListCustomers(filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	return s.repo.List(filter)
}

// DeleteCustomer 软删除顾客，订单与流水保留
func (s *CustomerAuthService) DeleteCustomer(ctx context.Context, id uint) error {
	if _, err := s.Me(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	_ = cache.DelCustomerAuthState(ctx, id)
	logger.Infow("customer_deleted", "customer_id", id)
	return nil
}

// PurgeExpiredBlacklist 清理已过期的数据库黑名单
func (s *CustomerAuthService) PurgeExpiredBlacklist(now time.Time) (int64, error) {
	return s.blacklistRepo.PurgeExpired(now)
}

func (s *CustomerAuthService) issueTokenPair(customer *models.Customer) (*TokenPair, error) {
	access, accessExpiresAt, err := s.signToken(customer, constants.TokenTypeAccess, s.accessTTL())
	if err != nil {
		return nil, err
	}
	refresh, refreshExpiresAt, err := s.signToken(customer, constants.TokenTypeRefresh, s.refreshTTL())
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExpiresAt,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

func (s *CustomerAuthService) signToken(customer *models.Customer, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := CustomerClaims{
		CustomerID:   customer.ID,
		Email:        customer.Email,
		IsStaff:      customer.IsStaff,
		TokenType:    tokenType,
		TokenVersion: customer.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", customer.ID),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *CustomerAuthService) parseToken(tokenString, tokenType string) (*CustomerClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &CustomerClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType || claims.CustomerID == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// revokeRefresh Redis 可用时写入 Redis，否则写入数据库黑名单
func (s *CustomerAuthService) revokeRefresh(ctx context.Context, claims *CustomerClaims) error {
	expiresAt := time.Now().Add(s.refreshTTL())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if cache.Enabled() {
		err := cache.BlacklistRefreshToken(ctx, claims.ID, expiresAt)
		if err == nil {
			return nil
		}
		logger.Warnw("auth_blacklist_redis_failed", "customer_id", claims.CustomerID, "error", err)
	}
	return s.blacklistRepo.Add(&models.TokenBlacklist{
		JTI:        claims.ID,
		CustomerID: claims.CustomerID,
		ExpiresAt:  expiresAt,
	})
}

func (s *CustomerAuthService) isRefreshRevoked(ctx context.Context, jti string) (bool, error) {
	if cache.Enabled() {
		revoked, err := cache.IsRefreshTokenBlacklisted(ctx, jti)
		if err == nil && revoked {
			return true, nil
		}
		if err != nil {
			logger.Warnw("auth_blacklist_redis_read_failed", "error", err)
		}
	}
	return s.blacklistRepo.Exists(jti)
}

func (s *CustomerAuthService) accessTTL() time.Duration {
	minutes := s.cfg.JWT.AccessTTLMinutes
	if minutes <= 0 {
		minutes = defaultAccessTTLMinutes
	}
	return time.Duration(minutes) * time.Minute
}

func (s *CustomerAuthService) refreshTTL() time.Duration {
	hours := s.cfg.JWT.RefreshTTLHours
	if hours <= 0 {
		hours = defaultRefreshTTLHours
	}
	return time.Duration(hours) * time.Hour
}

func (s *CustomerAuthService) isStaffEmail(email string) bool {
	for _, staff := range s.cfg.Security.StaffEmails {
		if strings.EqualFold(strings.TrimSpace(staff), email) {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", fmt.Errorf("%w: email is invalid", ErrValidation)
	}
	return normalized, nil
}

// IsAuthError 判断是否为认证失败类错误（映射为 401）
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthentication) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrAccountDisabled)
}
