package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/greencart/internal/models"
	"github.com/greencart/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponService 优惠券服务
type CouponService struct {
	repo repository.CouponRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(repo repository.CouponRepository) *CouponService {
	return &CouponService{repo: repo}
}

// CouponInput 创建/更新优惠券输入
type CouponInput struct {
	Code           string
	DiscountAmount string
	ValidFrom      time.Time
	ValidTo        time.Time
	Active         *bool
}

// ListPublic 当前可用的优惠券
func (s *CouponService) ListPublic(page, pageSize int) ([]models.Coupon, int64, error) {
	return s.repo.List(repository.CouponListFilter{
		Page:      page,
		PageSize:  pageSize,
		OnlyValid: true,
		Now:       time.Now(),
	})
}

// ListAdmin 员工查看全部优惠券
func (s *CouponService) ListAdmin(code string, page, pageSize int) ([]models.Coupon, int64, error) {
	return s.repo.List(repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     code,
	})
}

// Validate 校验优惠码，不存在、未启用或不在有效期内均返回 ErrInvalidCoupon
func (s *CouponService) Validate(code string, now time.Time) (*models.Coupon, error) {
	coupon, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil || !coupon.IsValidAt(now) {
		return nil, ErrInvalidCoupon
	}
	return coupon, nil
}

// Get 获取优惠券
func (s *CouponService) Get(id uint) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrNotFound
	}
	return coupon, nil
}

// Create 创建优惠券
func (s *CouponService) Create(input CouponInput) (*models.Coupon, error) {
	coupon := &models.Coupon{Active: true}
	if err := applyCouponInput(coupon, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(coupon); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCouponCodeExists
		}
		return nil, err
	}
	return coupon, nil
}

// Update 更新优惠券
func (s *CouponService) Update(id uint, input CouponInput) (*models.Coupon, error) {
	coupon, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := applyCouponInput(coupon, input); err != nil {
		return nil, err
	}
	if err := s.repo.Update(coupon); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCouponCodeExists
		}
		return nil, err
	}
	return coupon, nil
}

// Delete 删除优惠券
func (s *CouponService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func applyCouponInput(coupon *models.Coupon, input CouponInput) error {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return fmt.Errorf("%w: code is required", ErrValidation)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(input.DiscountAmount))
	if err != nil || amount.IsNegative() {
		return fmt.Errorf("%w: discount_amount must be a non-negative decimal", ErrValidation)
	}
	if input.ValidFrom.IsZero() || input.ValidTo.IsZero() || input.ValidTo.Before(input.ValidFrom) {
		return fmt.Errorf("%w: valid_to must not be before valid_from", ErrValidation)
	}
	coupon.Code = code
	coupon.DiscountAmount = models.NewMoneyFromDecimal(amount)
	coupon.ValidFrom = input.ValidFrom
	coupon.ValidTo = input.ValidTo
	if input.Active != nil {
		coupon.Active = *input.Active
	}
	return nil
}
