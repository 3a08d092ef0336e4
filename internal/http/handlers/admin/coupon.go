package admin

import (
	"strings"
	"time"

	handlershared "github.com/greencart/internal/http/handlers/shared"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

// CouponRequest 优惠券请求
type CouponRequest struct {
	Code           string    `json:"code" binding:"required,notblank,max=50"`
	DiscountAmount string    `json:"discount_amount" binding:"required"`
	ValidFrom      time.Time `json:"valid_from" binding:"required"`
	ValidTo        time.Time `json:"valid_to" binding:"required"`
	Active         *bool     `json:"active"`
}

func (r CouponRequest) toInput() service.CouponInput {
	return service.CouponInput{
		Code:           r.Code,
		DiscountAmount: r.DiscountAmount,
		ValidFrom:      r.ValidFrom,
		ValidTo:        r.ValidTo,
		Active:         r.Active,
	}
}

// ListCoupons 优惠券列表（含未启用与过期）
func (h *Handler) ListCoupons(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	coupons, total, err := h.CouponService.ListAdmin(strings.TrimSpace(c.Query("code")), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, coupons, response.BuildPagination(page, pageSize, total))
}

// GetCoupon 优惠券详情
func (h *Handler) GetCoupon(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	coupon, err := h.CouponService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, coupon)
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CouponRequest
	if !bindJSON(c, &req) {
		return
	}
	coupon, err := h.CouponService.Create(req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, coupon)
}

// UpdateCoupon 更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CouponRequest
	if !bindJSON(c, &req) {
		return
	}
	coupon, err := h.CouponService.Update(id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券
func (h *Handler) DeleteCoupon(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.CouponService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.NoContent(c)
}
