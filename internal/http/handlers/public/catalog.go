package public

import (
	"strconv"
	"strings"

	handlershared "github.com/greencart/internal/http/handlers/shared"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListProducts 商品列表
// 支持 category（分类名）、search、min_price、max_price 过滤
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryName: strings.TrimSpace(c.Query("category")),
		Search:       strings.TrimSpace(c.Query("search")),
		MinPrice:     strings.TrimSpace(c.Query("min_price")),
		MaxPrice:     strings.TrimSpace(c.Query("max_price")),
		WithCategory: true,
	}
	products, total, err := h.ProductService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetProduct 商品详情（附评分汇总）
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	detail, err := h.ProductService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, detail)
}

// ListCategories 分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(strings.TrimSpace(c.Query("name")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, categories)
}

// GetCategory 分类详情
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	category, err := h.CategoryService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, category)
}

// ListCoupons 当前可用的优惠券
func (h *Handler) ListCoupons(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	coupons, total, err := h.CouponService.ListPublic(page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, coupons, response.BuildPagination(page, pageSize, total))
}

// ListRecommendations 推荐关系列表，可按 product（ID）或 product_name 过滤
func (h *Handler) ListRecommendations(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.RecommendationListFilter{
		Page:        page,
		PageSize:    pageSize,
		ProductName: strings.TrimSpace(c.Query("product_name")),
	}
	if raw := strings.TrimSpace(c.Query("product")); raw != "" {
		productID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "product: invalid id", nil)
			return
		}
		filter.ProductID = uint(productID)
	}
	items, total, err := h.RecommendationService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}
