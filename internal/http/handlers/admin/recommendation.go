package admin

import (
	"github.com/greencart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RecommendationRequest 推荐关系请求
type RecommendationRequest struct {
	ProductID            uint `json:"product" binding:"required"`
	RecommendedProductID uint `json:"recommended_product" binding:"required"`
}

// CreateRecommendation 创建推荐关系
func (h *Handler) CreateRecommendation(c *gin.Context) {
	var req RecommendationRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.RecommendationService.Create(req.ProductID, req.RecommendedProductID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, item)
}

// DeleteRecommendation 删除推荐关系
func (h *Handler) DeleteRecommendation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.RecommendationService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.NoContent(c)
}
