package public

import (
	handlershared "github.com/greencart/internal/http/handlers/shared"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

// RatingRequest 评分请求
type RatingRequest struct {
	ProductID uint   `json:"product" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Review    string `json:"review"`
}

// RatingUpdateRequest 修改评分请求，商品不可变更
type RatingUpdateRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review"`
}

// ListRatings 当前顾客的评分
func (h *Handler) ListRatings(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	ratings, total, err := h.RatingService.ListMine(actor, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, ratings, response.BuildPagination(page, pageSize, total))
}

// GetRating 评分详情
func (h *Handler) GetRating(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	rating, err := h.RatingService.Get(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rating)
}

// CreateRating 为商品评分，每个商品限一次
func (h *Handler) CreateRating(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req RatingRequest
	if !bindJSON(c, &req) {
		return
	}
	rating, err := h.RatingService.Create(actor, service.RatingInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Review:    req.Review,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, rating)
}

// UpdateRating 修改评分
func (h *Handler) UpdateRating(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req RatingUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	rating, err := h.RatingService.Update(actor, id, service.RatingInput{
		Rating: req.Rating,
		Review: req.Review,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rating)
}

// DeleteRating 删除评分
func (h *Handler) DeleteRating(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.RatingService.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.NoContent(c)
}
