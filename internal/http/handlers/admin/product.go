package admin

import (
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest 创建/更新商品请求，price 为十进制字符串
type ProductRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=255"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Stock       *int   `json:"stock" binding:"omitempty,min=0"`
	CategoryID  *uint  `json:"category"`
	Image       string `json:"image" binding:"max=500"`
}

// UpdateStockRequest 设置库存请求
type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		CategoryID:  r.CategoryID,
		Image:       r.Image,
	}
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.ProductService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.ProductService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.ProductService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateStock 设置商品绝对库存
func (h *Handler) UpdateStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateStockRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.ProductService.UpdateStock(c.Request.Context(), id, *req.Stock)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("product_stock_updated", "product_id", product.ID, "stock", product.Stock)
	response.Success(c, gin.H{
		"status": "stock updated",
		"stock":  product.Stock,
	})
}
