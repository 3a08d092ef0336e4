package public

import (
	handlershared "github.com/greencart/internal/http/handlers/shared"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 加入购物车请求
type CartItemRequest struct {
	ProductID uint `json:"product" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CartQuantityRequest 修改购物车数量请求
type CartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// ListCartItems 购物车行列表（员工可见全部）
func (h *Handler) ListCartItems(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	items, total, err := h.CartService.List(actor, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// GetCartItem 购物车行详情
func (h *Handler) GetCartItem(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.CartService.Get(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// AddCartItem 加入购物车并预留库存
func (h *Handler) AddCartItem(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.CartService.AddItem(service.AddItemInput{
		CustomerID: customerID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateCartItem 修改购物车数量，差额同步到库存
func (h *Handler) UpdateCartItem(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CartQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.CartService.UpdateItem(actor, id, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// RemoveCartItem 删除购物车行并归还库存
func (h *Handler) RemoveCartItem(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.CartService.RemoveItem(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.NoContent(c)
}
