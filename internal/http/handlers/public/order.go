package public

import (
	"strings"

	handlershared "github.com/greencart/internal/http/handlers/shared"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/repository"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	ProductID uint `json:"product" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest 创建订单请求，items 为空时从购物车下单
type CreateOrderRequest struct {
	Items      []OrderItemRequest `json:"items" binding:"omitempty,dive"`
	CouponCode string             `json:"coupon_code" binding:"max=50"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		CustomerID: customerID,
		Items:      items,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("order_created",
		"order_id", order.ID,
		"customer_id", customerID,
		"total_amount", order.TotalAmount.String(),
	)
	response.Created(c, order)
}

// ListOrders 订单列表，可按 status 过滤
func (h *Handler) ListOrders(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	orders, total, err := h.OrderService.ListOrders(actor, repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.ToUpper(strings.TrimSpace(c.Query("status"))),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrder(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消待支付订单并归还库存
func (h *Handler) CancelOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.OrderService.CancelOrder(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}
