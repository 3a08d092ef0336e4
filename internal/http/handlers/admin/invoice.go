package admin

import (
	"github.com/greencart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// IssueInvoiceRequest 手动开票请求
type IssueInvoiceRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// IssueInvoice 为已完成订单开票，重复调用返回已有发票
func (h *Handler) IssueInvoice(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	var req IssueInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.InvoiceService.IssueForOrder(req.OrderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("invoice_issued_manually",
		"invoice_id", invoice.ID,
		"order_id", invoice.OrderID,
		"staff_id", staffID,
	)
	response.Created(c, invoice)
}
