package public

import (
	handlershared "github.com/greencart/internal/http/handlers/shared"
	"github.com/greencart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListInvoices 发票列表
func (h *Handler) ListInvoices(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	invoices, total, err := h.InvoiceService.List(actor, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, invoices, response.BuildPagination(page, pageSize, total))
}

// GetInvoice 发票详情
func (h *Handler) GetInvoice(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	invoice, err := h.InvoiceService.Get(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, invoice)
}
