package admin

import (
	"strings"

	handlershared "github.com/greencart/internal/http/handlers/shared"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListCustomers 顾客列表，search 匹配用户名或邮箱
func (h *Handler) ListCustomers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	customers, total, err := h.CustomerAuthService.ListCustomers(repository.CustomerListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, customers, response.BuildPagination(page, pageSize, total))
}

// GetCustomer 顾客详情
func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	customer, err := h.CustomerAuthService.Me(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, customer)
}

// DeleteCustomer 软删除顾客，财务记录保留
func (h *Handler) DeleteCustomer(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if id == staffID {
		respondError(c, response.CodeBadRequest, "cannot delete your own account", nil)
		return
	}
	if err := h.CustomerAuthService.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("customer_deleted", "customer_id", id, "staff_id", staffID)
	response.NoContent(c)
}
