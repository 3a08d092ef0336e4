package public

import (
	"net/http"

	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

// AddressRequest 地址请求
// PATCH 时未提供的字段沿用原值
type AddressRequest struct {
	Street     *string `json:"street" binding:"omitempty,max=255"`
	City       *string `json:"city" binding:"omitempty,max=100"`
	State      *string `json:"state" binding:"omitempty,max=100"`
	PostalCode *string `json:"postal_code" binding:"omitempty,max=20"`
	Country    *string `json:"country" binding:"omitempty,max=100"`
	IsDefault  *bool   `json:"is_default"`
}

func (r AddressRequest) toInput(base *models.Address) service.AddressInput {
	input := service.AddressInput{}
	if base != nil {
		input = service.AddressInput{
			Street:     base.Street,
			City:       base.City,
			State:      base.State,
			PostalCode: base.PostalCode,
			Country:    base.Country,
			IsDefault:  base.IsDefault,
		}
	}
	if r.Street != nil {
		input.Street = *r.Street
	}
	if r.City != nil {
		input.City = *r.City
	}
	if r.State != nil {
		input.State = *r.State
	}
	if r.PostalCode != nil {
		input.PostalCode = *r.PostalCode
	}
	if r.Country != nil {
		input.Country = *r.Country
	}
	if r.IsDefault != nil {
		input.IsDefault = *r.IsDefault
	}
	return input
}

// ListAddresses 当前顾客的地址
func (h *Handler) ListAddresses(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	addresses, err := h.AddressService.List(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, addresses)
}

// GetAddress 地址详情
func (h *Handler) GetAddress(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	address, err := h.AddressService.Get(actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, address)
}

// CreateAddress 新增地址
func (h *Handler) CreateAddress(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req AddressRequest
	if !bindJSON(c, &req) {
		return
	}
	address, err := h.AddressService.Create(actor, req.toInput(nil))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, address)
}

// UpdateAddress 更新地址（PUT 全量，PATCH 部分）
func (h *Handler) UpdateAddress(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req AddressRequest
	if !bindJSON(c, &req) {
		return
	}
	var base *models.Address
	if c.Request.Method == http.MethodPatch {
		existing, err := h.AddressService.Get(actor, id)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		base = existing
	}
	address, err := h.AddressService.Update(actor, id, req.toInput(base))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, address)
}

// DeleteAddress 删除地址
func (h *Handler) DeleteAddress(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.AddressService.Delete(actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.NoContent(c)
}
