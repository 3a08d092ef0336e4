package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/greencart/internal/authz"
	handlershared "github.com/greencart/internal/http/handlers/shared"
	"github.com/greencart/internal/http/response"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/repository"
	"github.com/greencart/internal/service"

	"github.com/gin-gonic/gin"
)

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAuthzMe 当前员工的角色快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	staffID, ok := getStaffID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetCustomerRoles(staffID)
	if err != nil {
		respondError(c, response.CodeInternal, "internal server error", err)
		return
	}
	if len(roles) == 0 {
		roles = []string{authz.DefaultStaffRole}
	}
	response.Success(c, gin.H{
		"customer_id": staffID,
		"roles":       roles,
	})
}

// ListAuthzRoles 角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "internal server error", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzRolePolicies 角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	policies, err := h.AuthzService.GetRolePolicies(c.Param("role"))
	if err != nil {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if !bindJSON(c, &req) {
		return
	}
	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		Action: service.AuthzAuditActionPolicyGrant,
		Role:   req.Role,
		Object: req.Object,
		Method: req.Action,
	})
	requestLog(c).Infow("authz_policy_granted", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, gin.H{"granted": true})
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	var req authzPolicyPayload
	if !bindJSON(c, &req) {
		return
	}
	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		Action: service.AuthzAuditActionPolicyRevoke,
		Role:   req.Role,
		Object: req.Object,
		Method: req.Action,
	})
	requestLog(c).Infow("authz_policy_revoked", "role", req.Role, "object", req.Object, "action", req.Action)
	response.Success(c, gin.H{"revoked": true})
}

// SetStaffRoles 覆盖员工角色，空列表回落到默认员工角色
func (h *Handler) SetStaffRoles(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req authzSetRolesPayload
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.CustomerAuthService.Me(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !customer.IsStaff {
		respondError(c, response.CodeBadRequest, "customer is not staff", nil)
		return
	}
	if err := h.AuthzService.SetCustomerRoles(id, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}
	roles, err := h.AuthzService.GetCustomerRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "internal server error", err)
		return
	}
	h.recordAuthzAudit(c, service.AuthzAuditRecordInput{
		TargetCustomerID: &id,
		Action:           service.AuthzAuditActionStaffRolesSet,
		Detail:           strings.Join(roles, ","),
	})
	response.Success(c, gin.H{
		"customer_id": id,
		"roles":       roles,
	})
}

// ListAuthzAuditLogs 权限变更审计日志
func (h *Handler) ListAuthzAuditLogs(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	filter := repository.AuthzAuditLogListFilter{
		Page:     page,
		PageSize: pageSize,
		Action:   strings.TrimSpace(c.Query("action")),
		Role:     strings.TrimSpace(c.Query("role")),
	}
	var ok bool
	if filter.OperatorID, ok = parseUintQuery(c, "operator_id"); !ok {
		return
	}
	if filter.TargetCustomerID, ok = parseUintQuery(c, "target_customer_id"); !ok {
		return
	}
	if filter.CreatedFrom, ok = parseTimeQuery(c, "created_from"); !ok {
		return
	}
	if filter.CreatedTo, ok = parseTimeQuery(c, "created_to"); !ok {
		return
	}

	logs, total, err := h.AuthzAuditService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "internal server error", err)
		return
	}
	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}

func (h *Handler) recordAuthzAudit(c *gin.Context, input service.AuthzAuditRecordInput) {
	if h == nil || h.AuthzAuditService == nil {
		return
	}
	staffID, _ := c.Get(handlershared.CustomerIDKey)
	input.OperatorID, _ = staffID.(uint)
	input.OperatorEmail = c.GetString(handlershared.CustomerEmailKey)
	input.RequestID = c.GetString("request_id")
	if err := h.AuthzAuditService.Record(input); err != nil {
		logger.Warnw("staff_authz_audit_record_failed",
			"error", err,
			"action", input.Action,
			"operator_id", input.OperatorID,
		)
	}
}

func parseUintQuery(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, true
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, response.CodeBadRequest, name+": must be a positive integer", nil)
		return 0, false
	}
	return uint(value), true
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respondError(c, response.CodeBadRequest, name+": expected RFC3339 timestamp", nil)
		return nil, false
	}
	return &value, true
}
