package service

import (
	"strings"
	"time"

	"github.com/greencart/internal/models"
	"github.com/greencart/internal/repository"
)

// 权限审计动作
const (
	AuthzAuditActionPolicyGrant   = "policy_grant"
	AuthzAuditActionPolicyRevoke  = "policy_revoke"
	AuthzAuditActionStaffRolesSet = "staff_roles_set"
)

// AuthzAuditRecordInput 权限审计记录输入
type AuthzAuditRecordInput struct {
	OperatorID       uint
	OperatorEmail    string
	TargetCustomerID *uint
	Action           string
	Role             string
	Object           string
	Method           string
	RequestID        string
	Detail           string
}

// AuthzAuditService 权限审计服务
type AuthzAuditService struct {
	repo repository.AuthzAuditLogRepository
}

// NewAuthzAuditService 创建权限审计服务
func NewAuthzAuditService(repo repository.AuthzAuditLogRepository) *AuthzAuditService {
	return &AuthzAuditService{repo: repo}
}

// Record 记录一次权限变更，缺少操作人或动作时忽略
func (s *AuthzAuditService) Record(input AuthzAuditRecordInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	action := strings.TrimSpace(input.Action)
	if input.OperatorID == 0 || action == "" {
		return nil
	}
	return s.repo.Create(&models.AuthzAuditLog{
		OperatorID:       input.OperatorID,
		OperatorEmail:    strings.ToLower(strings.TrimSpace(input.OperatorEmail)),
		TargetCustomerID: input.TargetCustomerID,
		Action:           action,
		Role:             strings.TrimSpace(input.Role),
		Object:           strings.TrimSpace(input.Object),
		Method:           strings.ToUpper(strings.TrimSpace(input.Method)),
		RequestID:        strings.TrimSpace(input.RequestID),
		Detail:           input.Detail,
		CreatedAt:        time.Now(),
	})
}

// List 员工端查询审计日志
func (s *AuthzAuditService) List(filter repository.AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuthzAuditLog{}, 0, nil
	}
	return s.repo.List(filter)
}
