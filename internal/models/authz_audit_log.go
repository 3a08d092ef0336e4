package models

import "time"

// AuthzAuditLog 员工权限变更审计
type AuthzAuditLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OperatorID       uint      `gorm:"index;not null" json:"operator_id"`
	OperatorEmail    string    `gorm:"type:varchar(254);not null;default:''" json:"operator_email"`
	TargetCustomerID *uint     `gorm:"index" json:"target_customer_id,omitempty"`
	Action           string    `gorm:"type:varchar(50);index;not null" json:"action"`
	Role             string    `gorm:"type:varchar(120);index;not null;default:''" json:"role"`
	Object           string    `gorm:"type:varchar(255);not null;default:''" json:"object"`
	Method           string    `gorm:"type:varchar(20);not null;default:''" json:"method"`
	RequestID        string    `gorm:"type:varchar(64);not null;default:''" json:"request_id"`
	Detail           string    `gorm:"type:text" json:"detail"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuthzAuditLog) TableName() string {
	return "authz_audit_logs"
}
