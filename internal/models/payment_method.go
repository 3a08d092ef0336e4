package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const maskedAccountPrefix = "****-****-****-"

// PaymentMethod 顾客支付方式（只保存脱敏后的号码）
type PaymentMethod struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CustomerID uint      `gorm:"not null;uniqueIndex:idx_payment_method_customer_type" json:"customer_id"`
	MethodType string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_payment_method_customer_type" json:"method_type"`
	Details    string    `gorm:"type:varchar(255);not null" json:"details"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// BeforeSave 写库前统一脱敏，原始号码不会落库
func (p *PaymentMethod) BeforeSave(tx *gorm.DB) error {
	p.Details = MaskAccountNumber(p.Details)
	return nil
}

// MaskAccountNumber 保留末 4 位，其余替换为星号；不可逆
func MaskAccountNumber(raw string) string {
	normalized := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	if len(normalized) <= 4 {
		return normalized
	}
	return maskedAccountPrefix + normalized[len(normalized)-4:]
}
