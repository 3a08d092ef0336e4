package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction 支付流水
// stripe_payment_intent_id 唯一，作为 webhook 对账的幂等键
type Transaction struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                                  // 主键
	OrderID               uint           `gorm:"not null;index" json:"order_id"`                                        // 订单ID
	CustomerID            uint           `gorm:"not null;index" json:"customer_id"`                                     // 顾客ID
	PaymentMethodID       *uint          `gorm:"index" json:"payment_method_id"`                                        // 支付方式（可空）
	TransactionID         string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"transaction_id"`           // 流水号（UUID）
	Amount                Money          `gorm:"type:decimal(10,2);not null" json:"amount"`                             // 金额
	Currency              string         `gorm:"type:varchar(10);not null;default:'usd'" json:"currency"`               // 币种
	StripePaymentIntentID string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"stripe_payment_intent_id"` // 网关支付意图ID
	StripeEventID         string         `gorm:"type:varchar(255)" json:"-"`                                            // 触发事件ID
	TransactionDate       time.Time      `gorm:"not null;index" json:"transaction_date"`                                // 交易时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                                        // 软删除时间

	PaymentMethod *PaymentMethod `gorm:"foreignKey:PaymentMethodID;constraint:OnDelete:SET NULL" json:"payment_method,omitempty"`
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}
