package models

import (
	"time"

	"gorm.io/gorm"
)

// Invoice 发票，与订单一一对应
type Invoice struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	OrderID       uint           `gorm:"not null;uniqueIndex" json:"order_id"`
	CustomerID    uint           `gorm:"not null;index" json:"customer_id"`
	InvoiceNumber string         `gorm:"type:varchar(40);uniqueIndex;not null" json:"invoice_number"`
	Amount        Money          `gorm:"type:decimal(10,2);not null" json:"amount"`
	IssuedAt      time.Time      `gorm:"not null;index" json:"issued_at"`
	DueDate       time.Time      `gorm:"not null" json:"due_date"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Invoice) TableName() string {
	return "invoices"
}
