package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
// 金融记录只做软删除，保留审计轨迹
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                          // 主键
	CustomerID     uint           `gorm:"not null;index" json:"customer_id"`                             // 顾客ID
	Status         string         `gorm:"type:varchar(20);not null;index" json:"status"`                 // 订单状态
	TotalAmount    Money          `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`     // 应付金额
	DiscountAmount Money          `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"`  // 优惠金额
	CouponCode     string         `gorm:"type:varchar(50)" json:"coupon_code,omitempty"`                 // 使用的优惠码
	TrackingNumber *string        `gorm:"type:varchar(50);uniqueIndex" json:"tracking_number"`           // 物流单号（完成时分配）
	CompletedAt    *time.Time     `gorm:"index" json:"completed_at"`                                     // 完成时间
	CanceledAt     *time.Time     `gorm:"index" json:"canceled_at"`                                      // 取消时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                    // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
