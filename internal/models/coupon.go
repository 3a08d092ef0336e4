package models

import "time"

// Coupon 优惠券
type Coupon struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                          // 主键
	Code           string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`            // 优惠码
	DiscountAmount Money     `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"` // 抵扣金额
	ValidFrom      time.Time `gorm:"not null;index" json:"valid_from"`                             // 生效时间
	ValidTo        time.Time `gorm:"not null;index" json:"valid_to"`                               // 失效时间
	Active         bool      `gorm:"not null;index" json:"active"`                                 // 是否启用
	CreatedAt      time.Time `json:"created_at"`                                                   // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                                   // 更新时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

// IsValidAt 判断优惠券在指定时间是否可用
func (c *Coupon) IsValidAt(now time.Time) bool {
	if c == nil || !c.Active {
		return false
	}
	return !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}
