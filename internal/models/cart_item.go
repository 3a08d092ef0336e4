package models

import "time"

// CartItem 购物车项
// 每一行代表一笔尚未提交的库存预留，数量已从 products.stock 中扣除
type CartItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                                       // 主键
	CustomerID uint      `gorm:"not null;uniqueIndex:idx_cart_customer_product" json:"customer_id"`          // 顾客ID
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_cart_customer_product" json:"product_id"`           // 商品ID
	Quantity   int       `gorm:"not null;check:cart_quantity_positive,quantity >= 1" json:"quantity"`      // 数量
	AddedAt    time.Time `gorm:"autoCreateTime;index" json:"added_at"`                                       // 加入时间
	UpdatedAt  time.Time `json:"updated_at"`                                                                 // 更新时间

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
