package models

// OrderItem 订单项（下单时的价格快照，创建后不再修改）
type OrderItem struct {
	ID          uint   `gorm:"primarykey" json:"id"`                                                      // 主键
	OrderID     uint   `gorm:"not null;index" json:"order_id"`                                            // 订单ID
	ProductID   uint   `gorm:"not null;index" json:"product_id"`                                          // 商品ID
	ProductName string `gorm:"type:varchar(255);not null" json:"product_name"`                            // 商品名称快照
	Quantity    int    `gorm:"not null;check:order_item_quantity_positive,quantity >= 1" json:"quantity"` // 数量
	Price       Money  `gorm:"type:decimal(10,2);not null" json:"price"`                                  // 单价快照
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal 返回该项小计
func (i OrderItem) Subtotal() Money {
	return i.Price.Mul(i.Quantity)
}
