package models

import "time"

// Product 商品表
// stock 由数据库 CHECK 约束兜底，应用层通过条件更新保证不出现负库存
type Product struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                  // 主键
	Name        string    `gorm:"type:varchar(255);not null;index" json:"name"`                          // 名称
	Description string    `gorm:"type:text" json:"description"`                                          // 描述
	Price       Money     `gorm:"type:decimal(10,2);not null;default:0" json:"price"`                    // 单价
	Stock       int       `gorm:"not null;default:0;check:stock_non_negative,stock >= 0" json:"stock"` // 可售库存
	CategoryID  *uint     `gorm:"index" json:"category_id"`                                              // 分类ID
	Image       string    `gorm:"type:varchar(500)" json:"image"`                                        // 图片路径
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                               // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                                            // 更新时间

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
