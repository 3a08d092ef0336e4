package models

import "time"

// ProductRating 商品评分（每位顾客每个商品一条）
type ProductRating struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CustomerID uint      `gorm:"not null;uniqueIndex:idx_rating_customer_product" json:"customer_id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_rating_customer_product;index" json:"product_id"`
	Rating     int       `gorm:"not null;check:rating_range,rating >= 1 AND rating <= 5" json:"rating"`
	Review     string    `gorm:"type:text" json:"review"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

// TableName 指定表名
func (ProductRating) TableName() string {
	return "product_ratings"
}

// RatingSummary 商品评分汇总
type RatingSummary struct {
	ProductID uint    `json:"product_id"`
	Average   float64 `json:"average"`
	Count     int64   `json:"count"`
}
