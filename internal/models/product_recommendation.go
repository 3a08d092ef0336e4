package models

import "time"

// ProductRecommendation 商品推荐关系
type ProductRecommendation struct {
	ID                   uint      `gorm:"primarykey" json:"id"`
	ProductID            uint      `gorm:"not null;uniqueIndex:idx_recommendation_pair;check:recommendation_not_self,product_id <> recommended_product_id" json:"product_id"`
	RecommendedProductID uint      `gorm:"not null;uniqueIndex:idx_recommendation_pair" json:"recommended_product_id"`
	CreatedAt            time.Time `json:"created_at"`

	Product            *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	RecommendedProduct *Product `gorm:"foreignKey:RecommendedProductID;constraint:OnDelete:CASCADE" json:"recommended_product,omitempty"`
}

// TableName 指定表名
func (ProductRecommendation) TableName() string {
	return "product_recommendations"
}
