package repository

import (
	"errors"

	"github.com/greencart/internal/models"

	"gorm.io/gorm"
)

// RatingRepository 商品评分数据访问接口
type RatingRepository interface {
	ListByProduct(productID uint, page, pageSize int) ([]models.ProductRating, int64, error)
	ListByCustomer(customerID uint, page, pageSize int) ([]models.ProductRating, int64, error)
	GetByCustomerAndProduct(customerID, productID uint) (*models.ProductRating, error)
	GetByIDAndCustomer(id uint, customerID uint) (*models.ProductRating, error)
	Create(rating *models.ProductRating) error
	Update(rating *models.ProductRating) error
	Delete(id uint) error
	Summary(productID uint) (*models.RatingSummary, error)
}

// GormRatingRepository GORM 实现
type GormRatingRepository struct {
	db *gorm.DB
}

// NewRatingRepository 创建评分仓库
func NewRatingRepository(db *gorm.DB) *GormRatingRepository {
	return &GormRatingRepository{db: db}
}

// ListByProduct 商品的评分列表
func (r *GormRatingRepository) ListByProduct(productID uint, page, pageSize int) ([]models.ProductRating, int64, error) {
	return r.list(r.db.Model(&models.ProductRating{}).Where("product_id = ?", productID), page, pageSize)
}

// ListByCustomer 顾客自己的评分列表
func (r *GormRatingRepository) ListByCustomer(customerID uint, page, pageSize int) ([]models.ProductRating, int64, error) {
	return r.list(r.db.Model(&models.ProductRating{}).Where("customer_id = ?", customerID).Preload("Product"), page, pageSize)
}

func (r *GormRatingRepository) list(query *gorm.DB, page, pageSize int) ([]models.ProductRating, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ratings []models.ProductRating
	query = applyPagination(query, page, pageSize)
	if err := query.Order("id desc").Find(&ratings).Error; err != nil {
		return nil, 0, err
	}
	return ratings, total, nil
}

// GetByCustomerAndProduct 获取顾客对商品的评分
func (r *GormRatingRepository) GetByCustomerAndProduct(customerID, productID uint) (*models.ProductRating, error) {
	return r.first(r.db.Where("customer_id = ? AND product_id = ?", customerID, productID))
}

// GetByIDAndCustomer 获取顾客自己的评分
func (r *GormRatingRepository) GetByIDAndCustomer(id uint, customerID uint) (*models.ProductRating, error) {
	return r.first(r.db.Where("id = ? AND customer_id = ?", id, customerID))
}

func (r *GormRatingRepository) first(query *gorm.DB) (*models.ProductRating, error) {
	var rating models.ProductRating
	if err := query.First(&rating).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

// Create 创建评分
func (r *GormRatingRepository) Create(rating *models.ProductRating) error {
	return r.db.Omit("Product").Create(rating).Error
}

// Update 更新评分
func (r *GormRatingRepository) Update(rating *models.ProductRating) error {
	return r.db.Omit("Product").Save(rating).Error
}

// Delete 删除评分
func (r *GormRatingRepository) Delete(id uint) error {
	return r.db.Delete(&models.ProductRating{}, id).Error
}

// Summary 商品平均分与评分数
func (r *GormRatingRepository) Summary(productID uint) (*models.RatingSummary, error) {
	var row struct {
		Average *float64
		Count   int64
	}
	err := r.db.Model(&models.ProductRating{}).
		Select("AVG(rating) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	summary := &models.RatingSummary{ProductID: productID, Count: row.Count}
	if row.Average != nil {
		summary.Average = *row.Average
	}
	return summary, nil
}
