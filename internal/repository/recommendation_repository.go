package repository

import (
	"errors"
	"strings"

	"github.com/greencart/internal/models"

	"gorm.io/gorm"
)

// RecommendationRepository 商品推荐数据访问接口
type RecommendationRepository interface {
	List(filter RecommendationListFilter) ([]models.ProductRecommendation, int64, error)
	GetByID(id uint) (*models.ProductRecommendation, error)
	Create(rec *models.ProductRecommendation) error
	Delete(id uint) error
}

// GormRecommendationRepository GORM 实现
type GormRecommendationRepository struct {
	db *gorm.DB
}

// NewRecommendationRepository 创建推荐仓库
func NewRecommendationRepository(db *gorm.DB) *GormRecommendationRepository {
	return &GormRecommendationRepository{db: db}
}

// List 推荐列表
func (r *GormRecommendationRepository) List(filter RecommendationListFilter) ([]models.ProductRecommendation, int64, error) {
	query := r.db.Model(&models.ProductRecommendation{})
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if name := strings.TrimSpace(filter.ProductName); name != "" {
		query = query.Where("product_id IN (?)",
			r.db.Model(&models.Product{}).Select("id").Where(containsExpr(r.db, "name"), likePattern(name)))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var recs []models.ProductRecommendation
	query = applyPagination(query.Preload("RecommendedProduct"), filter.Page, filter.PageSize)
	if err := query.Order("id asc").Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

// GetByID 根据 ID 获取推荐
func (r *GormRecommendationRepository) GetByID(id uint) (*models.ProductRecommendation, error) {
	var rec models.ProductRecommendation
	if err := r.db.Preload("RecommendedProduct").First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Create 创建推荐
func (r *GormRecommendationRepository) Create(rec *models.ProductRecommendation) error {
	return r.db.Omit("Product", "RecommendedProduct").Create(rec).Error
}

// Delete 删除推荐
func (r *GormRecommendationRepository) Delete(id uint) error {
	return r.db.Delete(&models.ProductRecommendation{}, id).Error
}
