package service

import (
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/repository"
)

// RecommendationService 商品推荐服务
type RecommendationService struct {
	repo        repository.RecommendationRepository
	productRepo repository.ProductRepository
}

// NewRecommendationService 创建推荐服务
func NewRecommendationService(repo repository.RecommendationRepository, productRepo repository.ProductRepository) *RecommendationService {
	return &RecommendationService{repo: repo, productRepo: productRepo}
}

// List 推荐列表，可按商品过滤
func (s *RecommendationService) List(filter repository.RecommendationListFilter) ([]models.ProductRecommendation, int64, error) {
	return s.repo.List(filter)
}

// Create 新增推荐关系
func (s *RecommendationService) Create(productID, recommendedID uint) (*models.ProductRecommendation, error) {
	if productID == recommendedID {
		return nil, ErrRecommendationSelf
	}
	for _, id := range []uint{productID, recommendedID} {
		product, err := s.productRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, ErrProductNotFound
		}
	}
	rec := &models.ProductRecommendation{
		ProductID:            productID,
		RecommendedProductID: recommendedID,
	}
	if err := s.repo.Create(rec); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrRecommendationDuplicated
		}
		return nil, err
	}
	return s.repo.GetByID(rec.ID)
}

// Delete 删除推荐关系
func (s *RecommendationService) Delete(id uint) error {
	rec, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	return s.repo.Delete(rec.ID)
}
