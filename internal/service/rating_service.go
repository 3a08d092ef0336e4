package service

import (
	"strings"

	"github.com/greencart/internal/models"
	"github.com/greencart/internal/repository"
)

const (
	minRating = 1
	maxRating = 5
)

// RatingService 商品评分服务
type RatingService struct {
	repo        repository.RatingRepository
	productRepo repository.ProductRepository
}

// NewRatingService 创建评分服务
func NewRatingService(repo repository.RatingRepository, productRepo repository.ProductRepository) *RatingService {
	return &RatingService{repo: repo, productRepo: productRepo}
}

// RatingInput 评分输入
type RatingInput struct {
	ProductID uint
	Rating    int
	Review    string
}

// ListMine 当前顾客的评分
func (s *RatingService) ListMine(actor Actor, page, pageSize int) ([]models.ProductRating, int64, error) {
	return s.repo.ListByCustomer(actor.CustomerID, page, pageSize)
}

// Get 获取自己的评分
func (s *RatingService) Get(actor Actor, id uint) (*models.ProductRating, error) {
	rating, err := s.repo.GetByIDAndCustomer(id, actor.CustomerID)
	if err != nil {
		return nil, err
	}
	if rating == nil {
		return nil, ErrNotFound
	}
	return rating, nil
}

// Create 为商品评分，每位顾客每个商品一条
func (s *RatingService) Create(actor Actor, input RatingInput) (*models.ProductRating, error) {
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, ErrRatingOutOfRange
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	existing, err := s.repo.GetByCustomerAndProduct(actor.CustomerID, product.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRatingExists
	}
	rating := &models.ProductRating{
		CustomerID: actor.CustomerID,
		ProductID:  product.ID,
		Rating:     input.Rating,
		Review:     strings.TrimSpace(input.Review),
	}
	if err := s.repo.Create(rating); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrRatingExists
		}
		return nil, err
	}
	return rating, nil
}

// Update 修改自己的评分
func (s *RatingService) Update(actor Actor, id uint, input RatingInput) (*models.ProductRating, error) {
	if input.Rating < minRating || input.Rating > maxRating {
		return nil, ErrRatingOutOfRange
	}
	rating, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	rating.Rating = input.Rating
	rating.Review = strings.TrimSpace(input.Review)
	if err := s.repo.Update(rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// Delete 删除自己的评分
func (s *RatingService) Delete(actor Actor, id uint) error {
	rating, err := s.Get(actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(rating.ID)
}
