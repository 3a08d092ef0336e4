package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/greencart/internal/cache"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	ratingRepo   repository.RatingRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, ratingRepo repository.RatingRepository) *ProductService {
	return &ProductService{repo: repo, categoryRepo: categoryRepo, ratingRepo: ratingRepo}
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Stock       *int
	CategoryID  *uint
	Image       string
}

// ProductDetail 商品详情（附评分汇总）
type ProductDetail struct {
	models.Product
	Rating *models.RatingSummary `json:"rating"`
}

// productListPage 列表缓存结构
type productListPage struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
}

// List 公开商品列表，Redis 启用时缓存
func (s *ProductService) List(ctx context.Context, filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.WithCategory = true
	key, err := cache.ProductListKey(ctx, productListFingerprint(filter))
	if err == nil && cache.Enabled() {
		var cached productListPage
		if hit, err := cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached.Items, cached.Total, nil
		} else if err != nil {
			logger.Warnw("product_list_cache_read_failed", "error", err)
		}
	}

	items, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	if cache.Enabled() && key != "" {
		if err := cache.SetJSON(ctx, key, productListPage{Items: items, Total: total}, cache.ProductListTTL); err != nil {
			logger.Warnw("product_list_cache_write_failed", "error", err)
		}
	}
	return items, total, nil
}

// Get 商品详情
func (s *ProductService) Get(id uint) (*ProductDetail, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	detail := &ProductDetail{Product: *product}
	if s.ratingRepo != nil {
		summary, err := s.ratingRepo.Summary(id)
		if err != nil {
			return nil, err
		}
		detail.Rating = summary
	}
	return detail, nil
}

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	product := &models.Product{}
	if err := s.applyInput(product, input, true); err != nil {
		return nil, err
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	s.invalidateList(ctx)
	return s.repo.GetByID(product.ID)
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, id uint, input ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	if err := s.applyInput(product, input, false); err != nil {
		return nil, err
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.invalidateList(ctx)
	return s.repo.GetByID(product.ID)
}

// Delete 删除商品
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

// UpdateStock 员工直接设置库存绝对值
func (s *ProductService) UpdateStock(ctx context.Context, id uint, stock int) (*models.Product, error) {
	if stock < 0 {
		return nil, ErrInvalidStock
	}
	affected, err := s.repo.SetStock(id, stock)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	logger.Infow("product_stock_updated", "product_id", id, "stock", stock)
	s.invalidateList(ctx)
	return s.repo.GetByID(id)
}

func (s *ProductService) applyInput(product *models.Product, input ProductInput, creating bool) error {
	name := strings.TrimSpace(input.Name)
	if name == "" && creating {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if name != "" {
		product.Name = name
	}
	product.Description = strings.TrimSpace(input.Description)
	product.Image = strings.TrimSpace(input.Image)

	if raw := strings.TrimSpace(input.Price); raw != "" || creating {
		price, err := decimal.NewFromString(raw)
		if err != nil || price.IsNegative() {
			return fmt.Errorf("%w: price must be a non-negative decimal", ErrValidation)
		}
		product.Price = models.NewMoneyFromDecimal(price)
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return ErrInvalidStock
		}
		product.Stock = *input.Stock
	}
	if input.CategoryID != nil {
		if *input.CategoryID == 0 {
			product.CategoryID = nil
		} else {
			category, err := s.categoryRepo.GetByID(*input.CategoryID)
			if err != nil {
				return err
			}
			if category == nil {
				return fmt.Errorf("%w: category does not exist", ErrValidation)
			}
			id := category.ID
			product.CategoryID = &id
		}
		product.Category = nil
	}
	return nil
}

func (s *ProductService) invalidateList(ctx context.Context) {
	if err := cache.InvalidateProductList(ctx); err != nil {
		logger.Warnw("product_list_cache_invalidate_failed", "error", err)
	}
}

func productListFingerprint(filter repository.ProductListFilter) string {
	return fmt.Sprintf("p=%d&s=%d&c=%s&q=%s&min=%s&max=%s",
		filter.Page,
		filter.PageSize,
		strings.TrimSpace(filter.CategoryName),
		strings.ToLower(strings.TrimSpace(filter.Search)),
		strings.TrimSpace(filter.MinPrice),
		strings.TrimSpace(filter.MaxPrice),
	)
}
