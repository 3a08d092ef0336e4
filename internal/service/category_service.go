package service

import (
	"fmt"
	"strings"

	"github.com/greencart/internal/models"
	"github.com/greencart/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CategoryInput 创建/更新分类输入
type CategoryInput struct {
	Name        string
	Description string
}

// List 获取分类列表
func (s *CategoryService) List(name string) ([]models.Category, error) {
	return s.repo.List(name)
}

// Get 获取分类
func (s *CategoryService) Get(id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(input CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	exist, err := s.repo.GetByName(name)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrCategoryNameExists
	}
	category := &models.Category{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.Create(category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCategoryNameExists
		}
		return nil, err
	}
	return category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" && name != category.Name {
		exist, err := s.repo.GetByName(name)
		if err != nil {
			return nil, err
		}
		if exist != nil {
			return nil, ErrCategoryNameExists
		}
		category.Name = name
	}
	category.Description = strings.TrimSpace(input.Description)
	if err := s.repo.Update(category); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCategoryNameExists
		}
		return nil, err
	}
	return category, nil
}

// Delete 删除分类，商品的分类置空
func (s *CategoryService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}
