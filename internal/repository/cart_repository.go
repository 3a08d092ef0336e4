package repository

import (
	"errors"

	"github.com/greencart/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	List(filter CartListFilter) ([]models.CartItem, int64, error)
	ListByCustomer(customerID uint) ([]models.CartItem, error)
	GetByID(id uint) (*models.CartItem, error)
	GetByCustomerAndProduct(customerID, productID uint) (*models.CartItem, error)
	Create(item *models.CartItem) error
	IncrementQuantity(id uint, delta int) (int64, error)
	SwapQuantity(id uint, from, to int) (int64, error)
	Delete(id uint, quantity int) (int64, error)
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// List 购物车行列表（员工可查看全部）
func (r *GormCartRepository) List(filter CartListFilter) ([]models.CartItem, int64, error) {
	query := r.db.Model(&models.CartItem{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.CartItem
	query = applyPagination(query.Preload("Product"), filter.Page, filter.PageSize)
	if err := query.Order("id asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByCustomer 获取顾客全部购物车行
func (r *GormCartRepository) ListByCustomer(customerID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("customer_id = ?", customerID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID 根据 ID 获取购物车行
func (r *GormCartRepository) GetByID(id uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Preload("Product").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByCustomerAndProduct 获取顾客某商品的购物车行
func (r *GormCartRepository) GetByCustomerAndProduct(customerID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Preload("Product").Where("customer_id = ? AND product_id = ?", customerID, productID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Create 新增购物车行
func (r *GormCartRepository) Create(item *models.CartItem) error {
	return r.db.Omit("Product").Create(item).Error
}

// IncrementQuantity 数量累加，返回受影响行数（行已被删除时为 0）
func (r *GormCartRepository) IncrementQuantity(id uint, delta int) (int64, error) {
	result := r.db.Model(&models.CartItem{}).Where("id = ?", id).Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SwapQuantity 条件更新数量（仅当当前数量为 from 时生效），返回受影响行数
func (r *GormCartRepository) SwapQuantity(id uint, from, to int) (int64, error) {
	result := r.db.Model(&models.CartItem{}).Where("id = ? AND quantity = ?", id, from).Update("quantity", to)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Delete 条件删除购物车行（仅当当前数量为 quantity 时生效），返回受影响行数
func (r *GormCartRepository) Delete(id uint, quantity int) (int64, error) {
	result := r.db.Where("id = ? AND quantity = ?", id, quantity).Delete(&models.CartItem{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
