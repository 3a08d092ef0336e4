package repository

import (
	"errors"

	"github.com/greencart/internal/models"

	"gorm.io/gorm"
)

// InvoiceRepository 发票数据访问接口
type InvoiceRepository interface {
	Create(invoice *models.Invoice) error
	GetByID(id uint) (*models.Invoice, error)
	GetByIDAndCustomer(id uint, customerID uint) (*models.Invoice, error)
	GetByOrderID(orderID uint) (*models.Invoice, error)
	List(filter InvoiceListFilter) ([]models.Invoice, int64, error)
	WithTx(tx *gorm.DB) InvoiceRepository
}

// GormInvoiceRepository GORM 实现
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository 创建发票仓库
func NewInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInvoiceRepository) WithTx(tx *gorm.DB) InvoiceRepository {
	if tx == nil {
		return r
	}
	return &GormInvoiceRepository{db: tx}
}

// Create 创建发票
func (r *GormInvoiceRepository) Create(invoice *models.Invoice) error {
	return r.db.Create(invoice).Error
}

// GetByID 根据 ID 获取发票
func (r *GormInvoiceRepository) GetByID(id uint) (*models.Invoice, error) {
	return r.first(r.db.Where("id = ?", id))
}

// GetByIDAndCustomer 获取顾客自己的发票
func (r *GormInvoiceRepository) GetByIDAndCustomer(id uint, customerID uint) (*models.Invoice, error) {
	return r.first(r.db.Where("id = ? AND customer_id = ?", id, customerID))
}

// GetByOrderID 根据订单获取发票（包含已软删除记录）
func (r *GormInvoiceRepository) GetByOrderID(orderID uint) (*models.Invoice, error) {
	return r.first(r.db.Unscoped().Where("order_id = ?", orderID))
}

func (r *GormInvoiceRepository) first(query *gorm.DB) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := query.First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// List 发票列表
func (r *GormInvoiceRepository) List(filter InvoiceListFilter) ([]models.Invoice, int64, error) {
	query := r.db.Model(&models.Invoice{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var invoices []models.Invoice
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id desc").Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}
