package repository

import (
	"errors"

	"github.com/greencart/internal/models"

	"gorm.io/gorm"
)

// PaymentMethodRepository 支付方式数据访问接口
type PaymentMethodRepository interface {
	ListByCustomer(customerID uint) ([]models.PaymentMethod, error)
	GetByIDAndCustomer(id uint, customerID uint) (*models.PaymentMethod, error)
	GetByCustomerAndType(customerID uint, methodType string) (*models.PaymentMethod, error)
	Create(method *models.PaymentMethod) error
	Update(method *models.PaymentMethod) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) PaymentMethodRepository
}

// GormPaymentMethodRepository GORM 实现
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository 创建支付方式仓库
func NewPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentMethodRepository) WithTx(tx *gorm.DB) PaymentMethodRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentMethodRepository{db: tx}
}

// ListByCustomer 顾客的支付方式
func (r *GormPaymentMethodRepository) ListByCustomer(customerID uint) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := r.db.Where("customer_id = ?", customerID).Order("id asc").Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// GetByIDAndCustomer 获取顾客自己的支付方式
func (r *GormPaymentMethodRepository) GetByIDAndCustomer(id uint, customerID uint) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.Where("id = ? AND customer_id = ?", id, customerID).First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

// GetByCustomerAndType 按类型获取支付方式
func (r *GormPaymentMethodRepository) GetByCustomerAndType(customerID uint, methodType string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.Where("customer_id = ? AND method_type = ?", customerID, methodType).First(&method).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &method, nil
}

// Create 创建支付方式
func (r *GormPaymentMethodRepository) Create(method *models.PaymentMethod) error {
	return r.db.Create(method).Error
}

// Update 更新支付方式
func (r *GormPaymentMethodRepository) Update(method *models.PaymentMethod) error {
	return r.db.Save(method).Error
}

// Delete 删除支付方式，关联流水的 payment_method_id 置空
func (r *GormPaymentMethodRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := NewTransactionRepository(tx).DetachPaymentMethod(id); err != nil {
			return err
		}
		return tx.Delete(&models.PaymentMethod{}, id).Error
	})
}
