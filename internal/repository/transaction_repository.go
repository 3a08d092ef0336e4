package repository

import (
	"errors"

	"github.com/greencart/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository 支付流水数据访问接口
type TransactionRepository interface {
	Create(txn *models.Transaction) error
	GetByID(id uint) (*models.Transaction, error)
	GetByIDAndCustomer(id uint, customerID uint) (*models.Transaction, error)
	GetByPaymentIntentID(paymentIntentID string) (*models.Transaction, error)
	CountByPaymentIntentID(paymentIntentID string) (int64, error)
	List(filter TransactionListFilter) ([]models.Transaction, int64, error)
	DetachPaymentMethod(paymentMethodID uint) error
	WithTx(tx *gorm.DB) TransactionRepository
}

// GormTransactionRepository GORM 实现
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建支付流水仓库
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) TransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx}
}

// Create 创建流水
func (r *GormTransactionRepository) Create(txn *models.Transaction) error {
	return r.db.Omit("PaymentMethod").Create(txn).Error
}

// GetByID 根据 ID 获取流水
func (r *GormTransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.Preload("PaymentMethod").First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByIDAndCustomer 获取顾客自己的流水
func (r *GormTransactionRepository) GetByIDAndCustomer(id uint, customerID uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.Preload("PaymentMethod").Where("id = ? AND customer_id = ?", id, customerID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByPaymentIntentID 根据支付意图获取流水（包含已软删除记录）
func (r *GormTransactionRepository) GetByPaymentIntentID(paymentIntentID string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.Unscoped().Where("stripe_payment_intent_id = ?", paymentIntentID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// CountByPaymentIntentID 统计支付意图对应的流水数
func (r *GormTransactionRepository) CountByPaymentIntentID(paymentIntentID string) (int64, error) {
	var count int64
	err := r.db.Unscoped().Model(&models.Transaction{}).Where("stripe_payment_intent_id = ?", paymentIntentID).Count(&count).Error
	return count, err
}

// List 流水列表
func (r *GormTransactionRepository) List(filter TransactionListFilter) ([]models.Transaction, int64, error) {
	query := r.db.Model(&models.Transaction{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txns []models.Transaction
	query = applyPagination(query.Preload("PaymentMethod"), filter.Page, filter.PageSize)
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// DetachPaymentMethod 支付方式删除后解除流水关联
func (r *GormTransactionRepository) DetachPaymentMethod(paymentMethodID uint) error {
	return r.db.Unscoped().Model(&models.Transaction{}).
		Where("payment_method_id = ?", paymentMethodID).
		Update("payment_method_id", nil).Error
}
