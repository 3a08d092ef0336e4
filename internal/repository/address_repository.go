package repository

import (
	"errors"

	"github.com/greencart/internal/models"

	"gorm.io/gorm"
)

// AddressRepository 收货地址数据访问接口
type AddressRepository interface {
	ListByCustomer(customerID uint) ([]models.Address, error)
	GetByIDAndCustomer(id uint, customerID uint) (*models.Address, error)
	Create(address *models.Address) error
	Update(address *models.Address) error
	Delete(id uint) error
	ClearDefault(customerID uint, exceptID uint) error
	WithTx(tx *gorm.DB) AddressRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormAddressRepository GORM 实现
type GormAddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓库
func NewAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAddressRepository) WithTx(tx *gorm.DB) AddressRepository {
	if tx == nil {
		return r
	}
	return &GormAddressRepository{db: tx}
}

// Transaction 执行事务
func (r *GormAddressRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// ListByCustomer 顾客的地址列表，默认地址在前
func (r *GormAddressRepository) ListByCustomer(customerID uint) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.Where("customer_id = ?", customerID).Order("is_default desc, id asc").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// GetByIDAndCustomer 获取顾客自己的地址
func (r *GormAddressRepository) GetByIDAndCustomer(id uint, customerID uint) (*models.Address, error) {
	var address models.Address
	if err := r.db.Where("id = ? AND customer_id = ?", id, customerID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// Create 创建地址
func (r *GormAddressRepository) Create(address *models.Address) error {
	return r.db.Create(address).Error
}

// Update 更新地址
func (r *GormAddressRepository) Update(address *models.Address) error {
	return r.db.Save(address).Error
}

// Delete 删除地址
func (r *GormAddressRepository) Delete(id uint) error {
	return r.db.Delete(&models.Address{}, id).Error
}

// ClearDefault 取消顾客其余地址的默认标记
func (r *GormAddressRepository) ClearDefault(customerID uint, exceptID uint) error {
	query := r.db.Model(&models.Address{}).Where("customer_id = ? AND is_default = ?", customerID, true)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	return query.Update("is_default", false).Error
}
