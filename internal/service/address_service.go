package service

import (
	"fmt"
	"strings"

	"github.com/greencart/internal/models"
	"github.com/greencart/internal/repository"

	"gorm.io/gorm"
)

// AddressService 收货地址服务
type AddressService struct {
	repo repository.AddressRepository
}

// NewAddressService 创建地址服务
func NewAddressService(repo repository.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

// AddressInput 地址输入
type AddressInput struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
}

// List 当前顾客的地址
func (s *AddressService) List(actor Actor) ([]models.Address, error) {
	return s.repo.ListByCustomer(actor.CustomerID)
}

// Get 获取地址
func (s *AddressService) Get(actor Actor, id uint) (*models.Address, error) {
	address, err := s.repo.GetByIDAndCustomer(id, actor.CustomerID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrNotFound
	}
	return address, nil
}

// Create 新增地址；设为默认时同一事务内清除其余地址的默认标记
func (s *AddressService) Create(actor Actor, input AddressInput) (*models.Address, error) {
	address := &models.Address{CustomerID: actor.CustomerID}
	if err := applyAddressInput(address, input); err != nil {
		return nil, err
	}
	if err := s.save(address, true); err != nil {
		return nil, err
	}
	return address, nil
}

// Update 更新地址
func (s *AddressService) Update(actor Actor, id uint, input AddressInput) (*models.Address, error) {
	address, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyAddressInput(address, input); err != nil {
		return nil, err
	}
	if err := s.save(address, false); err != nil {
		return nil, err
	}
	return address, nil
}

// Delete 删除地址
func (s *AddressService) Delete(actor Actor, id uint) error {
	address, err := s.Get(actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(address.ID)
}

func (s *AddressService) save(address *models.Address, create bool) error {
	return s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if create {
			if err := repo.Create(address); err != nil {
				return err
			}
		} else if err := repo.Update(address); err != nil {
			return err
		}
		if !address.IsDefault {
			return nil
		}
		return repo.ClearDefault(address.CustomerID, address.ID)
	})
}

func applyAddressInput(address *models.Address, input AddressInput) error {
	street := strings.TrimSpace(input.Street)
	city := strings.TrimSpace(input.City)
	country := strings.TrimSpace(input.Country)
	if street == "" || city == "" || country == "" {
		return fmt.Errorf("%w: street, city and country are required", ErrValidation)
	}
	address.Street = street
	address.City = city
	address.State = strings.TrimSpace(input.State)
	address.PostalCode = strings.TrimSpace(input.PostalCode)
	address.Country = country
	address.IsDefault = input.IsDefault
	return nil
}
