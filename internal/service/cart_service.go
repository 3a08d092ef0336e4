package service

import (
	"errors"
	"fmt"

	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/repository"

	"gorm.io/gorm"
)

// errCartLineConflict 并发修改同一购物车行，整体重试
var errCartLineConflict = errors.New("cart line changed concurrently")

const cartMutationAttempts = 3

// CartService 购物车服务
// 每一行购物车都对应一笔已从 products.stock 扣除的库存预留
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItemInput 加入购物车输入
type AddItemInput struct {
	CustomerID uint
	ProductID  uint
	Quantity   int
}

// List 购物车行列表
func (s *CartService) List(actor Actor, page, pageSize int) ([]models.CartItem, int64, error) {
	return s.cartRepo.List(repository.CartListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: actor.scopeCustomerID(),
	})
}

// Get 获取购物车行
func (s *CartService) Get(actor Actor, id uint) (*models.CartItem, error) {
	item, err := s.cartRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil || !actor.owns(item.CustomerID) {
		return nil, ErrNotFound
	}
	return item, nil
}

// AddItem 加入购物车：扣减库存并累加购物车行数量
func (s *CartService) AddItem(input AddItemInput) (*models.CartItem, error) {
	if input.CustomerID == 0 || input.ProductID == 0 {
		return nil, ErrInvalidOrderItem
	}
	if input.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var lineID uint
	err := s.withRetry(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		product, err := productRepo.GetByID(input.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: product %d does not exist", ErrValidation, input.ProductID)
		}
		if err := reserveStock(productRepo, product.ID, input.Quantity); err != nil {
			return err
		}

		existing, err := cartRepo.GetByCustomerAndProduct(input.CustomerID, input.ProductID)
		if err != nil {
			return err
		}
		if existing != nil {
			lineID = existing.ID
			affected, err := cartRepo.IncrementQuantity(existing.ID, input.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return errCartLineConflict
			}
			return nil
		}
		item := &models.CartItem{
			CustomerID: input.CustomerID,
			ProductID:  input.ProductID,
			Quantity:   input.Quantity,
		}
		if err := cartRepo.Create(item); err != nil {
			if repository.IsUniqueViolation(err) {
				return errCartLineConflict
			}
			return err
		}
		lineID = item.ID
		return nil
	})
	if err != nil {
		logCartFailure("add", input.CustomerID, input.ProductID, err)
		return nil, err
	}
	logger.Infow("cart_item_reserved",
		"customer_id", input.CustomerID,
		"product_id", input.ProductID,
		"quantity", input.Quantity,
	)
	return s.cartRepo.GetByID(lineID)
}

// UpdateItem 设置购物车行数量，按差值扣减或回补库存
func (s *CartService) UpdateItem(actor Actor, id uint, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	err := s.withRetry(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		item, err := cartRepo.GetByID(id)
		if err != nil {
			return err
		}
		if item == nil || !actor.owns(item.CustomerID) {
			return ErrNotFound
		}
		delta := quantity - item.Quantity
		if delta == 0 {
			return nil
		}
		if delta > 0 {
			if err := reserveStock(productRepo, item.ProductID, delta); err != nil {
				return err
			}
		} else if err := productRepo.ReleaseStock(item.ProductID, -delta); err != nil {
			return err
		}
		affected, err := cartRepo.SwapQuantity(item.ID, item.Quantity, quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return errCartLineConflict
		}
		return nil
	})
	if err != nil {
		logCartFailure("update", actor.CustomerID, 0, err)
		return nil, err
	}
	return s.cartRepo.GetByID(id)
}

// RemoveItem 删除购物车行并回补全部预留库存
// 删除以读到的数量为条件，只有真正删掉该行的事务才回补库存
func (s *CartService) RemoveItem(actor Actor, id uint) error {
	err := s.withRetry(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		item, err := cartRepo.GetByID(id)
		if err != nil {
			return err
		}
		if item == nil || !actor.owns(item.CustomerID) {
			return ErrNotFound
		}
		affected, err := cartRepo.Delete(item.ID, item.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return errCartLineConflict
		}
		return productRepo.ReleaseStock(item.ProductID, item.Quantity)
	})
	if err != nil {
		logCartFailure("remove", actor.CustomerID, 0, err)
		return err
	}
	return nil
}

func (s *CartService) withRetry(fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < cartMutationAttempts; attempt++ {
		err = models.DB.Transaction(fn)
		if !errors.Is(err, errCartLineConflict) {
			return err
		}
	}
	return fmt.Errorf("%w: cart line busy, retry later", ErrValidation)
}

// reserveStock 条件扣减库存，不足时返回 ErrInsufficientStock
func reserveStock(productRepo repository.ProductRepository, productID uint, quantity int) error {
	affected, err := productRepo.ReserveStock(productID, quantity)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func logCartFailure(action string, customerID, productID uint, err error) {
	if errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrNotFound) || IsValidationError(err) {
		logger.Debugw("cart_mutation_rejected", "action", action, "customer_id", customerID, "product_id", productID, "error", err)
		return
	}
	logger.Errorw("cart_reserve_failed", "action", action, "customer_id", customerID, "product_id", productID, "error", err)
}
