package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/greencart/internal/constants"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/queue"
	"github.com/greencart/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	cartRepo      repository.CartRepository
	couponService *CouponService
	queueClient   *queue.Client
	expireMinutes int
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository, couponService *CouponService, queueClient *queue.Client, expireMinutes int) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		couponService: couponService,
		queueClient:   queueClient,
		expireMinutes: expireMinutes,
	}
}

// CreateOrderInput 创建订单输入，Items 为空时使用购物车
type CreateOrderInput struct {
	CustomerID uint
	Items      []CreateOrderItem
	CouponCode string
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
}

// CreateOrder 创建订单
// 购物车中已预留的数量直接抵扣，只对剩余数量扣减库存；消耗的购物车行在同一事务内删除或减少
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.CustomerID == 0 {
		return nil, ErrInvalidOrderItem
	}
	requested, err := mergeCreateOrderItems(input.Items)
	if err != nil {
		return nil, err
	}
	fromCart := len(requested) == 0

	var coupon *models.Coupon
	if code := strings.TrimSpace(input.CouponCode); code != "" {
		coupon, err = s.couponService.Validate(code, time.Now())
		if err != nil {
			return nil, err
		}
	}

	var order *models.Order
	for attempt := 0; attempt < cartMutationAttempts; attempt++ {
		order, err = s.createInTx(input.CustomerID, requested, coupon)
		if !errors.Is(err, errCartLineConflict) {
			break
		}
	}
	if errors.Is(err, errCartLineConflict) {
		err = fmt.Errorf("%w: cart changed concurrently, retry later", ErrValidation)
	}
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) || IsValidationError(err) {
			logger.Infow("order_create_rejected", "customer_id", input.CustomerID, "from_cart", fromCart, "error", err)
		} else {
			logger.Errorw("order_create_failed", "customer_id", input.CustomerID, "from_cart", fromCart, "error", err)
		}
		return nil, err
	}
	logger.Infow("order_created",
		"order_id", order.ID,
		"customer_id", order.CustomerID,
		"total_amount", order.TotalAmount.String(),
		"from_cart", fromCart,
	)

	s.scheduleTimeoutCancel(order.ID)
	full, err := s.orderRepo.GetByID(order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

func (s *OrderService) createInTx(customerID uint, requested []CreateOrderItem, coupon *models.Coupon) (*models.Order, error) {
	order := &models.Order{
		CustomerID: customerID,
		Status:     constants.OrderStatusPending,
	}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		lines, err := cartRepo.ListByCustomer(customerID)
		if err != nil {
			return err
		}
		linesByProduct := make(map[uint]models.CartItem, len(lines))
		for _, line := range lines {
			linesByProduct[line.ProductID] = line
		}
		items := requested
		if len(requested) == 0 {
			for _, line := range lines {
				items = append(items, CreateOrderItem{ProductID: line.ProductID, Quantity: line.Quantity})
			}
		}
		if len(items) == 0 {
			return ErrEmptyOrder
		}

		orderItems := make([]models.OrderItem, 0, len(items))
		subtotal := decimal.Zero
		for _, item := range items {
			product, err := productRepo.GetByID(item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: product %d does not exist", ErrValidation, item.ProductID)
			}
			if err := consumeReservation(cartRepo, productRepo, linesByProduct, item); err != nil {
				return err
			}
			orderItem := models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				Price:       product.Price,
			}
			subtotal = subtotal.Add(orderItem.Subtotal().Decimal)
			orderItems = append(orderItems, orderItem)
		}

		total, discount := applyCouponDiscount(subtotal, coupon)
		order.TotalAmount = models.NewMoneyFromDecimal(total)
		order.DiscountAmount = models.NewMoneyFromDecimal(discount)
		if coupon != nil {
			order.CouponCode = coupon.Code
		}
		return orderRepo.Create(order, orderItems)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// consumeReservation 抵扣购物车预留，剩余数量按 CAS 扣减库存
func consumeReservation(cartRepo repository.CartRepository, productRepo repository.ProductRepository, linesByProduct map[uint]models.CartItem, item CreateOrderItem) error {
	remainder := item.Quantity
	if line, ok := linesByProduct[item.ProductID]; ok {
		credited := line.Quantity
		if credited > item.Quantity {
			credited = item.Quantity
		}
		remainder -= credited
		var affected int64
		var err error
		if line.Quantity > credited {
			affected, err = cartRepo.SwapQuantity(line.ID, line.Quantity, line.Quantity-credited)
		} else {
			affected, err = cartRepo.Delete(line.ID, line.Quantity)
		}
		if err != nil {
			return err
		}
		if affected == 0 {
			return errCartLineConflict
		}
	}
	if remainder > 0 {
		return reserveStock(productRepo, item.ProductID, remainder)
	}
	return nil
}

// applyCouponDiscount 扣减优惠金额，总额不低于 0
func applyCouponDiscount(subtotal decimal.Decimal, coupon *models.Coupon) (decimal.Decimal, decimal.Decimal) {
	if coupon == nil {
		return subtotal, decimal.Zero
	}
	discount := coupon.DiscountAmount.Decimal
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return subtotal.Sub(discount), discount
}

// mergeCreateOrderItems 合并重复商品的下单项
func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	merged := make([]CreateOrderItem, 0, len(items))
	indexMap := make(map[uint]int)
	for _, item := range items {
		if item.ProductID == 0 {
			return nil, ErrInvalidOrderItem
		}
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if idx, ok := indexMap[item.ProductID]; ok {
			merged[idx].Quantity += item.Quantity
			continue
		}
		indexMap[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func (s *OrderService) scheduleTimeoutCancel(orderID uint) {
	if s.queueClient == nil || !s.queueClient.Enabled() || s.expireMinutes <= 0 {
		return
	}
	delay := time.Duration(s.expireMinutes) * time.Minute
	if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{OrderID: orderID}, delay); err != nil {
		logger.Warnw("order_enqueue_timeout_cancel_failed", "order_id", orderID, "error", err)
	}
}

// ListOrders 订单列表（员工查看全部）
func (s *OrderService) ListOrders(actor Actor, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.CustomerID = actor.scopeCustomerID()
	return s.orderRepo.List(filter)
}

// GetOrder 订单详情
func (s *OrderService) GetOrder(actor Actor, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil || !actor.owns(order.CustomerID) {
		return nil, ErrNotFound
	}
	return order, nil
}

// CancelOrder 取消待支付订单并回补库存
func (s *OrderService) CancelOrder(actor Actor, id uint) (*models.Order, error) {
	order, err := s.GetOrder(actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.cancelPending(order); err != nil {
		return nil, err
	}
	logger.Infow("order_cancelled", "order_id", order.ID, "customer_id", order.CustomerID, "by_staff", actor.IsStaff)
	return s.orderRepo.GetByID(order.ID)
}

// CancelExpiredOrder 超时取消订单（队列任务调用）
func (s *OrderService) CancelExpiredOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return order, nil
	}
	if s.expireMinutes > 0 && order.CreatedAt.Add(time.Duration(s.expireMinutes)*time.Minute).After(time.Now()) {
		return order, nil
	}
	if err := s.cancelPending(order); err != nil {
		if errors.Is(err, ErrOrderStatusInvalid) {
			return s.orderRepo.GetByID(orderID)
		}
		return nil, err
	}
	logger.Infow("order_expired_cancelled", "order_id", order.ID, "customer_id", order.CustomerID)
	return s.orderRepo.GetByID(order.ID)
}

// CancelExpiredOrders 批量取消超时订单，返回取消数量
func (s *OrderService) CancelExpiredOrders(now time.Time, limit int) (int, error) {
	if s.expireMinutes <= 0 {
		return 0, nil
	}
	before := now.Add(-time.Duration(s.expireMinutes) * time.Minute)
	orders, err := s.orderRepo.ListPendingBefore(before, limit)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for i := range orders {
		if err := s.cancelPending(&orders[i]); err != nil {
			if errors.Is(err, ErrOrderStatusInvalid) {
				continue
			}
			return cancelled, err
		}
		cancelled++
	}
	if cancelled > 0 {
		logger.Infow("order_expired_sweep", "cancelled", cancelled)
	}
	return cancelled, nil
}

// cancelPending PENDING -> CANCELLED，条件更新成功后回补每个订单项的库存
func (s *OrderService) cancelPending(order *models.Order) error {
	if !isTransitionAllowed(order.Status, constants.OrderStatusCancelled) {
		return ErrOrderStatusInvalid
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		now := time.Now()
		affected, err := orderRepo.TransitionStatus(order.ID, constants.OrderStatusPending, constants.OrderStatusCancelled, map[string]interface{}{
			"canceled_at": now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderStatusInvalid
		}
		items := order.Items
		if len(items) == 0 {
			full, err := orderRepo.GetByID(order.ID)
			if err != nil {
				return err
			}
			if full != nil {
				items = full.Items
			}
		}
		for _, item := range items {
			if err := productRepo.ReleaseStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}
