package service

import (
	"fmt"
	"strings"

	"github.com/greencart/internal/constants"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/repository"
)

// PaymentMethodService 顾客支付方式服务
type PaymentMethodService struct {
	repo repository.PaymentMethodRepository
}

// NewPaymentMethodService 创建支付方式服务
func NewPaymentMethodService(repo repository.PaymentMethodRepository) *PaymentMethodService {
	return &PaymentMethodService{repo: repo}
}

// PaymentMethodInput 支付方式输入，Details 为原始号码，落库前脱敏
type PaymentMethodInput struct {
	MethodType string
	Details    string
}

// List 当前顾客的支付方式
func (s *PaymentMethodService) List(actor Actor) ([]models.PaymentMethod, error) {
	return s.repo.ListByCustomer(actor.CustomerID)
}

// Get 获取支付方式
func (s *PaymentMethodService) Get(actor Actor, id uint) (*models.PaymentMethod, error) {
	method, err := s.repo.GetByIDAndCustomer(id, actor.CustomerID)
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, ErrNotFound
	}
	return method, nil
}

// Create 新增支付方式，同一顾客每种类型只允许一条
func (s *PaymentMethodService) Create(actor Actor, input PaymentMethodInput) (*models.PaymentMethod, error) {
	methodType, details, err := normalizePaymentMethodInput(input)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByCustomerAndType(actor.CustomerID, methodType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPaymentMethodDuplicate
	}
	method := &models.PaymentMethod{
		CustomerID: actor.CustomerID,
		MethodType: methodType,
		Details:    details,
	}
	if err := s.repo.Create(method); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrPaymentMethodDuplicate
		}
		return nil, err
	}
	logger.Infow("payment_method_created", "customer_id", actor.CustomerID, "payment_method_id", method.ID, "method_type", methodType)
	return method, nil
}

// Update 更新支付方式
func (s *PaymentMethodService) Update(actor Actor, id uint, input PaymentMethodInput) (*models.PaymentMethod, error) {
	method, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	methodType, details, err := normalizePaymentMethodInput(input)
	if err != nil {
		return nil, err
	}
	method.MethodType = methodType
	method.Details = details
	if err := s.repo.Update(method); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrPaymentMethodDuplicate
		}
		return nil, err
	}
	return method, nil
}

// Delete 删除支付方式，历史流水保留但解除关联
func (s *PaymentMethodService) Delete(actor Actor, id uint) error {
	method, err := s.Get(actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(method.ID)
}

func normalizePaymentMethodInput(input PaymentMethodInput) (string, string, error) {
	methodType := strings.ToUpper(strings.TrimSpace(input.MethodType))
	switch methodType {
	case constants.PaymentMethodCreditCard, constants.PaymentMethodDebitCard, constants.PaymentMethodBankAccount:
	default:
		return "", "", ErrPaymentMethodType
	}
	details := strings.TrimSpace(input.Details)
	if details == "" {
		return "", "", fmt.Errorf("%w: details is required", ErrValidation)
	}
	return methodType, details, nil
}
