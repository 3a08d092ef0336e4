package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/greencart/internal/constants"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/models"
	"github.com/greencart/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultInvoiceDueDays  = 30
	invoiceNumberAttempts  = 3
	invoiceNumberSuffixLen = 6
)

// InvoiceService 发票服务
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.OrderRepository
	dueDays     int
}

// NewInvoiceService 创建发票服务
func NewInvoiceService(invoiceRepo repository.InvoiceRepository, orderRepo repository.OrderRepository, dueDays int) *InvoiceService {
	if dueDays <= 0 {
		dueDays = defaultInvoiceDueDays
	}
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		dueDays:     dueDays,
	}
}

// IssueForOrder 为已完成订单开票，重复调用返回已有发票
func (s *InvoiceService) IssueForOrder(orderID uint) (*models.Invoice, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.Status != constants.OrderStatusCompleted {
		return nil, ErrInvoiceOrderIncomplete
	}
	existing, err := s.invoiceRepo.GetByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	issuedAt := time.Now()
	for attempt := 0; attempt < invoiceNumberAttempts; attempt++ {
		invoice := &models.Invoice{
			OrderID:       order.ID,
			CustomerID:    order.CustomerID,
			InvoiceNumber: generateInvoiceNumber(issuedAt),
			Amount:        order.TotalAmount,
			IssuedAt:      issuedAt,
			DueDate:       issuedAt.AddDate(0, 0, s.dueDays),
		}
		err := s.invoiceRepo.Create(invoice)
		if err == nil {
			logger.Infow("invoice_issued",
				"invoice_id", invoice.ID,
				"invoice_number", invoice.InvoiceNumber,
				"order_id", order.ID,
				"amount", invoice.Amount.String(),
			)
			return invoice, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, err
		}
		// 并发开票或单号冲突：已有发票则直接返回
		existing, lookupErr := s.invoiceRepo.GetByOrderID(order.ID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("invoice number collision after %d attempts", invoiceNumberAttempts)
}

// List 发票列表（员工查看全部）
func (s *InvoiceService) List(actor Actor, page, pageSize int) ([]models.Invoice, int64, error) {
	return s.invoiceRepo.List(repository.InvoiceListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: actor.scopeCustomerID(),
	})
}

// Get 发票详情
func (s *InvoiceService) Get(actor Actor, id uint) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if invoice == nil || !actor.owns(invoice.CustomerID) {
		return nil, ErrNotFound
	}
	return invoice, nil
}

// generateInvoiceNumber INV-YYYYMMDD-XXXXXX
func generateInvoiceNumber(now time.Time) string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("%s%s-%s", constants.InvoiceNumberPrefix, now.Format("20060102"), hex[:invoiceNumberSuffixLen])
}
