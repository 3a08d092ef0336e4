package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/provider"
	"github.com/greencart/internal/queue"
	"github.com/greencart/internal/service"

	"github.com/hibiken/asynq"
)

const expireSweepBatchSize = 200

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskInvoiceIssue, c.handleInvoiceIssue)
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
	mux.HandleFunc(queue.TaskOrderExpireSweep, c.handleOrderExpireSweep)
	mux.HandleFunc(queue.TaskTokenBlacklistPurge, c.handleTokenBlacklistPurge)
}

func (c *Consumer) handleInvoiceIssue(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_invoice_issue_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.InvoiceIssuePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_invoice_issue_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_invoice_issue_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.InvoiceService == nil {
		logger.Warnw("worker_invoice_issue_skip_service_nil", "order_id", payload.OrderID)
		return nil
	}
	invoice, err := c.InvoiceService.IssueForOrder(payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			logger.Debugw("worker_invoice_issue_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		case errors.Is(err, service.ErrInvoiceOrderIncomplete):
			logger.Debugw("worker_invoice_issue_skip_order_incomplete", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_invoice_issue_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	logger.Infow("worker_invoice_issued", "order_id", payload.OrderID, "invoice_number", invoice.InvoiceNumber)
	return nil
}

func (c *Consumer) handleOrderTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if _, err := c.OrderService.CancelExpiredOrder(payload.OrderID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Debugw("worker_order_timeout_cancel_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderExpireSweep(_ context.Context, _ *asynq.Task) error {
	if c == nil || c.OrderService == nil {
		logger.Debugw("worker_order_expire_sweep_skip_nil")
		return nil
	}
	cancelled, err := c.OrderService.CancelExpiredOrders(time.Now(), expireSweepBatchSize)
	if err != nil {
		logger.Warnw("worker_order_expire_sweep_failed", "cancelled", cancelled, "error", err)
		return err
	}
	if cancelled > 0 {
		logger.Infow("worker_order_expire_sweep_done", "cancelled", cancelled)
	}
	return nil
}

func (c *Consumer) handleTokenBlacklistPurge(_ context.Context, _ *asynq.Task) error {
	if c == nil || c.CustomerAuthService == nil {
		logger.Debugw("worker_token_blacklist_purge_skip_nil")
		return nil
	}
	purged, err := c.CustomerAuthService.PurgeExpiredBlacklist(time.Now())
	if err != nil {
		logger.Warnw("worker_token_blacklist_purge_failed", "error", err)
		return err
	}
	if purged > 0 {
		logger.Infow("worker_token_blacklist_purged", "purged", purged)
	}
	return nil
}
