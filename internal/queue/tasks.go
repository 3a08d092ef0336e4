package queue

import (
	"encoding/json"

	"github.com/greencart/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskInvoiceIssue 订单完成后开票任务
	TaskInvoiceIssue = constants.TaskInvoiceIssue
	// TaskOrderTimeoutCancel 超时取消任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
	// TaskOrderExpireSweep 周期扫描超时未支付订单
	TaskOrderExpireSweep = constants.TaskOrderExpireSweep
	// TaskTokenBlacklistPurge 周期清理过期的刷新令牌黑名单
	TaskTokenBlacklistPurge = constants.TaskTokenBlacklistPurge
)

// InvoiceIssuePayload 开票任务载荷
type InvoiceIssuePayload struct {
	OrderID uint `json:"order_id"`
}

// OrderTimeoutCancelPayload 超时取消任务载荷
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// NewInvoiceIssueTask 创建开票任务
func NewInvoiceIssueTask(payload InvoiceIssuePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInvoiceIssue, body), nil
}

// NewOrderTimeoutCancelTask 创建超时取消任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}

// NewOrderExpireSweepTask 创建超时订单扫描任务（由 Scheduler 周期触发）
func NewOrderExpireSweepTask() *asynq.Task {
	return asynq.NewTask(TaskOrderExpireSweep, nil)
}

// NewTokenBlacklistPurgeTask 创建黑名单清理任务
func NewTokenBlacklistPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskTokenBlacklistPurge, nil)
}
