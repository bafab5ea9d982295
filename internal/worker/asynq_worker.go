package worker

import (
	"context"
	"encoding/json"

	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/provider"
	"github.com/fuguang-next/internal/queue"

	"github.com/hibiken/asynq"
)

// OrderCanceller 超时取消订单
type OrderCanceller interface {
	CancelExpiredOrder(ctx context.Context, orderID uint) error
}

// SettlementRetrier 支付入账重试
type SettlementRetrier interface {
	RetrySettlement(ctx context.Context, orderID uint, source string) error
}

// Consumer 异步任务消费者
type Consumer struct {
	orders   OrderCanceller
	payments SettlementRetrier
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{}
	if c == nil {
		return consumer
	}
	if c.OrderService != nil {
		consumer.orders = c.OrderService
	}
	if c.PaymentService != nil {
		consumer.payments = c.PaymentService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
	mux.HandleFunc(queue.TaskPaymentSettleRetry, c.handlePaymentSettleRetry)
}

func (c *Consumer) handleOrderTimeoutCancel(ctx context.Context, task *asynq.Task) error {
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
	if c.orders == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.orders.CancelExpiredOrder(ctx, payload.OrderID); err != nil {
		logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handlePaymentSettleRetry(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_settle_retry_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PaymentSettleRetryPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_settle_retry_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_payment_settle_retry_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.payments == nil {
		logger.Warnw("worker_payment_settle_retry_skip_payment_service_nil", "order_id", payload.OrderID)
		return nil
	}
	// 返回错误交给 asynq 按退避策略重试
	return c.payments.RetrySettlement(ctx, payload.OrderID, payload.Source)
}
