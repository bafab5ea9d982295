package queue

import (
	"encoding/json"

	"github.com/fuguang-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderTimeoutCancel 超时取消任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
	// TaskPaymentSettleRetry 支付入账重试任务
	TaskPaymentSettleRetry = constants.TaskPaymentSettleRetry
)

// OrderTimeoutCancelPayload 超时取消任务载荷
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// PaymentSettleRetryPayload 支付入账重试任务载荷
type PaymentSettleRetryPayload struct {
	OrderID uint   `json:"order_id"`
	Source  string `json:"source"`
}

// NewOrderTimeoutCancelTask 创建超时取消任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderTimeoutCancel, payload)
}

// NewPaymentSettleRetryTask 创建支付入账重试任务
func NewPaymentSettleRetryTask(payload PaymentSettleRetryPayload) (*asynq.Task, error) {
	return newJSONTask(TaskPaymentSettleRetry, payload)
}

func newJSONTask(typename string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typename, body), nil
}
