package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task Types
const (
	TaskTypeVerificationCode = "notify:verification_code"
	TaskTypeOrderStatus      = "notify:order_status"
	TaskTypePurgeExpiredOTP  = "maintenance:purge_expired_otp"
)

// Task Queues
const (
	QueueCritical = "critical" // For time-sensitive tasks like email sending
	QueueDefault  = "default"  // For regular tasks
	QueueLow      = "low"      // For background tasks like cleanup
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
)

// Task Retry Settings
const (
	RetryMax     = 5
	RetryDefault = 3
	RetryMin     = 1
)

// PurgeSchedule is the cron spec of the expired code cleanup.
const PurgeSchedule = "@every 1h"

// PurgeGrace is how long an expired code is kept before it is cleared.
const PurgeGrace = 24 * time.Hour

type VerificationCodePayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type OrderStatusPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func NewVerificationCodeTask(email, code string) (*asynq.Task, error) {
	payload, err := json.Marshal(VerificationCodePayload{Email: email, Code: code})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal verification payload: %w", err)
	}
	return asynq.NewTask(TaskTypeVerificationCode, payload,
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(RetryDefault),
		asynq.Timeout(TimeoutShort),
	), nil
}

func NewOrderStatusTask(orderID, status string) (*asynq.Task, error) {
	payload, err := json.Marshal(OrderStatusPayload{OrderID: orderID, Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order status payload: %w", err)
	}
	return asynq.NewTask(TaskTypeOrderStatus, payload,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(RetryMax),
		asynq.Timeout(TimeoutShort),
	), nil
}

func NewPurgeExpiredOTPTask() *asynq.Task {
	return asynq.NewTask(TaskTypePurgeExpiredOTP, nil,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(RetryMin),
		asynq.Timeout(TimeoutMedium),
	)
}
