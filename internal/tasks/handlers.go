package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cargodesk/internal/models"
	"cargodesk/internal/services"
	"cargodesk/internal/utils/logger"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// Mailer is the outbound mail transport used by notification tasks.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// CodePurger clears verification codes that expired before a cutoff.
type CodePurger interface {
	PurgeExpiredCodes(ctx context.Context, cutoff time.Time) (int64, error)
}

// TaskHandler handles task processing with improved error handling and logging
type TaskHandler struct {
	db     *gorm.DB
	mailer Mailer
	purger CodePurger
	logger *logger.Logger
	now    func() time.Time
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(db *gorm.DB, mailer Mailer, purger CodePurger) *TaskHandler {
	return &TaskHandler{
		db:     db,
		mailer: mailer,
		purger: purger,
		logger: logger.New("task_handler"),
		now:    time.Now,
	}
}

func (h *TaskHandler) HandleVerificationCode(ctx context.Context, t *asynq.Task) error {
	var p VerificationCodePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid verification payload: %v: %w", err, asynq.SkipRetry)
	}
	subject, body := services.VerificationMail(p.Code)
	return h.mailer.Send(ctx, p.Email, subject, body)
}

func (h *TaskHandler) HandleOrderStatus(ctx context.Context, t *asynq.Task) error {
	var p OrderStatusPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid order status payload: %v: %w", err, asynq.SkipRetry)
	}

	var order models.Order
	if err := h.db.WithContext(ctx).Preload("Client").Where("id = ?", p.OrderID).First(&order).Error; err != nil {
		// the order may have been removed since the task was queued
		h.logger.Warn("Skipping status notification for %s: %v", p.OrderID, err)
		return nil
	}
	if order.Client == nil || order.Client.Email == "" {
		return nil
	}

	subject, body := services.OrderStatusMail(order.OrderUniqueID, p.Status)
	return h.mailer.Send(ctx, order.Client.Email, subject, body)
}

func (h *TaskHandler) HandlePurgeExpiredOTP(ctx context.Context, _ *asynq.Task) error {
	cutoff := h.now().Add(-PurgeGrace)
	n, err := h.purger.PurgeExpiredCodes(ctx, cutoff)
	if err != nil {
		return h.logger.Error("Failed to purge expired codes", err)
	}
	h.logger.Debug("Purged %d expired codes older than %s", n, cutoff.Format(time.RFC3339))
	return nil
}

// Register mounts every handler on mux.
func (h *TaskHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeVerificationCode, h.HandleVerificationCode)
	mux.HandleFunc(TaskTypeOrderStatus, h.HandleOrderStatus)
	mux.HandleFunc(TaskTypePurgeExpiredOTP, h.HandlePurgeExpiredOTP)
}
