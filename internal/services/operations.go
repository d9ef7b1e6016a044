package services

import (
	"context"
	"time"

	"cargodesk/internal/errs"
	"cargodesk/internal/events"
	"cargodesk/internal/models"
	"cargodesk/internal/utils/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppendOperationInput struct {
	OrderID     string
	StatusID    uint64
	AdminID     uint64
	Description string
}

type OperationFilter struct {
	OrderID  string
	StatusID *uint64
}

// OperationService maintains the append-only status history of orders.
type OperationService struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewOperationService(db *gorm.DB) *OperationService {
	return &OperationService{db: db, log: logger.New("operation_service"), now: time.Now}
}

// Append records a status change. The order row is locked so a concurrent
// cancellation either commits first and rejects this call or waits for it.
func (s *OperationService) Append(ctx context.Context, in AppendOperationInput) (*models.Operation, error) {
	if err := checkOrderID(in.OrderID); err != nil {
		return nil, err
	}

	var op models.Operation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", in.OrderID).First(&order).Error; err != nil {
			return lookupErr(err, "order")
		}

		var status models.Status
		if err := tx.First(&status, in.StatusID).Error; err != nil {
			return lookupErr(err, "status")
		}

		if order.IsCancelled {
			return errs.Conflict("order %s is cancelled", order.OrderUniqueID)
		}

		op = models.Operation{
			OrderID:       order.ID,
			StatusID:      status.ID,
			AdminID:       in.AdminID,
			Description:   in.Description,
			OperationDate: s.now(),
		}
		if err := tx.Create(&op).Error; err != nil {
			return errs.Internal("failed to create operation", err)
		}

		return tx.Preload("Status").Preload("Admin", selectAdminSummary).First(&op, op.ID).Error
	})
	if err != nil {
		return nil, internal("failed to append operation", err)
	}

	s.log.Info("Order %s moved to %s by admin %d", op.OrderID, op.Status.Name, op.AdminID)
	events.Emit(events.OperationCreated, &op)
	return &op, nil
}

// ListByOrder returns the history of one order, newest first.
func (s *OperationService) ListByOrder(ctx context.Context, orderID string, page Page) ([]models.Operation, Pagination, error) {
	if err := checkOrderID(orderID); err != nil {
		return nil, Pagination{}, err
	}
	if err := s.requireOrder(ctx, orderID); err != nil {
		return nil, Pagination{}, err
	}
	return s.List(ctx, OperationFilter{OrderID: orderID}, page)
}

func (s *OperationService) requireOrder(ctx context.Context, orderID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return errs.Internal("failed to load order", err)
	}
	if count == 0 {
		return errs.NotFound("order not found")
	}
	return nil
}

func (s *OperationService) List(ctx context.Context, filter OperationFilter, page Page) ([]models.Operation, Pagination, error) {
	var operations []models.Operation
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Operation{})
	if filter.OrderID != "" {
		if err := checkOrderID(filter.OrderID); err != nil {
			return nil, Pagination{}, err
		}
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.StatusID != nil {
		query = query.Where("status_id = ?", *filter.StatusID)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, errs.Internal("failed to count operations", err)
	}
	if err := query.
		Preload("Status").
		Preload("Admin", selectAdminSummary).
		Preload("Order").
		Order("operation_date DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&operations).Error; err != nil {
		return nil, Pagination{}, errs.Internal("failed to list operations", err)
	}
	return operations, page.Result(total), nil
}

// CurrentStatus is the status of the newest operation, or Pending.
func (s *OperationService) CurrentStatus(ctx context.Context, orderID string) (string, error) {
	if err := checkOrderID(orderID); err != nil {
		return "", err
	}
	if err := s.requireOrder(ctx, orderID); err != nil {
		return "", err
	}
	order := &models.Order{Base: models.Base{ID: orderID}}
	if err := attachCurrentStatuses(s.db.WithContext(ctx), order); err != nil {
		return "", err
	}
	return order.CurrentStatus, nil
}
