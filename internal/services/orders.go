package services

import (
	"context"
	"strings"
	"time"

	"cargodesk/internal/errs"
	"cargodesk/internal/events"
	"cargodesk/internal/models"
	"cargodesk/internal/utils/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemInput struct {
	ProductID uint64
	Quantity  int
}

type CreateOrderInput struct {
	ClientID       uint64
	CurrencyTypeID uint64
	Items          []OrderItemInput
	ProductLink    string
	Truck          string
	Description    string
}

type OrderFilter struct {
	ClientID    *uint64
	IsCancelled *bool
}

type OrderService struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, log: logger.New("order_service"), now: time.Now}
}

// Create places an order in a single transaction. Unit prices are copied from
// the catalog into the items, so later price changes never alter the order.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, errs.InvalidRequest("order must contain at least one item")
	}
	ids := make([]uint64, 0, len(in.Items))
	seen := make(map[uint64]bool, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == 0 {
			return nil, errs.InvalidRequest("product id is required")
		}
		if item.Quantity <= 0 {
			return nil, errs.InvalidRequest("quantity must be a positive integer")
		}
		if seen[item.ProductID] {
			return nil, errs.InvalidRequest("product %d appears more than once", item.ProductID)
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.Where("id = ? AND is_active = ?", in.ClientID, true).First(&client).Error; err != nil {
			return lookupErr(err, "client")
		}

		catalog := NewCatalog(tx)
		if _, err := catalog.FindCurrency(ctx, in.CurrencyTypeID); err != nil {
			return err
		}

		products, err := catalog.FindAvailableProducts(ctx, ids)
		if err != nil {
			return err
		}
		if len(products) != len(in.Items) {
			return errs.InvalidRequest("some products were not found or are unavailable")
		}

		byID := make(map[uint64]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		summa := decimal.Zero
		items := make([]models.OrderItem, 0, len(in.Items))
		for _, req := range in.Items {
			product := byID[req.ProductID]
			item := models.OrderItem{
				ProductID: product.ID,
				Quantity:  req.Quantity,
				Price:     product.Price,
			}
			summa = summa.Add(item.LineTotal())
			items = append(items, item)
		}

		created := models.Order{
			ClientID:       client.ID,
			CurrencyTypeID: in.CurrencyTypeID,
			ProductLink:    in.ProductLink,
			Truck:          in.Truck,
			Description:    in.Description,
			Summa:          summa,
			Items:          items,
		}
		if err := tx.Create(&created).Error; err != nil {
			return errs.Internal("failed to create order", err)
		}

		order, err = s.load(tx, created.ID, 0)
		return err
	})
	if err != nil {
		return nil, err
	}

	order.CurrentStatus = models.DefaultStatusName
	s.log.Info("Order %s created for client %d, summa %s", order.OrderUniqueID, order.ClientID, order.Summa)
	events.Emit(events.OrderCreated, order)
	return order, nil
}

// Cancel marks the order cancelled and records the reason after the existing
// description. clientID scopes the lookup to one owner when non-zero.
func (s *OrderService) Cancel(ctx context.Context, orderID, reason string, clientID uint64) (*models.Order, error) {
	if err := checkOrderID(orderID); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Order
		query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", orderID)
		if clientID != 0 {
			query = query.Where("client_id = ?", clientID)
		}
		if err := query.First(&current).Error; err != nil {
			return lookupErr(err, "order")
		}
		if current.IsCancelled {
			return errs.Conflict("order %s is already cancelled", current.OrderUniqueID)
		}

		now := s.now()
		if err := tx.Model(&current).Updates(map[string]interface{}{
			"is_cancelled": true,
			"cancelled_at": now,
			"description":  appendCancelReason(current.Description, reason),
		}).Error; err != nil {
			return errs.Internal("failed to cancel order", err)
		}

		var err error
		order, err = s.load(tx, current.ID, 0)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := attachCurrentStatuses(s.db.WithContext(ctx), order); err != nil {
		return nil, err
	}
	s.log.Info("Order %s cancelled", order.OrderUniqueID)
	events.Emit(events.OrderCancelled, order)
	return order, nil
}

func appendCancelReason(description, reason string) string {
	note := "Cancelled"
	if r := strings.TrimSpace(reason); r != "" {
		note += ": " + r
	}
	if strings.TrimSpace(description) == "" {
		return note
	}
	return description + "\n" + note
}

// Get returns an order with its items and operation history.
func (s *OrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return s.detail(ctx, orderID, 0)
}

// GetForClient is Get restricted to orders owned by clientID.
func (s *OrderService) GetForClient(ctx context.Context, clientID uint64, orderID string) (*models.Order, error) {
	return s.detail(ctx, orderID, clientID)
}

func (s *OrderService) detail(ctx context.Context, orderID string, clientID uint64) (*models.Order, error) {
	if err := checkOrderID(orderID); err != nil {
		return nil, err
	}
	order, err := s.load(s.db.WithContext(ctx), orderID, clientID, withOperations)
	if err != nil {
		return nil, err
	}
	order.CurrentStatus = currentStatusOf(order.Operations)
	return order, nil
}

func (s *OrderService) List(ctx context.Context, filter OrderFilter, page Page) ([]models.Order, Pagination, error) {
	var orders []models.Order
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.IsCancelled != nil {
		query = query.Where("is_cancelled = ?", *filter.IsCancelled)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, errs.Internal("failed to count orders", err)
	}
	if err := withItems(query).
		Preload("Client").
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&orders).Error; err != nil {
		return nil, Pagination{}, errs.Internal("failed to list orders", err)
	}

	ptrs := make([]*models.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := attachCurrentStatuses(s.db.WithContext(ctx), ptrs...); err != nil {
		return nil, Pagination{}, err
	}
	return orders, page.Result(total), nil
}

func (s *OrderService) ListForClient(ctx context.Context, clientID uint64, page Page) ([]models.Order, Pagination, error) {
	return s.List(ctx, OrderFilter{ClientID: &clientID}, page)
}

type preloadFn func(*gorm.DB) *gorm.DB

func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		Preload("CurrencyType")
}

func withOperations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Operations", func(db *gorm.DB) *gorm.DB {
			return db.Order("operation_date DESC, id DESC")
		}).
		Preload("Operations.Status").
		Preload("Operations.Admin", selectAdminSummary)
}

func selectAdminSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "full_name", "user_name", "role")
}

func (s *OrderService) load(db *gorm.DB, orderID string, clientID uint64, extra ...preloadFn) (*models.Order, error) {
	query := withItems(db).Preload("Client").Where("id = ?", orderID)
	if clientID != 0 {
		query = query.Where("client_id = ?", clientID)
	}
	for _, fn := range extra {
		query = fn(query)
	}

	var order models.Order
	if err := query.First(&order).Error; err != nil {
		return nil, lookupErr(err, "order")
	}
	return &order, nil
}

func currentStatusOf(operations []models.Operation) string {
	if len(operations) == 0 || operations[0].Status == nil {
		return models.DefaultStatusName
	}
	return operations[0].Status.Name
}

// attachCurrentStatuses fills CurrentStatus for every order with one query.
func attachCurrentStatuses(db *gorm.DB, orders ...*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		o.CurrentStatus = models.DefaultStatusName
		ids = append(ids, o.ID)
	}

	var rows []struct {
		OrderID string
		Name    string
	}
	if err := db.Table("operations").
		Select("operations.order_id, statuses.name").
		Joins("JOIN statuses ON statuses.id = operations.status_id").
		Where("operations.order_id IN ?", ids).
		Order("operations.order_id, operations.operation_date DESC, operations.id DESC").
		Scan(&rows).Error; err != nil {
		return errs.Internal("failed to load order statuses", err)
	}

	latest := make(map[string]string, len(rows))
	for _, row := range rows {
		if _, seen := latest[row.OrderID]; !seen {
			latest[row.OrderID] = row.Name
		}
	}
	for _, o := range orders {
		if name, ok := latest[o.ID]; ok {
			o.CurrentStatus = name
		}
	}
	return nil
}
