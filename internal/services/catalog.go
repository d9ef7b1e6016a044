package services

import (
	"context"

	"cargodesk/internal/errs"
	"cargodesk/internal/models"

	"gorm.io/gorm"
)

// Catalog is the read side of products and currencies used by order creation.
type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// FindAvailableProducts loads, in one query, the subset of ids that exist and
// are available. Callers compare the length to detect missing products.
func (c *Catalog) FindAvailableProducts(ctx context.Context, ids []uint64) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := c.db.WithContext(ctx).
		Where("id IN ? AND is_available = ?", ids, true).
		Find(&products).Error; err != nil {
		return nil, errs.Internal("failed to load products", err)
	}
	return products, nil
}

func (c *Catalog) FindCurrency(ctx context.Context, id uint64) (*models.CurrencyType, error) {
	var currency models.CurrencyType
	if err := c.db.WithContext(ctx).First(&currency, id).Error; err != nil {
		return nil, lookupErr(err, "currency type")
	}
	return &currency, nil
}

// DefaultCurrency is the oldest currency, used when a caller cannot pick one.
func (c *Catalog) DefaultCurrency(ctx context.Context) (*models.CurrencyType, error) {
	var currency models.CurrencyType
	if err := c.db.WithContext(ctx).Order("id").First(&currency).Error; err != nil {
		return nil, lookupErr(err, "currency type")
	}
	return &currency, nil
}

func (c *Catalog) ListAvailableProducts(ctx context.Context, page Page) ([]models.Product, Pagination, error) {
	var products []models.Product
	var total int64

	query := c.db.WithContext(ctx).Model(&models.Product{}).Where("is_available = ?", true).Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, errs.Internal("failed to count products", err)
	}
	if err := query.Order("name, id").Offset(page.Offset()).Limit(page.Limit).Find(&products).Error; err != nil {
		return nil, Pagination{}, errs.Internal("failed to list products", err)
	}
	return products, page.Result(total), nil
}

func (c *Catalog) ListCurrencies(ctx context.Context) ([]models.CurrencyType, error) {
	var currencies []models.CurrencyType
	if err := c.db.WithContext(ctx).Order("id").Find(&currencies).Error; err != nil {
		return nil, errs.Internal("failed to list currencies", err)
	}
	return currencies, nil
}
