// Package registry mounts the reference-data tables on the generic CRUD controller.
package registry

import (
	"github.com/labstack/echo/v4"

	"cargodesk/internal/access"
	"cargodesk/internal/api/controllers"
	"cargodesk/internal/models"
	"cargodesk/internal/services"

	"gorm.io/gorm"
)

// NewCurrencyService refuses to delete a currency still used by an order.
func NewCurrencyService(db *gorm.DB) *services.BaseServiceImpl[models.CurrencyType] {
	return services.NewBaseService(db, models.CurrencyType{},
		services.WithUnique[models.CurrencyType]("name"),
		services.WithDeleteGuard[models.CurrencyType](
			services.ReferencedBy(&models.Order{}, "currency_type_id", "currency is used by existing orders")),
	)
}

// NewStatusService refuses to delete a status still recorded in an order history.
func NewStatusService(db *gorm.DB) *services.BaseServiceImpl[models.Status] {
	return services.NewBaseService(db, models.Status{},
		services.WithUnique[models.Status]("name"),
		services.WithDeleteGuard[models.Status](
			services.ReferencedBy(&models.Operation{}, "status_id", "status is used by existing operations")),
	)
}

// RegisterCRUDRoutes registers CRUD routes for the catalog tables - godoc
// @Summary Register CRUD routes for the catalog tables
// @Description Products, currencies and statuses share the generic controller.
// @Accept json
// @Produce json
func RegisterCRUDRoutes(g *echo.Group, db *gorm.DB, products *services.ProductService) {
	// Products
	// @Summary List products
	// @Description Get a page of products, filterable by is_available
	// @Tags products
	// @Produce json
	// @Success 200 {array} models.Product
	// @Failure 403 {object} response.Envelope "Forbidden"
	// @Router /products [get]
	controllers.NewBaseController[models.Product](products).RegisterRoutes(g.Group("/products"), access.Products)

	// Currencies
	// @Summary List currencies
	// @Description Get a page of currencies
	// @Tags currencies
	// @Produce json
	// @Success 200 {array} models.CurrencyType
	// @Failure 403 {object} response.Envelope "Forbidden"
	// @Router /currencies [get]
	controllers.NewBaseController[models.CurrencyType](NewCurrencyService(db)).RegisterRoutes(g.Group("/currencies"), access.Currency)

	// Statuses
	// @Summary List statuses
	// @Description Get a page of order statuses
	// @Tags statuses
	// @Produce json
	// @Success 200 {array} models.Status
	// @Failure 403 {object} response.Envelope "Forbidden"
	// @Router /statuses [get]
	controllers.NewBaseController[models.Status](NewStatusService(db)).RegisterRoutes(g.Group("/statuses"), access.Statuses)
}
