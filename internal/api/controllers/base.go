package controllers

import (
	"strconv"
	"strings"

	"cargodesk/internal/access"
	"cargodesk/internal/api/middleware"
	"cargodesk/internal/api/response"
	"cargodesk/internal/errs"
	"cargodesk/internal/services"

	"github.com/labstack/echo/v4"
)

// reserved query parameters that are never treated as filters
var reserved = map[string]bool{"page": true, "limit": true, "include": true}

// BaseController provides generic CRUD operations for any model
type BaseController[T any] struct {
	service services.BaseService[T]
}

// NewBaseController creates a new base controller
func NewBaseController[T any](service services.BaseService[T]) *BaseController[T] {
	return &BaseController[T]{
		service: service,
	}
}

// ParseID reads the numeric :id path parameter.
func ParseID(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.InvalidRequest("invalid id %q", ctx.Param("id"))
	}
	return id, nil
}

// parseIncludes parses the include query parameter and returns a slice of relationships to preload
func parseIncludes(ctx echo.Context) []string {
	include := ctx.QueryParam("include")
	if include == "" {
		return nil
	}
	return strings.Split(include, ",")
}

// Create handles creation of new entities
func (c *BaseController[T]) Create(ctx echo.Context) error {
	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return errs.InvalidRequest("invalid request body")
	}
	if err := ctx.Validate(&entity); err != nil {
		return err
	}

	if err := c.service.Create(ctx.Request().Context(), &entity); err != nil {
		return err
	}
	return response.Created(ctx, entity)
}

// Get handles retrieval of a single entity
func (c *BaseController[T]) Get(ctx echo.Context) error {
	id, err := ParseID(ctx)
	if err != nil {
		return err
	}
	entity, err := c.service.Get(ctx.Request().Context(), id, parseIncludes(ctx)...)
	if err != nil {
		return err
	}
	return response.OK(ctx, entity)
}

// List handles retrieval of multiple entities with pagination and filtering
func (c *BaseController[T]) List(ctx echo.Context) error {
	filters := make(map[string]string)
	for key, values := range ctx.QueryParams() {
		if !reserved[key] && len(values) > 0 {
			filters[key] = values[0]
		}
	}

	entities, pagination, err := c.service.List(ctx.Request().Context(), response.PageFromQuery(ctx), filters, parseIncludes(ctx)...)
	if err != nil {
		return err
	}
	return response.Paginated(ctx, entities, pagination)
}

// Update handles updating an existing entity
func (c *BaseController[T]) Update(ctx echo.Context) error {
	id, err := ParseID(ctx)
	if err != nil {
		return err
	}

	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return errs.InvalidRequest("invalid request body")
	}
	if err := ctx.Validate(&entity); err != nil {
		return err
	}

	if err := c.service.Update(ctx.Request().Context(), id, &entity); err != nil {
		return err
	}
	return response.OK(ctx, entity)
}

// Delete handles deletion of an entity
func (c *BaseController[T]) Delete(ctx echo.Context) error {
	id, err := ParseID(ctx)
	if err != nil {
		return err
	}
	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return response.OK(ctx, map[string]interface{}{"id": strconv.FormatUint(id, 10)})
}

// RegisterRoutes mounts the CRUD routes on g, reads gated by resource.read
// and writes by resource.write.
func (c *BaseController[T]) RegisterRoutes(g *echo.Group, resource access.Resource) {
	read := middleware.RequirePermission(resource, access.Read)
	write := middleware.RequirePermission(resource, access.Write)

	g.GET("", c.List, read)
	g.GET("/:id", c.Get, read)
	g.POST("", c.Create, write)
	g.PUT("/:id", c.Update, write)
	g.DELETE("/:id", c.Delete, write)
}
