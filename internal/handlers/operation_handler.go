package handlers

import (
	"cargodesk/internal/api/middleware"
	"cargodesk/internal/api/response"
	"cargodesk/internal/services"

	"github.com/labstack/echo/v4"
)

type OperationHandler struct {
	operations *services.OperationService
}

func NewOperationHandler(operations *services.OperationService) *OperationHandler {
	return &OperationHandler{operations: operations}
}

type AppendOperationRequest struct {
	OrderID     string `json:"order_id" validate:"required"`
	StatusID    uint64 `json:"status_id,string" validate:"required"`
	Description string `json:"description" validate:"max=1000"`
}

// Create appends a status change to an order's history
// @Summary Append operation
// @Tags operations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AppendOperationRequest true "Operation"
// @Success 201 {object} models.Operation
// @Failure 409 {object} response.Envelope "Order is cancelled"
// @Router /operations [post]
func (h *OperationHandler) Create(c echo.Context) error {
	var req AppendOperationRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	op, err := h.operations.Append(c.Request().Context(), services.AppendOperationInput{
		OrderID:     req.OrderID,
		StatusID:    req.StatusID,
		AdminID:     middleware.CurrentAdmin(c).ID,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return response.Created(c, op)
}

// List returns operations
// @Summary List operations
// @Tags operations
// @Produce json
// @Security BearerAuth
// @Param order_id query string false "Order ID"
// @Param status_id query string false "Status ID"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {array} models.Operation
// @Router /operations [get]
func (h *OperationHandler) List(c echo.Context) error {
	statusID, err := parseUintQuery(c, "status_id")
	if err != nil {
		return err
	}

	ops, pagination, err := h.operations.List(c.Request().Context(),
		services.OperationFilter{OrderID: c.QueryParam("order_id"), StatusID: statusID}, response.PageFromQuery(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, ops, pagination)
}
