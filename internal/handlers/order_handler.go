package handlers

import (
	"strconv"

	"cargodesk/internal/api/middleware"
	"cargodesk/internal/api/response"
	"cargodesk/internal/errs"
	"cargodesk/internal/services"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orders     *services.OrderService
	operations *services.OperationService
}

func NewOrderHandler(orders *services.OrderService, operations *services.OperationService) *OrderHandler {
	return &OrderHandler{orders: orders, operations: operations}
}

type OrderItemRequest struct {
	ProductID uint64 `json:"product_id,string" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type PlaceOrderRequest struct {
	CurrencyTypeID uint64             `json:"currency_type_id,string" validate:"required"`
	Items          []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ProductLink    string             `json:"product_link" validate:"omitempty,url"`
	Truck          string             `json:"truck"`
	Description    string             `json:"description"`
}

type CreateOrderRequest struct {
	ClientID uint64 `json:"client_id,string" validate:"required"`
	PlaceOrderRequest
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func (r PlaceOrderRequest) input(clientID uint64) services.CreateOrderInput {
	items := make([]services.OrderItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, services.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return services.CreateOrderInput{
		ClientID:       clientID,
		CurrencyTypeID: r.CurrencyTypeID,
		Items:          items,
		ProductLink:    r.ProductLink,
		Truck:          r.Truck,
		Description:    r.Description,
	}
}

func parseBoolQuery(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errs.InvalidRequest("%s must be true or false", name)
	}
	return &v, nil
}

func parseUintQuery(c echo.Context, name string) (*uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, errs.InvalidRequest("%s must be a numeric id", name)
	}
	return &v, nil
}

// Create places an order on behalf of a client
// @Summary Create order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateOrderRequest true "Order"
// @Success 201 {object} models.Order
// @Failure 400 {object} response.Envelope "Invalid items or unavailable product"
// @Router /orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	var req CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orders.Create(c.Request().Context(), req.input(req.ClientID))
	if err != nil {
		return err
	}
	return response.Created(c, order)
}

// List returns orders
// @Summary List orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param client_id query string false "Client ID"
// @Param is_cancelled query bool false "Cancelled flag"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {array} models.Order
// @Router /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	clientID, err := parseUintQuery(c, "client_id")
	if err != nil {
		return err
	}
	cancelled, err := parseBoolQuery(c, "is_cancelled")
	if err != nil {
		return err
	}

	orders, pagination, err := h.orders.List(c.Request().Context(),
		services.OrderFilter{ClientID: clientID, IsCancelled: cancelled}, response.PageFromQuery(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, orders, pagination)
}

// Get returns an order with items and history
// @Summary Get order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} response.Envelope "Order not found"
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.orders.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, order)
}

// Cancel cancels an order
// @Summary Cancel order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body CancelOrderRequest true "Reason"
// @Success 200 {object} models.Order
// @Failure 409 {object} response.Envelope "Already cancelled"
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c echo.Context) error {
	var req CancelOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orders.Cancel(c.Request().Context(), c.Param("id"), req.Reason, 0)
	if err != nil {
		return err
	}
	return response.OK(c, order)
}

// Operations returns the status history of an order
// @Summary Order history
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {array} models.Operation
// @Router /orders/{id}/operations [get]
func (h *OrderHandler) Operations(c echo.Context) error {
	ops, pagination, err := h.operations.ListByOrder(c.Request().Context(), c.Param("id"), response.PageFromQuery(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, ops, pagination)
}

// ClientCreate places an order for the authenticated client
// @Summary Place own order
// @Tags client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PlaceOrderRequest true "Order"
// @Success 201 {object} models.Order
// @Router /client/orders [post]
func (h *OrderHandler) ClientCreate(c echo.Context) error {
	var req PlaceOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orders.Create(c.Request().Context(), req.input(middleware.CurrentClient(c).ID))
	if err != nil {
		return err
	}
	return response.Created(c, order)
}

// ClientList returns the authenticated client's orders
// @Summary List own orders
// @Tags client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Order
// @Router /client/orders [get]
func (h *OrderHandler) ClientList(c echo.Context) error {
	orders, pagination, err := h.orders.ListForClient(c.Request().Context(), middleware.CurrentClient(c).ID, response.PageFromQuery(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, orders, pagination)
}

// ClientGet returns one of the authenticated client's orders
// @Summary Get own order
// @Tags client
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} models.Order
// @Router /client/orders/{id} [get]
func (h *OrderHandler) ClientGet(c echo.Context) error {
	order, err := h.orders.GetForClient(c.Request().Context(), middleware.CurrentClient(c).ID, c.Param("id"))
	if err != nil {
		return err
	}
	return response.OK(c, order)
}

// ClientCancel cancels one of the authenticated client's orders
// @Summary Cancel own order
// @Tags client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body CancelOrderRequest true "Reason"
// @Success 200 {object} models.Order
// @Router /client/orders/{id}/cancel [post]
func (h *OrderHandler) ClientCancel(c echo.Context) error {
	var req CancelOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.orders.Cancel(c.Request().Context(), c.Param("id"), req.Reason, middleware.CurrentClient(c).ID)
	if err != nil {
		return err
	}
	return response.OK(c, order)
}
