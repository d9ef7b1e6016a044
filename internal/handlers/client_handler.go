package handlers

import (
	"cargodesk/internal/api/controllers"
	"cargodesk/internal/api/middleware"
	"cargodesk/internal/api/response"
	"cargodesk/internal/models"
	"cargodesk/internal/services"

	"github.com/labstack/echo/v4"
)

type ClientHandler struct {
	clients *services.ClientService
	catalog *services.Catalog
}

func NewClientHandler(clients *services.ClientService, catalog *services.Catalog) *ClientHandler {
	return &ClientHandler{clients: clients, catalog: catalog}
}

type RegisterClientRequest struct {
	FullName    string `json:"full_name" validate:"required,max=255"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
	Email       string `json:"email" validate:"required,email"`
	Address     string `json:"address" validate:"required"`
	Location    string `json:"location"`
}

type ClientLoginRequest struct {
	Email       string `json:"email" validate:"required_without=PhoneNumber"`
	PhoneNumber string `json:"phone_number" validate:"required_without=Email"`
}

type VerifyClientRequest struct {
	ClientID uint64 `json:"client_id,string" validate:"required"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
}

type ClientTokenResponse struct {
	Client *models.Client `json:"client"`
	Token  string         `json:"token"`
}

// Register creates an active client account
// @Summary Register client
// @Tags client
// @Accept json
// @Produce json
// @Param request body RegisterClientRequest true "Client"
// @Success 201 {object} ClientTokenResponse
// @Failure 409 {object} response.Envelope "Email or phone already registered"
// @Router /client/register [post]
func (h *ClientHandler) Register(c echo.Context) error {
	var req RegisterClientRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client, token, err := h.clients.Register(c.Request().Context(), services.RegisterClientInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Address:     req.Address,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return response.Created(c, ClientTokenResponse{Client: client, Token: token})
}

// Login logs a client in by email or phone number
// @Summary Client login
// @Tags client
// @Accept json
// @Produce json
// @Param request body ClientLoginRequest true "Identity"
// @Success 200 {object} ClientTokenResponse
// @Failure 404 {object} response.Envelope "No active client"
// @Router /client/login [post]
func (h *ClientHandler) Login(c echo.Context) error {
	var req ClientLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client, token, err := h.clients.Login(c.Request().Context(), req.Email, req.PhoneNumber)
	if err != nil {
		return err
	}
	return response.OK(c, ClientTokenResponse{Client: client, Token: token})
}

// Verify activates a client registered through the chat bot
// @Summary Verify client
// @Tags client
// @Accept json
// @Produce json
// @Param request body VerifyClientRequest true "Code"
// @Success 200 {object} models.Client
// @Failure 410 {object} response.Envelope "Code expired"
// @Router /client/verify [post]
func (h *ClientHandler) Verify(c echo.Context) error {
	var req VerifyClientRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client, err := h.clients.Verify(c.Request().Context(), req.ClientID, req.Code)
	if err != nil {
		return err
	}
	return response.OK(c, client)
}

// Logout clears the client's session token
// @Summary Client logout
// @Tags client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /client/logout [post]
func (h *ClientHandler) Logout(c echo.Context) error {
	if err := h.clients.Logout(c.Request().Context(), middleware.CurrentClient(c).ID); err != nil {
		return err
	}
	return response.OK(c, map[string]string{"message": "logged out"})
}

// GetMe returns the authenticated client
// @Summary Current client
// @Tags client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Client
// @Router /client/me [get]
func (h *ClientHandler) GetMe(c echo.Context) error {
	return response.OK(c, middleware.CurrentClient(c))
}

// Products lists products open for ordering
// @Summary Available products
// @Tags client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Product
// @Router /client/products [get]
func (h *ClientHandler) Products(c echo.Context) error {
	products, pagination, err := h.catalog.ListAvailableProducts(c.Request().Context(), response.PageFromQuery(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, products, pagination)
}

// Currencies lists currencies
// @Summary Currencies
// @Tags client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.CurrencyType
// @Router /client/currencies [get]
func (h *ClientHandler) Currencies(c echo.Context) error {
	currencies, err := h.catalog.ListCurrencies(c.Request().Context())
	if err != nil {
		return err
	}
	return response.OK(c, currencies)
}

// List returns clients for the back office
// @Summary List clients
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param is_active query bool false "Active flag"
// @Success 200 {array} models.Client
// @Router /clients [get]
func (h *ClientHandler) List(c echo.Context) error {
	active, err := parseBoolQuery(c, "is_active")
	if err != nil {
		return err
	}
	clients, pagination, err := h.clients.List(c.Request().Context(), active, response.PageFromQuery(c))
	if err != nil {
		return err
	}
	return response.Paginated(c, clients, pagination)
}

// Get returns a client
// @Summary Get client
// @Tags clients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Client ID"
// @Success 200 {object} models.Client
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c echo.Context) error {
	id, err := controllers.ParseID(c)
	if err != nil {
		return err
	}
	client, err := h.clients.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.OK(c, client)
}
