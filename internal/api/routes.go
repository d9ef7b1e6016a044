package api

import (
	"net/http"

	"cargodesk/internal/api/registry"
	"cargodesk/internal/handlers"
	"cargodesk/internal/routes"

	_ "cargodesk/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "cargodesk")
	})
	// Health check
	// @Summary Health check
	// @Description Check if the server and database are up
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	api := s.echo.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(s.deps.Admins)
	adminHandler := handlers.NewAdminHandler(s.deps.Admins)
	routes.SetupAuthRoutes(api, s.auth, authHandler, adminHandler)

	clientHandler := handlers.NewClientHandler(s.deps.Clients, s.deps.Catalog)
	orderHandler := handlers.NewOrderHandler(s.deps.Orders, s.deps.Operations)
	routes.SetupClientRoutes(api, s.auth, clientHandler, orderHandler)

	// Back office routes gated by the permission matrix
	backOffice := api.Group("", s.auth.Admin())
	registry.RegisterCRUDRoutes(backOffice, s.deps.DB, s.deps.Products)
	routes.SetupUploadRoutes(backOffice, handlers.NewUploadHandler(s.deps.Products))
	routes.SetupOrderRoutes(backOffice, orderHandler, handlers.NewOperationHandler(s.deps.Operations), clientHandler)

	if s.deps.Bot != nil {
		routes.SetupBotRoutes(api, handlers.NewBotHandler(s.deps.Bot), s.config.Bot.WebhookSecret)
	}
}
