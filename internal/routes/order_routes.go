package routes

import (
	"cargodesk/internal/access"
	"cargodesk/internal/api/middleware"
	"cargodesk/internal/handlers"

	"github.com/labstack/echo/v4"
)

// SetupOrderRoutes mounts orders, operations and the client directory.
// api must already require an admin.
func SetupOrderRoutes(api *echo.Group, orders *handlers.OrderHandler, operations *handlers.OperationHandler, clients *handlers.ClientHandler) {
	orderRead := middleware.RequirePermission(access.Orders, access.Read)
	orderWrite := middleware.RequirePermission(access.Orders, access.Write)
	opRead := middleware.RequirePermission(access.Operations, access.Read)
	opWrite := middleware.RequirePermission(access.Operations, access.Write)
	clientRead := middleware.RequirePermission(access.Clients, access.Read)

	orderGroup := api.Group("/orders")
	orderGroup.POST("", orders.Create, orderWrite)
	orderGroup.GET("", orders.List, orderRead)
	orderGroup.GET("/:id", orders.Get, orderRead)
	orderGroup.POST("/:id/cancel", orders.Cancel, orderWrite)
	orderGroup.GET("/:id/operations", orders.Operations, opRead)

	opGroup := api.Group("/operations")
	opGroup.POST("", operations.Create, opWrite)
	opGroup.GET("", operations.List, opRead)

	clientGroup := api.Group("/clients")
	clientGroup.GET("", clients.List, clientRead)
	clientGroup.GET("/:id", clients.Get, clientRead)
}
