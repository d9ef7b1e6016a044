package routes

import (
	"cargodesk/internal/api/middleware"
	"cargodesk/internal/handlers"

	"github.com/labstack/echo/v4"
)

func SetupClientRoutes(base *echo.Group, auth *middleware.AuthMiddleware, clients *handlers.ClientHandler, orders *handlers.OrderHandler) {
	client := base.Group("/client")

	// Public routes
	client.POST("/register", clients.Register)
	client.POST("/login", clients.Login)
	client.POST("/verify", clients.Verify)

	// Routes for a logged in client
	session := client.Group("", auth.Client())
	session.POST("/logout", clients.Logout)
	session.GET("/me", clients.GetMe)
	session.GET("/products", clients.Products)
	session.GET("/currencies", clients.Currencies)
	session.POST("/orders", orders.ClientCreate)
	session.GET("/orders", orders.ClientList)
	session.GET("/orders/:id", orders.ClientGet)
	session.POST("/orders/:id/cancel", orders.ClientCancel)
}

// SetupBotRoutes mounts the signed chat webhook.
func SetupBotRoutes(base *echo.Group, bot *handlers.BotHandler, secret string) {
	base.POST("/bot/updates", bot.Updates, middleware.VerifySignature(secret))
}
