package routes

import (
	"cargodesk/internal/access"
	"cargodesk/internal/api/middleware"
	"cargodesk/internal/handlers"

	"github.com/labstack/echo/v4"
)

func SetupAuthRoutes(base *echo.Group, auth *middleware.AuthMiddleware, authHandler *handlers.AuthHandler, adminHandler *handlers.AdminHandler) {
	// Public auth routes group
	public := base.Group("/admin/auth")

	// Public routes (no auth required)
	public.POST("/login", authHandler.Login)
	public.POST("/refresh", authHandler.RefreshToken)
	public.POST("/logout", authHandler.Logout)

	// Self-service routes, any authenticated admin
	me := base.Group("/admin/me", auth.Admin())
	me.GET("", authHandler.GetMe)
	me.PUT("/password", authHandler.ChangePassword)

	// Admin management routes, gated by role
	admins := base.Group("/admins", auth.Admin())
	readers := middleware.RequireRole(access.RoleManager, access.RoleAdmin)
	managers := middleware.RequireRole(access.RoleManager)

	admins.GET("", adminHandler.List, readers)
	admins.GET("/:id", adminHandler.Get, readers)
	admins.POST("", adminHandler.Create, managers)
	admins.PUT("/:id", adminHandler.Update, managers)
	admins.DELETE("/:id", adminHandler.Delete, managers)
	admins.PUT("/:id/password", adminHandler.ChangePassword, managers)
	admins.PUT("/:id/permissions", adminHandler.SetPermissions, middleware.RequireCreator())
}
