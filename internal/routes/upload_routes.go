package routes

import (
	"cargodesk/internal/access"
	"cargodesk/internal/api/middleware"
	"cargodesk/internal/handlers"
	"cargodesk/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

// SetupUploadRoutes expects api to already require an admin.
func SetupUploadRoutes(api *echo.Group, uploadHandler *handlers.UploadHandler) {
	log := logger.New("upload_routes")

	api.POST("/products/:id/image", uploadHandler.UploadProductImage,
		middleware.RequirePermission(access.Products, access.Write))

	log.Debug("Upload routes initialized")
}
