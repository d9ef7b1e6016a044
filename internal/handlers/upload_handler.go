package handlers

import (
	"io"
	"strings"

	"cargodesk/internal/api/controllers"
	"cargodesk/internal/api/response"
	"cargodesk/internal/errs"
	"cargodesk/internal/services"
	"cargodesk/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

type UploadHandler struct {
	products *services.ProductService
	log      *logger.Logger
}

func NewUploadHandler(products *services.ProductService) *UploadHandler {
	return &UploadHandler{
		products: products,
		log:      logger.New("upload_handler"),
	}
}

// UploadProductImage stores a product picture in object storage
// @Summary Upload product image
// @Description Upload a JPEG, PNG or WebP image up to 5 MB. Replaces any previous image.
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param file formData file true "Image"
// @Success 200 {object} models.Product
// @Failure 400 {object} response.Envelope "Missing file or unsupported type"
// @Router /products/{id}/image [post]
func (h *UploadHandler) UploadProductImage(c echo.Context) error {
	id, err := controllers.ParseID(c)
	if err != nil {
		return err
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return errs.InvalidRequest("Content-Type must be multipart/form-data")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return errs.InvalidRequest("no file provided")
	}
	if file.Size > services.MaxImageSize {
		return errs.InvalidRequest("image exceeds %d bytes", services.MaxImageSize)
	}

	src, err := file.Open()
	if err != nil {
		return h.log.Error("Failed to open upload", err)
	}
	defer src.Close()

	// read one byte past the limit so oversize bodies with a lying header are caught
	content, err := io.ReadAll(io.LimitReader(src, services.MaxImageSize+1))
	if err != nil {
		return h.log.Error("Failed to read upload", err)
	}

	product, err := h.products.AttachImage(c.Request().Context(), id, content, file.Filename)
	if err != nil {
		return err
	}

	h.log.Success("Image uploaded for product %d", id)
	return response.OK(c, product)
}
