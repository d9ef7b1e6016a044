package services

import (
	"context"
	"net/http"

	"cargodesk/internal/errs"
	"cargodesk/internal/models"
	"cargodesk/internal/utils/logger"

	"gorm.io/gorm"
)

const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ProductService is the generic catalog CRUD plus image handling.
type ProductService struct {
	*BaseServiceImpl[models.Product]
	db      *gorm.DB
	storage ObjectStorage
	log     *logger.Logger
}

func NewProductService(db *gorm.DB, storage ObjectStorage) *ProductService {
	base := NewBaseService(db, models.Product{},
		WithProtectedFields[models.Product]("image_path"),
		WithFilterable[models.Product]("is_available"),
		WithDeleteGuard[models.Product](ReferencedBy(&models.OrderItem{}, "product_id", "product is referenced by orders, mark it unavailable instead")),
	)
	return &ProductService{
		BaseServiceImpl: base,
		db:              db,
		storage:         storage,
		log:             logger.New("product_service"),
	}
}

func checkPrice(product *models.Product) error {
	if product.Price.IsNegative() {
		return errs.InvalidRequest("price must not be negative")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, product *models.Product) error {
	if err := checkPrice(product); err != nil {
		return err
	}
	return s.BaseServiceImpl.Create(ctx, product)
}

func (s *ProductService) Update(ctx context.Context, id uint64, product *models.Product) error {
	if err := checkPrice(product); err != nil {
		return err
	}
	return s.BaseServiceImpl.Update(ctx, id, product)
}

// AttachImage uploads an image and points the product at it. The previous
// object is removed after the row is updated.
func (s *ProductService) AttachImage(ctx context.Context, id uint64, data []byte, filename string) (*models.Product, error) {
	if s.storage == nil {
		return nil, errs.InvalidRequest("image storage is not configured")
	}
	if len(data) == 0 {
		return nil, errs.InvalidRequest("image is empty")
	}
	if len(data) > MaxImageSize {
		return nil, errs.InvalidRequest("image exceeds %d bytes", MaxImageSize)
	}
	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		return nil, errs.InvalidRequest("unsupported image type %s", contentType)
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key, err := s.storage.Put(ctx, data, filename, contentType)
	if err != nil {
		return nil, errs.Internal("failed to upload image", err)
	}

	previous := product.ImagePath
	if err := s.db.WithContext(ctx).Model(product).Update("image_path", key).Error; err != nil {
		if rmErr := s.storage.Remove(ctx, key); rmErr != nil {
			s.log.Warn("Failed to remove orphaned image %s: %v", key, rmErr)
		}
		return nil, errs.Internal("failed to store image path", err)
	}
	if previous != nil && *previous != "" && *previous != key {
		if err := s.storage.Remove(ctx, *previous); err != nil {
			s.log.Warn("Failed to remove previous image %s: %v", *previous, err)
		}
	}

	return s.Get(ctx, id)
}
