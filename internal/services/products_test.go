package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"cargodesk/internal/errs"
	"cargodesk/internal/models"
	"cargodesk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryStorage struct {
	objects map[string][]byte
	seq     int
}

func (m *memoryStorage) Put(_ context.Context, data []byte, filename, _ string) (string, error) {
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.seq++
	key := fmt.Sprintf("products/%d-%s", m.seq, filename)
	m.objects[key] = data
	return key, nil
}

func (m *memoryStorage) Remove(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAttachImageReplacesPrevious(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	storage := &memoryStorage{}
	svc := NewProductService(db, storage)

	product := testutil.CreateProduct(t, db, "Crate", "10.00", true)

	first, err := svc.AttachImage(ctx, product.ID, pngBytes(t), "crate.png")
	require.NoError(t, err)
	require.NotNil(t, first.ImagePath)
	assert.Len(t, storage.objects, 1)

	second, err := svc.AttachImage(ctx, product.ID, pngBytes(t), "crate-2.png")
	require.NoError(t, err)
	assert.NotEqual(t, *first.ImagePath, *second.ImagePath)
	assert.Len(t, storage.objects, 1)
	assert.Contains(t, storage.objects, *second.ImagePath)
}

func TestAttachImageRejectsBadInput(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	product := testutil.CreateProduct(t, db, "Crate", "10.00", true)

	svc := NewProductService(db, &memoryStorage{})
	_, err := svc.AttachImage(ctx, product.ID, []byte("plain text, not an image"), "notes.txt")
	assert.True(t, errs.Is(err, errs.KindInvalidRequest))

	_, err = svc.AttachImage(ctx, 9999, pngBytes(t), "crate.png")
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, err = NewProductService(db, nil).AttachImage(ctx, product.ID, pngBytes(t), "crate.png")
	assert.True(t, errs.Is(err, errs.KindInvalidRequest))
}

func TestProductPriceMustNotBeNegative(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	svc := NewProductService(db, nil)

	refund := &models.Product{Name: "Refund", Price: decimal.RequireFromString("-500.00"), IsAvailable: true}
	err := svc.Create(ctx, refund)
	assert.True(t, errs.Is(err, errs.KindInvalidRequest))

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Where("name = ?", "Refund").Count(&count).Error)
	assert.Zero(t, count)

	free := &models.Product{Name: "Sample", Price: decimal.Zero, IsAvailable: true}
	require.NoError(t, svc.Create(ctx, free))

	free.Price = decimal.RequireFromString("-0.01")
	err = svc.Update(ctx, free.ID, free)
	assert.True(t, errs.Is(err, errs.KindInvalidRequest))

	stored, err := svc.Get(ctx, free.ID)
	require.NoError(t, err)
	assert.True(t, stored.Price.IsZero())

	// direct inserts are refused by the model hook
	err = db.Create(&models.Product{Name: "Bypass", Price: decimal.RequireFromString("-1")}).Error
	assert.ErrorIs(t, err, models.ErrNegativePrice)
}
