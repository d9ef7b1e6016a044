package services

import (
	"context"
	"testing"
	"time"

	"cargodesk/internal/access"
	"cargodesk/internal/errs"
	"cargodesk/internal/models"
	"cargodesk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendOperationAndCurrentStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, db, "operator", access.RoleAdmin, access.DefaultStaffMatrix())
	client := testutil.CreateClient(t, db, "buyer@example.com", "+10000000001")
	product := testutil.CreateProduct(t, db, "Crate", "10.00", true)
	usd := testutil.Currency(t, db)
	processing := testutil.StatusByName(t, db, "Processing")
	completed := testutil.StatusByName(t, db, "Completed")

	order := placeOrder(t, NewOrderService(db), client.ID, usd.ID, OrderItemInput{ProductID: product.ID, Quantity: 1})

	ops := NewOperationService(db)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	ops.now = func() time.Time { return base }

	status, err := ops.CurrentStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pending", status)

	first, err := ops.Append(ctx, AppendOperationInput{OrderID: order.ID, StatusID: processing.ID, AdminID: admin.ID, Description: "picked"})
	require.NoError(t, err)
	assert.Equal(t, "Processing", first.Status.Name)
	assert.Equal(t, "operator", first.Admin.UserName)

	ops.now = func() time.Time { return base.Add(time.Hour) }
	_, err = ops.Append(ctx, AppendOperationInput{OrderID: order.ID, StatusID: completed.ID, AdminID: admin.ID})
	require.NoError(t, err)

	status, err = ops.CurrentStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Completed", status)

	history, page, err := ops.ListByOrder(ctx, order.ID, NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, history, 2)
	assert.Equal(t, "Completed", history[0].Status.Name)
	assert.Equal(t, "Processing", history[1].Status.Name)

	detail, err := NewOrderService(db).Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Completed", detail.CurrentStatus)
	require.Len(t, detail.Operations, 2)

	statusID := processing.ID
	filtered, _, err := ops.List(ctx, OperationFilter{StatusID: &statusID}, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "picked", filtered[0].Description)
}

func TestAppendOperationOnCancelledOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, db, "operator", access.RoleAdmin, access.DefaultStaffMatrix())
	client := testutil.CreateClient(t, db, "buyer@example.com", "+10000000001")
	product := testutil.CreateProduct(t, db, "Crate", "10.00", true)
	usd := testutil.Currency(t, db)
	processing := testutil.StatusByName(t, db, "Processing")

	orders := NewOrderService(db)
	order := placeOrder(t, orders, client.ID, usd.ID, OrderItemInput{ProductID: product.ID, Quantity: 1})
	_, err := orders.Cancel(ctx, order.ID, "no longer needed", 0)
	require.NoError(t, err)

	ops := NewOperationService(db)
	_, err = ops.Append(ctx, AppendOperationInput{OrderID: order.ID, StatusID: processing.ID, AdminID: admin.ID})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConflict))

	var count int64
	require.NoError(t, db.Model(&models.Operation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAppendOperationLookups(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, db, "operator", access.RoleAdmin, access.DefaultStaffMatrix())
	client := testutil.CreateClient(t, db, "buyer@example.com", "+10000000001")
	product := testutil.CreateProduct(t, db, "Crate", "10.00", true)
	usd := testutil.Currency(t, db)
	order := placeOrder(t, NewOrderService(db), client.ID, usd.ID, OrderItemInput{ProductID: product.ID, Quantity: 1})

	ops := NewOperationService(db)
	_, err := ops.Append(ctx, AppendOperationInput{OrderID: order.ID, StatusID: 9999, AdminID: admin.ID})
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, err = ops.Append(ctx, AppendOperationInput{OrderID: "6f1c1c3e-4b9e-4a51-9f5e-0d7a1d2b3c4d", StatusID: 1, AdminID: admin.ID})
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, _, err = ops.ListByOrder(ctx, "6f1c1c3e-4b9e-4a51-9f5e-0d7a1d2b3c4d", NewPage(1, 10))
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, err = ops.CurrentStatus(ctx, "6f1c1c3e-4b9e-4a51-9f5e-0d7a1d2b3c4d")
	assert.True(t, errs.Is(err, errs.KindNotFound))

	status, err := ops.CurrentStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStatusName, status)
}

func TestOperationsAreImmutable(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, db, "operator", access.RoleAdmin, access.DefaultStaffMatrix())
	client := testutil.CreateClient(t, db, "buyer@example.com", "+10000000001")
	product := testutil.CreateProduct(t, db, "Crate", "10.00", true)
	usd := testutil.Currency(t, db)
	processing := testutil.StatusByName(t, db, "Processing")
	order := placeOrder(t, NewOrderService(db), client.ID, usd.ID, OrderItemInput{ProductID: product.ID, Quantity: 1})

	op, err := NewOperationService(db).Append(ctx, AppendOperationInput{OrderID: order.ID, StatusID: processing.ID, AdminID: admin.ID})
	require.NoError(t, err)

	err = db.Model(op).Update("description", "rewritten").Error
	assert.ErrorIs(t, err, models.ErrOperationImmutable)

	err = db.Delete(op).Error
	assert.ErrorIs(t, err, models.ErrOperationImmutable)
}
