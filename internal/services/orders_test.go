package services

import (
	"context"
	"testing"
	"time"

	"cargodesk/internal/errs"
	"cargodesk/internal/models"
	"cargodesk/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	client := testutil.CreateClient(t, db, "buyer@example.com", "+10000000001")
	a := testutil.CreateProduct(t, db, "Crate", "100.00", true)
	b := testutil.CreateProduct(t, db, "Pallet", "50.00", true)
	usd := testutil.Currency(t, db)

	svc := NewOrderService(db)
	order, err := svc.Create(ctx, CreateOrderInput{
		ClientID:       client.ID,
		CurrencyTypeID: usd.ID,
		Items: []OrderItemInput{
			{ProductID: a.ID, Quantity: 2},
			{ProductID: b.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, order.Summa.Equal(decimal.NewFromInt(250)), "summa %s", order.Summa)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, order.Items[1].Price.Equal(decimal.NewFromInt(50)))
	assert.True(t, order.Summa.Equal(order.ItemsTotal()))
	assert.Regexp(t, `^ORD-[0-9A-F]{10}$`, order.OrderUniqueID)
	assert.Equal(t, models.DefaultStatusName, order.CurrentStatus)
	assert.False(t, order.IsCancelled)

	// a later price change must not touch the placed order
	require.NoError(t, db.Model(a).Update("price", decimal.NewFromInt(999)).Error)

	reloaded, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Summa.Equal(decimal.NewFromInt(250)))
	assert.True(t, reloaded.Items[0].Price.Equal(decimal.NewFromInt(100)))
}

func TestCreateOrderIsAtomic(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	client := testutil.CreateClient(t, db, "buyer@example.com", "+10000000001")
	available := testutil.CreateProduct(t, db, "Crate", "100.00", true)
	unavailable := testutil.CreateProduct(t, db, "Drum", "20.00", false)
	usd := testutil.Currency(t, db)

	svc := NewOrderService(db)
	_, err := svc.Create(ctx, CreateOrderInput{
		ClientID:       client.ID,
		CurrencyTypeID: usd.ID,
		Items: []OrderItemInput{
			{ProductID: available.ID, Quantity: 1},
			{ProductID: unavailable.ID, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindInvalidRequest))

	var orders, items int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestCreateOrderValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	client := testutil.CreateClient(t, db, "buyer@example.com", "+10000000001")
	product := testutil.CreateProduct(t, db, "Crate", "100.00", true)
	usd := testutil.Currency(t, db)
	svc := NewOrderService(db)

	cases := []struct {
		name string
		in   CreateOrderInput
		kind errs.Kind
	}{
		{"empty", CreateOrderInput{ClientID: client.ID, CurrencyTypeID: usd.ID}, errs.KindInvalidRequest},
		{"zero quantity", CreateOrderInput{ClientID: client.ID, CurrencyTypeID: usd.ID,
			Items: []OrderItemInput{{ProductID: product.ID, Quantity: 0}}}, errs.KindInvalidRequest},
		{"duplicate product", CreateOrderInput{ClientID: client.ID, CurrencyTypeID: usd.ID,
			Items: []OrderItemInput{{ProductID: product.ID, Quantity: 1}, {ProductID: product.ID, Quantity: 2}}}, errs.KindInvalidRequest},
		{"unknown currency", CreateOrderInput{ClientID: client.ID, CurrencyTypeID: 9999,
			Items: []OrderItemInput{{ProductID: product.ID, Quantity: 1}}}, errs.KindNotFound},
		{"unknown client", CreateOrderInput{ClientID: 9999, CurrencyTypeID: usd.ID,
			Items: []OrderItemInput{{ProductID: product.ID, Quantity: 1}}}, errs.KindNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, errs.KindOf(err))
		})
	}
}

func placeOrder(t *testing.T, svc *OrderService, clientID, currencyID uint64, items ...OrderItemInput) *models.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), CreateOrderInput{
		ClientID:       clientID,
		CurrencyTypeID: currencyID,
		Items:          items,
		Description:    "fragile",
	})
	require.NoError(t, err)
	return order
}

func TestCancelOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	client := testutil.CreateClient(t, db, "buyer@example.com", "+10000000001")
	product := testutil.CreateProduct(t, db, "Crate", "100.00", true)
	usd := testutil.Currency(t, db)

	svc := NewOrderService(db)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	order := placeOrder(t, svc, client.ID, usd.ID, OrderItemInput{ProductID: product.ID, Quantity: 3})

	cancelled, err := svc.Cancel(ctx, order.ID, "changed my mind", 0)
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled)
	require.NotNil(t, cancelled.CancelledAt)
	assert.True(t, cancelled.CancelledAt.Equal(fixed))
	assert.Equal(t, "fragile\nCancelled: changed my mind", cancelled.Description)

	_, err = svc.Cancel(ctx, order.ID, "again", 0)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindConflict))

	after, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, after.Summa.Equal(decimal.NewFromInt(300)))
	assert.Len(t, after.Items, 1)
	assert.Equal(t, "fragile\nCancelled: changed my mind", after.Description)
}

func TestCancelOrderScopedToClient(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	owner := testutil.CreateClient(t, db, "owner@example.com", "+10000000001")
	other := testutil.CreateClient(t, db, "other@example.com", "+10000000002")
	product := testutil.CreateProduct(t, db, "Crate", "10.00", true)
	usd := testutil.Currency(t, db)

	svc := NewOrderService(db)
	order := placeOrder(t, svc, owner.ID, usd.ID, OrderItemInput{ProductID: product.ID, Quantity: 1})

	_, err := svc.Cancel(ctx, order.ID, "", other.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, err = svc.GetForClient(ctx, other.ID, order.ID)
	assert.True(t, errs.Is(err, errs.KindNotFound))

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.True(t, errs.Is(err, errs.KindInvalidRequest))
}

func TestListOrdersFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	alice := testutil.CreateClient(t, db, "alice@example.com", "+10000000001")
	bob := testutil.CreateClient(t, db, "bob@example.com", "+10000000002")
	product := testutil.CreateProduct(t, db, "Crate", "10.00", true)
	usd := testutil.Currency(t, db)

	svc := NewOrderService(db)
	first := placeOrder(t, svc, alice.ID, usd.ID, OrderItemInput{ProductID: product.ID, Quantity: 1})
	placeOrder(t, svc, alice.ID, usd.ID, OrderItemInput{ProductID: product.ID, Quantity: 2})
	placeOrder(t, svc, bob.ID, usd.ID, OrderItemInput{ProductID: product.ID, Quantity: 3})
	_, err := svc.Cancel(ctx, first.ID, "", 0)
	require.NoError(t, err)

	all, page, err := svc.List(ctx, OrderFilter{}, NewPage(1, 2))
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	own, _, err := svc.ListForClient(ctx, alice.ID, NewPage(1, 10))
	require.NoError(t, err)
	assert.Len(t, own, 2)
	for _, o := range own {
		assert.Equal(t, alice.ID, o.ClientID)
		assert.Equal(t, models.DefaultStatusName, o.CurrentStatus)
	}

	cancelled := true
	onlyCancelled, _, err := svc.List(ctx, OrderFilter{IsCancelled: &cancelled}, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, onlyCancelled, 1)
	assert.Equal(t, first.ID, onlyCancelled[0].ID)
}
