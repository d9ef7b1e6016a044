package tasks

import (
	"context"
	"sync"
	"testing"
	"time"

	"cargodesk/internal/models"
	"cargodesk/internal/testutil"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

type fakePurger struct {
	cutoff time.Time
}

func (f *fakePurger) PurgeExpiredCodes(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 2, nil
}

func TestHandleVerificationCode(t *testing.T) {
	mailer := &fakeMailer{}
	h := NewTaskHandler(nil, mailer, nil)

	task, err := NewVerificationCodeTask("chat@example.com", "123456")
	require.NoError(t, err)
	require.NoError(t, h.HandleVerificationCode(context.Background(), task))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "chat@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "123456")
}

func TestHandleVerificationCodeRejectsGarbage(t *testing.T) {
	h := NewTaskHandler(nil, &fakeMailer{}, nil)
	err := h.HandleVerificationCode(context.Background(), asynq.NewTask(TaskTypeVerificationCode, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleOrderStatusMailsOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	client := testutil.CreateClient(t, db, "buyer@example.com", "+10000000001")
	product := testutil.CreateProduct(t, db, "Crate", "10.00", true)

	o := newOrderRow(t, db, client.ID, product.ID)

	mailer := &fakeMailer{}
	h := NewTaskHandler(db, mailer, nil)

	task, err := NewOrderStatusTask(o.ID, "Completed")
	require.NoError(t, err)
	require.NoError(t, h.HandleOrderStatus(context.Background(), task))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "buyer@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].subject, o.OrderUniqueID)
	assert.Contains(t, mailer.sent[0].body, "Completed")

	missing, err := NewOrderStatusTask("6f1c1c3e-4b9e-4a51-9f5e-0d7a1d2b3c4d", "Completed")
	require.NoError(t, err)
	assert.NoError(t, h.HandleOrderStatus(context.Background(), missing))
	assert.Len(t, mailer.sent, 1)
}

func TestHandlePurgeUsesGrace(t *testing.T) {
	purger := &fakePurger{}
	h := NewTaskHandler(nil, &fakeMailer{}, purger)
	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	require.NoError(t, h.HandlePurgeExpiredOTP(context.Background(), NewPurgeExpiredOTPTask()))
	assert.Equal(t, now.Add(-PurgeGrace), purger.cutoff)
}

func TestNextRun(t *testing.T) {
	from := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	next, err := NextRun(PurgeSchedule, from)
	require.NoError(t, err)
	assert.Equal(t, from.Add(time.Hour), next)

	next, err = NextRun("0 3 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC), next)

	_, err = NextRun("every hour", from)
	assert.Error(t, err)
}

func newOrderRow(t *testing.T, db *gorm.DB, clientID, productID uint64) *models.Order {
	t.Helper()
	order := &models.Order{
		ClientID:       clientID,
		CurrencyTypeID: testutil.Currency(t, db).ID,
		Summa:          decimal.NewFromInt(10),
		Items: []models.OrderItem{
			{ProductID: productID, Quantity: 1, Price: decimal.NewFromInt(10)},
		},
	}
	require.NoError(t, db.Create(order).Error)
	return order
}
