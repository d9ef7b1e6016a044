package bot

import (
	"context"
	"strings"
	"sync"
	"testing"

	"cargodesk/internal/config"
	"cargodesk/internal/models"
	"cargodesk/internal/services"
	"cargodesk/internal/testutil"
	"cargodesk/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func (m *memorySessions) Get(_ context.Context, chatID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memorySessions) Save(_ context.Context, chatID string, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = map[string]Session{}
	}
	m.sessions[chatID] = *s
	return nil
}

func (m *memorySessions) Delete(_ context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

type capturedCodes struct {
	mu   sync.Mutex
	last string
}

func (c *capturedCodes) SendVerificationCode(_ context.Context, _, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = code
	return nil
}

type harness struct {
	t     *testing.T
	db    *gorm.DB
	flow  *Flow
	codes *capturedCodes
	store *memorySessions
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewTestDB(t)
	cfg := config.LoadTestConfig()
	codes := &capturedCodes{}
	store := &memorySessions{}
	clients := services.NewClientService(db, utils.NewTokenIssuer(cfg.JWT), codes, nil, cfg.OTP)
	flow := NewFlow(clients, services.NewOrderService(db), services.NewCatalog(db), store)
	return &harness{t: t, db: db, flow: flow, codes: codes, store: store}
}

func (h *harness) say(chatID, text string) string {
	h.t.Helper()
	reply, err := h.flow.Handle(context.Background(), chatID, text)
	require.NoError(h.t, err)
	return reply
}

func (h *harness) register(chatID string) {
	h.t.Helper()
	h.say(chatID, "/register")
	h.say(chatID, "Chat Client")
	h.say(chatID, "+998901234567")
	h.say(chatID, "chat@example.com")
	h.say(chatID, "1 Dock Road")
	h.say(chatID, "yes")
}

func TestRegistrationFlow(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.say("42", "/start"), "/register")
	assert.Contains(t, h.say("42", "/register"), "full name")
	assert.Contains(t, h.say("42", "Chat Client"), "phone")
	assert.Contains(t, h.say("42", "not a phone"), "Invalid phone")
	assert.Contains(t, h.say("42", "+998901234567"), "email")
	assert.Contains(t, h.say("42", "nope"), "Invalid email")
	assert.Contains(t, h.say("42", "chat@example.com"), "address")
	summary := h.say("42", "1 Dock Road")
	assert.Contains(t, summary, "Name: Chat Client")
	assert.Contains(t, summary, "Email: chat@example.com")
	assert.Equal(t, msgYesNo, h.say("42", "maybe"))
	assert.Contains(t, h.say("42", "yes"), "verification code was sent to chat@example.com")

	var client models.Client
	require.NoError(t, h.db.Where("telegram_id = ?", "42").First(&client).Error)
	assert.False(t, client.IsActive)
	assert.Equal(t, "1 Dock Road", client.Address)

	assert.Contains(t, h.say("42", "/register"), "already registered")
	assert.Contains(t, h.say("42", "/order"), "not verified")

	assert.Contains(t, h.say("42", "/verify 000000x"), "not correct")
	assert.Contains(t, h.say("42", "/verify "+h.codes.last), "verified successfully")
	assert.Contains(t, h.say("42", "/verify "+h.codes.last), "already verified")
	assert.Contains(t, h.say("42", "/start"), "Welcome back, Chat Client")
}

func TestRegistrationCanBeCancelled(t *testing.T) {
	h := newHarness(t)

	h.say("7", "/register")
	h.say("7", "Someone")
	assert.Equal(t, "Cancelled.", h.say("7", "/cancel"))
	assert.Equal(t, "Nothing to cancel.", h.say("7", "/cancel"))
	assert.Equal(t, msgHelp, h.say("7", "hello"))

	var count int64
	require.NoError(t, h.db.Model(&models.Client{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderFlow(t *testing.T) {
	h := newHarness(t)
	crate := testutil.CreateProduct(t, h.db, "Crate", "100.00", true)
	testutil.CreateProduct(t, h.db, "Pallet", "50.00", true)
	testutil.CreateProduct(t, h.db, "Hidden", "1.00", false)

	h.register("42")
	h.say("42", "/verify "+h.codes.last)

	menu := h.say("42", "/order")
	assert.Contains(t, menu, "1. Crate - 100.00")
	assert.Contains(t, menu, "2. Pallet - 50.00")
	assert.NotContains(t, menu, "Hidden")

	assert.Contains(t, h.say("42", "9"), "Invalid choice")
	assert.Contains(t, h.say("42", "1"), "Enter quantity")
	assert.Contains(t, h.say("42", "zero"), "Invalid quantity")
	assert.Contains(t, h.say("42", "2"), "Add another")
	assert.Contains(t, h.say("42", "yes"), "Choose a product")
	h.say("42", "2")
	h.say("42", "1")
	assert.Contains(t, h.say("42", "no"), "description")
	summary := h.say("42", "skip")
	assert.Contains(t, summary, "Crate x 2")
	assert.Contains(t, summary, "Pallet x 1")

	placed := h.say("42", "yes")
	assert.Contains(t, placed, "Total: 250.00 USD")

	var order models.Order
	require.NoError(t, h.db.Preload("Items").First(&order).Error)
	assert.True(t, order.Summa.Equal(decimal.NewFromInt(250)))
	assert.Len(t, order.Items, 2)
	assert.True(t, strings.Contains(placed, order.OrderUniqueID))

	listing := h.say("42", "/orders")
	assert.Contains(t, listing, order.OrderUniqueID)
	assert.Contains(t, listing, "Pending")

	// the price shown later must not move the placed order
	require.NoError(t, h.db.Model(crate).Update("price", decimal.NewFromInt(1)).Error)
	assert.Contains(t, h.say("42", "/orders"), "250.00")
}

func TestMergeItem(t *testing.T) {
	items := mergeItem(nil, DraftItem{ProductID: 1, Quantity: 2})
	items = mergeItem(items, DraftItem{ProductID: 2, Quantity: 1})
	items = mergeItem(items, DraftItem{ProductID: 1, Quantity: 3})
	require.Len(t, items, 2)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestUnknownChatCommands(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, msgNotRegistered, h.say("99", "/orders"))
	assert.Equal(t, msgNotRegistered, h.say("99", "/resend"))
	assert.Equal(t, msgNotRegistered, h.say("99", "/verify 123456"))
	assert.Equal(t, msgHelp, h.say("99", "/unknown"))

	_, err := h.flow.Handle(context.Background(), "", "/start")
	assert.Error(t, err)
}
