package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"cargodesk/internal/access"
	"cargodesk/internal/api/response"
	"cargodesk/internal/config"
	"cargodesk/internal/models"
	"cargodesk/internal/services"
	"cargodesk/internal/testutil"
	"cargodesk/internal/utils"
	"cargodesk/internal/utils/crypto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type echoConversation struct{}

func (echoConversation) Handle(_ context.Context, chatID, text string) (string, error) {
	return chatID + ":" + text, nil
}

type harness struct {
	t      *testing.T
	db     *gorm.DB
	cfg    *config.Config
	server *Server
	admins *services.AdminService
	orders *services.OrderService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gdb := testutil.NewTestDB(t)
	cfg := config.LoadTestConfig()
	tokens := utils.NewTokenIssuer(cfg.JWT)

	admins := services.NewAdminService(gdb, tokens)
	orders := services.NewOrderService(gdb)
	deps := Deps{
		DB:         gdb,
		Admins:     admins,
		Clients:    services.NewClientService(gdb, tokens, nil, nil, cfg.OTP),
		Orders:     orders,
		Operations: services.NewOperationService(gdb),
		Products:   services.NewProductService(gdb, nil),
		Catalog:    services.NewCatalog(gdb),
		Bot:        echoConversation{},
	}
	return &harness{t: t, db: gdb, cfg: cfg, server: NewServer(cfg, deps), admins: admins, orders: orders}
}

func (h *harness) login(userName string) string {
	h.t.Helper()
	_, pair, err := h.admins.Login(context.Background(), userName, "secret123")
	require.NoError(h.t, err)
	return pair.AccessToken
}

func (h *harness) placeOrder() *models.Order {
	h.t.Helper()
	client := testutil.CreateClient(h.t, h.db, "buyer@example.com", "+15550000001")
	product := testutil.CreateProduct(h.t, h.db, "Pallet", "10.00", true)
	order, err := h.orders.Create(context.Background(), services.CreateOrderInput{
		ClientID:       client.ID,
		CurrencyTypeID: testutil.Currency(h.t, h.db).ID,
		Items:          []services.OrderItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(h.t, err)
	return order
}

func (h *harness) do(method, path, token string, body interface{}, headers ...string) (*httptest.ResponseRecorder, response.Envelope) {
	h.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(h.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)

	var env response.Envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func TestReadOnlyAdminCannotCancelOrder(t *testing.T) {
	h := newHarness(t)
	testutil.CreateAdmin(t, h.db, "viewer", access.RoleAdmin, access.Matrix{access.Orders: {Read: true}})
	token := h.login("viewer")
	order := h.placeOrder()

	rec, env := h.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", token, map[string]string{"reason": "changed mind"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, http.StatusForbidden, env.Error.StatusCode)
	assert.False(t, env.Success)

	var stored models.Order
	require.NoError(t, h.db.First(&stored, "id = ?", order.ID).Error)
	assert.False(t, stored.IsCancelled)

	rec, env = h.do(http.MethodGet, "/api/v1/orders", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(1), env.Pagination.Total)
}

func TestWriterCancelsOrder(t *testing.T) {
	h := newHarness(t)
	testutil.CreateAdmin(t, h.db, "clerk", access.RoleAdmin, access.Matrix{access.Orders: {Read: true, Write: true}})
	token := h.login("clerk")
	order := h.placeOrder()

	rec, _ := h.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", token, map[string]string{"reason": "out of stock"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := h.do(http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", token, map[string]string{"reason": "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)

	rec, _ = h.do(http.MethodGet, "/api/v1/orders", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidationErrorsListFields(t *testing.T) {
	h := newHarness(t)

	rec, env := h.do(http.MethodPost, "/api/v1/client/register", "", map[string]string{"full_name": "Ann"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "email")
	assert.Contains(t, env.Error.Fields, "phone_number")
}

func TestCreatorOnlyPermissionsRoute(t *testing.T) {
	h := newHarness(t)
	testutil.CreateAdmin(t, h.db, "boss", access.RoleManager, access.FullMatrix())
	target := testutil.CreateAdmin(t, h.db, "staff", access.RoleAdmin, access.Matrix{})
	token := h.login("boss")

	rec, _ := h.do(http.MethodPut, "/api/v1/admins/"+strconv.FormatUint(target.ID, 10)+"/permissions", token,
		map[string]interface{}{"permissions": access.Matrix{access.Orders: {Read: true}}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := h.do(http.MethodGet, "/api/v1/admins", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), env.Pagination.Total)
}

func TestBotWebhookSignature(t *testing.T) {
	h := newHarness(t)
	body := map[string]string{"chat_id": "42", "text": "/start"}
	payload, _ := json.Marshal(body)

	rec, _ := h.do(http.MethodPost, "/api/v1/bot/updates", "", body, crypto.SignatureHeader, "deadbeef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sig := crypto.ComputeWebhookSignature(payload, h.cfg.Bot.WebhookSecret)
	rec, _ = h.do(http.MethodPost, "/api/v1/bot/updates", "", body, crypto.SignatureHeader, sig)
	require.Equal(t, http.StatusOK, rec.Code)

	var reply struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "42:/start", reply.Reply)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec, _ := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestManagerCannotGrantPermissionsOnCreate(t *testing.T) {
	h := newHarness(t)
	testutil.CreateAdmin(t, h.db, "manager", access.RoleManager, access.Matrix{})
	token := h.login("manager")

	body := map[string]interface{}{
		"full_name":   "Escalated",
		"user_name":   "escalated",
		"email":       "escalated@example.com",
		"password":    "secret123",
		"permissions": access.FullMatrix(),
	}
	rec, env := h.do(http.MethodPost, "/api/v1/admins", token, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, env.Error)

	var count int64
	require.NoError(t, h.db.Model(&models.Admin{}).Where("user_name = ?", "escalated").Count(&count).Error)
	assert.Zero(t, count)

	delete(body, "permissions")
	rec, _ = h.do(http.MethodPost, "/api/v1/admins", token, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Admin
	require.NoError(t, h.db.Where("user_name = ?", "escalated").First(&created).Error)
	assert.Equal(t, access.DefaultStaffMatrix(), created.Grants())
}

func TestManagerChangesStaffPassword(t *testing.T) {
	h := newHarness(t)
	testutil.CreateAdmin(t, h.db, "manager", access.RoleManager, access.Matrix{})
	staff := testutil.CreateAdmin(t, h.db, "staff", access.RoleAdmin, access.DefaultStaffMatrix())
	path := "/api/v1/admins/" + strconv.FormatUint(staff.ID, 10) + "/password"

	rec, _ := h.do(http.MethodPut, path, h.login("staff"), map[string]string{"old_password": "secret123", "new_password": "newsecret"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	token := h.login("manager")
	rec, _ = h.do(http.MethodPut, path, token, map[string]string{"old_password": "nope", "new_password": "newsecret"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = h.do(http.MethodPut, path, token, map[string]string{"old_password": "secret123", "new_password": "newsecret"})
	require.Equal(t, http.StatusOK, rec.Code)

	_, _, err := h.admins.Login(context.Background(), "staff", "newsecret")
	assert.NoError(t, err)
}

func TestNegativeProductPriceRejected(t *testing.T) {
	h := newHarness(t)
	testutil.CreateAdmin(t, h.db, "catalog", access.RoleAdmin, access.Matrix{access.Products: {Read: true, Write: true}})
	token := h.login("catalog")

	rec, env := h.do(http.MethodPost, "/api/v1/products", token,
		map[string]interface{}{"name": "Refund", "price": "-500.00", "is_available": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "price")

	var count int64
	require.NoError(t, h.db.Model(&models.Product{}).Where("name = ?", "Refund").Count(&count).Error)
	assert.Zero(t, count)
}
