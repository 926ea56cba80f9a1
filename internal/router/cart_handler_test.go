package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/nerakcos/storefront-api/pkg/auth"
	"github.com/nerakcos/storefront-api/pkg/cart"
	"github.com/nerakcos/storefront-api/pkg/models"
)

type memCatalog struct {
	products map[bson.ObjectID]*models.Product
}

func (m *memCatalog) ProductByID(_ context.Context, id bson.ObjectID) (*models.Product, error) {
	if product, ok := m.products[id]; ok {
		return product, nil
	}
	return nil, mongodriver.ErrNoDocuments
}

type memGuestStore struct {
	carts map[string]map[bson.ObjectID]int
}

func (m *memGuestStore) Lines(_ context.Context, sessionID string) ([]models.GuestCartLine, error) {
	lines := make([]models.GuestCartLine, 0, len(m.carts[sessionID]))
	for productID, quantity := range m.carts[sessionID] {
		lines = append(lines, models.GuestCartLine{SessionID: sessionID, ProductID: productID, Quantity: quantity})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.Hex() < lines[j].ProductID.Hex()
	})
	return lines, nil
}

func (m *memGuestStore) Increment(_ context.Context, sessionID string, productID bson.ObjectID, quantity int) error {
	if m.carts[sessionID] == nil {
		m.carts[sessionID] = make(map[bson.ObjectID]int)
	}
	m.carts[sessionID][productID] += quantity
	return nil
}

func (m *memGuestStore) SetQuantity(_ context.Context, sessionID string, productID bson.ObjectID, quantity int) error {
	if m.carts[sessionID] == nil {
		m.carts[sessionID] = make(map[bson.ObjectID]int)
	}
	m.carts[sessionID][productID] = quantity
	return nil
}

func (m *memGuestStore) Remove(_ context.Context, sessionID string, productID bson.ObjectID) error {
	delete(m.carts[sessionID], productID)
	return nil
}

func (m *memGuestStore) Clear(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type memOrderStore struct {
	orders []models.Order
	merged map[string]bool
}

func (m *memOrderStore) PendingByUser(_ context.Context, userID bson.ObjectID) ([]models.Order, error) {
	var pending []models.Order
	for _, o := range m.orders {
		if o.UserID != nil && *o.UserID == userID && o.Status == models.OrderStatusPending {
			pending = append(pending, o)
		}
	}
	return pending, nil
}

func (m *memOrderStore) UpsertPendingLine(_ context.Context, userID, productID bson.ObjectID, quantity int, unitPrice float64) error {
	for i := range m.orders {
		o := &m.orders[i]
		if o.UserID != nil && *o.UserID == userID && o.ProductID == productID && o.Status == models.OrderStatusPending {
			o.Quantity += quantity
			o.TotalPrice = float64(o.Quantity) * unitPrice
			return nil
		}
	}
	m.orders = append(m.orders, models.Order{
		ID:         bson.NewObjectID(),
		UserID:     &userID,
		ProductID:  productID,
		Quantity:   quantity,
		TotalPrice: float64(quantity) * unitPrice,
		Status:     models.OrderStatusPending,
	})
	return nil
}

func (m *memOrderStore) SetPendingQuantity(_ context.Context, userID, orderID bson.ObjectID, quantity int, unitPrice float64) error {
	for i := range m.orders {
		o := &m.orders[i]
		if o.ID == orderID && o.UserID != nil && *o.UserID == userID && o.Status == models.OrderStatusPending {
			o.Quantity = quantity
			o.TotalPrice = float64(quantity) * unitPrice
			return nil
		}
	}
	return mongodriver.ErrNoDocuments
}

func (m *memOrderStore) DeletePendingLine(_ context.Context, userID, orderID bson.ObjectID) error {
	for i := range m.orders {
		o := m.orders[i]
		if o.ID == orderID && o.UserID != nil && *o.UserID == userID && o.Status == models.OrderStatusPending {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return nil
		}
	}
	return mongodriver.ErrNoDocuments
}

func (m *memOrderStore) MergeGuestLines(ctx context.Context, userID bson.ObjectID, sessionID string, lines []models.PricedLine) error {
	if m.merged[sessionID] {
		return nil
	}
	if m.merged == nil {
		m.merged = make(map[string]bool)
	}
	m.merged[sessionID] = true
	for _, line := range lines {
		if err := m.UpsertPendingLine(ctx, userID, line.ProductID, line.Quantity, line.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

func (m *memOrderStore) MarkAllPendingPaid(_ context.Context, userID bson.ObjectID) (bson.ObjectID, int, error) {
	var first bson.ObjectID
	count := 0
	for i := range m.orders {
		o := &m.orders[i]
		if o.UserID != nil && *o.UserID == userID && o.Status == models.OrderStatusPending {
			if count == 0 {
				first = o.ID
			}
			o.Status = models.OrderStatusPaid
			count++
		}
	}
	return first, count, nil
}

func (m *memOrderStore) InsertPaidOrders(_ context.Context, lines []models.PricedLine) (bson.ObjectID, error) {
	var first bson.ObjectID
	for i, line := range lines {
		order := models.Order{
			ID:         bson.NewObjectID(),
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			TotalPrice: float64(line.Quantity) * line.UnitPrice,
			Status:     models.OrderStatusPaid,
		}
		if i == 0 {
			first = order.ID
		}
		m.orders = append(m.orders, order)
	}
	return first, nil
}

type testEnv struct {
	engine  *gin.Engine
	tokens  *auth.TokenService
	catalog *memCatalog
	guest   *memGuestStore
	orders  *memOrderStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog := &memCatalog{products: make(map[bson.ObjectID]*models.Product)}
	guest := &memGuestStore{carts: make(map[string]map[bson.ObjectID]int)}
	orders := &memOrderStore{}
	tokens := auth.NewTokenService([]byte("test-secret"))

	engine := NewEngine(Deps{
		Carts:     cart.NewService(guest, orders, catalog),
		Tokens:    tokens,
		UploadDir: t.TempDir(),
	})
	return &testEnv{engine: engine, tokens: tokens, catalog: catalog, guest: guest, orders: orders}
}

func (e *testEnv) addProduct(name string, price float64, stock int) bson.ObjectID {
	id := bson.NewObjectID()
	e.catalog.products[id] = &models.Product{ID: id, Name: name, Price: price, Stock: stock}
	return id
}

func (e *testEnv) request(method, path string, body any, cookie *http.Cookie, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	e.engine.ServeHTTP(recorder, req)
	return recorder
}

func guestSessionCookie(t *testing.T, recorder *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range recorder.Result().Cookies() {
		if c.Name == guestCookieName {
			return c
		}
	}
	return nil
}

func TestFirstAddMintsGuestSession(t *testing.T) {
	env := newTestEnv(t)
	tea := env.addProduct("Tea", 4.50, 100)

	recorder := env.request(http.MethodPost, "/api/cart", gin.H{"product_id": tea.Hex(), "quantity": 2}, nil, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	cookie := guestSessionCookie(t, recorder)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	assert.Greater(t, cookie.MaxAge, 0)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["cart_count"])
}

func TestCookieReuseResolvesSameCart(t *testing.T) {
	env := newTestEnv(t)
	tea := env.addProduct("Tea", 4.50, 100)

	first := env.request(http.MethodPost, "/api/cart", gin.H{"product_id": tea.Hex(), "quantity": 1}, nil, "")
	require.Equal(t, http.StatusOK, first.Code)
	cookie := guestSessionCookie(t, first)
	require.NotNil(t, cookie)

	// Adding again with the cookie lands in the same session, and the
	// response does not re-issue the cookie.
	second := env.request(http.MethodPost, "/api/cart", gin.H{"product_id": tea.Hex(), "quantity": 1}, cookie, "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Nil(t, guestSessionCookie(t, second))

	listing := env.request(http.MethodGet, "/api/cart", nil, cookie, "")
	require.Equal(t, http.StatusOK, listing.Code)

	var lines []models.CartLineView
	require.NoError(t, json.Unmarshal(listing.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestAddUnknownProduct(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.request(http.MethodPost, "/api/cart", gin.H{"product_id": bson.NewObjectID().Hex()}, nil, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = env.request(http.MethodPost, "/api/cart", gin.H{"product_id": "not-a-hex-id"}, nil, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAddMissingProductID(t *testing.T) {
	env := newTestEnv(t)

	recorder := env.request(http.MethodPost, "/api/cart", gin.H{"quantity": 1}, nil, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateRejectsInvalidQuantity(t *testing.T) {
	env := newTestEnv(t)
	tea := env.addProduct("Tea", 4.50, 100)

	first := env.request(http.MethodPost, "/api/cart", gin.H{"product_id": tea.Hex()}, nil, "")
	cookie := guestSessionCookie(t, first)
	require.NotNil(t, cookie)

	recorder := env.request(http.MethodPut, "/api/cart/"+tea.Hex(), gin.H{"quantity": 0}, cookie, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = env.request(http.MethodPut, "/api/cart/"+tea.Hex(), gin.H{"quantity": -1}, cookie, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateUnknownItemAnswersNotFound(t *testing.T) {
	env := newTestEnv(t)
	tea := env.addProduct("Tea", 4.50, 100)

	first := env.request(http.MethodPost, "/api/cart", gin.H{"product_id": tea.Hex()}, nil, "")
	cookie := guestSessionCookie(t, first)
	require.NotNil(t, cookie)

	// Unknown item beats invalid quantity: the lookup answers first.
	recorder := env.request(http.MethodPut, "/api/cart/"+bson.NewObjectID().Hex(), gin.H{"quantity": 0}, cookie, "")
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestLoginMergeViaStaleCookie(t *testing.T) {
	env := newTestEnv(t)
	tea := env.addProduct("Tea", 4.50, 100)
	userID := bson.NewObjectID()
	token, err := env.tokens.Generate(userID, models.RoleCustomer)
	require.NoError(t, err)

	// Build up a guest cart first.
	first := env.request(http.MethodPost, "/api/cart", gin.H{"product_id": tea.Hex(), "quantity": 3}, nil, "")
	cookie := guestSessionCookie(t, first)
	require.NotNil(t, cookie)

	// Authenticated request still carrying the guest cookie: lines move over.
	listing := env.request(http.MethodGet, "/api/cart", nil, cookie, token)
	require.Equal(t, http.StatusOK, listing.Code)

	var lines []models.CartLineView
	require.NoError(t, json.Unmarshal(listing.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, models.OrderStatusPending, lines[0].Status)

	// The guest session is gone; a fresh guest view of the same cookie is empty.
	guestListing := env.request(http.MethodGet, "/api/cart", nil, cookie, "")
	require.Equal(t, http.StatusOK, guestListing.Code)
	var guestLines []models.CartLineView
	require.NoError(t, json.Unmarshal(guestListing.Body.Bytes(), &guestLines))
	assert.Empty(t, guestLines)
}

func TestCheckoutClearsGuestCookie(t *testing.T) {
	env := newTestEnv(t)
	tea := env.addProduct("Tea", 4.50, 100)

	first := env.request(http.MethodPost, "/api/cart", gin.H{"product_id": tea.Hex(), "quantity": 1}, nil, "")
	cookie := guestSessionCookie(t, first)
	require.NotNil(t, cookie)

	checkout := env.request(http.MethodPost, "/api/checkout", nil, cookie, "")
	require.Equal(t, http.StatusOK, checkout.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(checkout.Body.Bytes(), &body))
	orderID, ok := body["order_id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, orderID)

	cleared := guestSessionCookie(t, checkout)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, http.SameSiteNoneMode, cleared.SameSite)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestCheckoutEmptyCartReturns400(t *testing.T) {
	env := newTestEnv(t)

	cookie := &http.Cookie{Name: guestCookieName, Value: "empty-session"}
	recorder := env.request(http.MethodPost, "/api/checkout", nil, cookie, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "Cart is empty", body["error"])
}

func TestCartCountAfterMergeAdd(t *testing.T) {
	env := newTestEnv(t)
	tea := env.addProduct("Tea", 4.50, 100)
	userID := bson.NewObjectID()
	token, err := env.tokens.Generate(userID, models.RoleCustomer)
	require.NoError(t, err)

	first := env.request(http.MethodPost, "/api/cart", gin.H{"product_id": tea.Hex(), "quantity": 2}, nil, "")
	cookie := guestSessionCookie(t, first)
	require.NotNil(t, cookie)

	// Authenticated add with the stale cookie merges first, then adds.
	recorder := env.request(http.MethodPost, "/api/cart", gin.H{"product_id": tea.Hex(), "quantity": 1}, cookie, token)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["cart_count"], fmt.Sprintf("body: %v", body))
}
