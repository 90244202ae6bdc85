package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/exclusivos-baez/storefront-api/internal/auth"
	"github.com/exclusivos-baez/storefront-api/internal/domain"
	"github.com/exclusivos-baez/storefront-api/internal/service"
	apperrors "github.com/exclusivos-baez/storefront-api/pkg/errors"
	"github.com/exclusivos-baez/storefront-api/pkg/health"
	"github.com/exclusivos-baez/storefront-api/pkg/httputil"
)

// --- Stubs for the commerce backend ---

type stubFetcher struct {
	products []domain.Product
	err      error
}

func (f *stubFetcher) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

type stubSubmitter struct {
	url   string
	err   error
	lines []domain.CheckoutLine
	calls int
}

func (s *stubSubmitter) CreateCart(ctx context.Context, lines []domain.CheckoutLine) (string, error) {
	s.calls++
	s.lines = lines
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func (s *stubSubmitter) StoreDomain() string {
	return "exclusivos-baez.myshopify.com"
}

// --- Mock repositories ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type mockDeviceRepository struct {
	mock.Mock
}

func (m *mockDeviceRepository) Insert(ctx context.Context, report *domain.DeviceReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

type mockDropRepository struct {
	mock.Mock
}

func (m *mockDropRepository) ListUpcoming(ctx context.Context, now time.Time, limit, offset int) ([]domain.Drop, error) {
	args := m.Called(ctx, now, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Drop), args.Error(1)
}

func (m *mockDropRepository) CountUpcoming(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *mockDropRepository) GetBySlug(ctx context.Context, slug string) (*domain.Drop, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drop), args.Error(1)
}

func (m *mockDropRepository) Subscribe(ctx context.Context, sub *domain.DropSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockDropRepository) ListSubscribers(ctx context.Context, dropID string) ([]string, error) {
	args := m.Called(ctx, dropID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Fixture ---

type routerFixture struct {
	fetcher   *stubFetcher
	submitter *stubSubmitter
	carts     *mockCartRepository
	users     *mockUserRepository
	devices   *mockDeviceRepository
	drops     *mockDropRepository
	jwt       *auth.JWTManager
	router    http.Handler
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newRouterFixture() *routerFixture {
	logger := testLogger()

	f := &routerFixture{
		fetcher:   &stubFetcher{},
		submitter: &stubSubmitter{url: "https://exclusivos-baez.myshopify.com/cart/c/abc123"},
		carts:     new(mockCartRepository),
		users:     new(mockUserRepository),
		devices:   new(mockDeviceRepository),
		drops:     new(mockDropRepository),
		jwt:       auth.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour),
	}

	f.router = NewRouter(RouterDeps{
		Catalog:    service.NewCatalogService(f.fetcher, nil, logger),
		Checkout:   service.NewCheckoutService(f.submitter, f.carts, nil, logger, time.Second),
		Carts:      service.NewCartService(f.carts, logger),
		Users:      service.NewUserService(f.users, f.jwt, logger),
		Devices:    service.NewDeviceService(f.devices, nil, logger),
		Drops:      service.NewDropService(f.drops, nil, logger),
		JWTManager: f.jwt,
		Health:     health.NewHandler(),
		Logger:     logger,
	})

	return f
}

func (f *routerFixture) do(method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *routerFixture) accessToken(t *testing.T, userID, email string) string {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken(userID, email)
	require.NoError(t, err)
	return token
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// ============================================================================
// Public product list
// ============================================================================

func TestListProducts_WireShape(t *testing.T) {
	f := newRouterFixture()
	f.fetcher.products = []domain.Product{
		{
			ID:               "gid://shopify/Product/1",
			VariantID:        "gid://shopify/ProductVariant/11",
			Name:             "Gorra Exclusiva",
			Price:            1999,
			CurrencyCode:     "USD",
			Image:            "https://cdn.example/gorra.jpg",
			Handle:           "gorra-exclusiva",
			AvailableForSale: true,
		},
	}

	rec := f.do(http.MethodGet, "/api/products", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Products []map[string]any `json:"products"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, "Gorra Exclusiva", body.Products[0]["name"])
	assert.Equal(t, "gid://shopify/ProductVariant/11", body.Products[0]["variantId"])
	assert.Equal(t, "19.99", body.Products[0]["price"])
	assert.Equal(t, true, body.Products[0]["availableForSale"])
}

func TestListProducts_UpstreamError(t *testing.T) {
	f := newRouterFixture()
	f.fetcher.err = apperrors.Upstream("commerce backend returned status 500", nil)

	rec := f.do(http.MethodGet, "/api/products", nil, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "failed to load products", body.Error)
	assert.NotEmpty(t, body.Details)
}

// ============================================================================
// Public checkout
// ============================================================================

func TestCreateCheckout_Success(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/checkout", map[string]any{
		"cartItems": []map[string]any{
			{"variantId": "variant-1", "quantity": 2},
			{"variantId": "variant-2"},
		},
	}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		CheckoutURL string `json:"checkoutUrl"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "https://exclusivos-baez.myshopify.com/cart/c/abc123", body.CheckoutURL)

	require.Len(t, f.submitter.lines, 2)
	assert.Equal(t, domain.CheckoutLine{VariantID: "variant-1", Quantity: 2}, f.submitter.lines[0])
	assert.Equal(t, domain.CheckoutLine{VariantID: "variant-2", Quantity: 1}, f.submitter.lines[1])
}

func TestCreateCheckout_EmptyCart(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/checkout", map[string]any{"cartItems": []any{}}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "cart is empty", body.Error)
	assert.Equal(t, 0, f.submitter.calls)
}

func TestCreateCheckout_MalformedBody(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "invalid request body", body.Error)
	assert.Equal(t, 0, f.submitter.calls)
}

func TestCreateCheckout_UpstreamFailure(t *testing.T) {
	f := newRouterFixture()
	f.submitter.err = apperrors.Upstream("commerce backend rejected the cart", nil)

	rec := f.do(http.MethodPost, "/api/checkout", map[string]any{
		"cartItems": []map[string]any{{"variantId": "variant-1"}},
	}, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "checkout failed", body.Error)
	assert.Equal(t, "commerce backend rejected the cart", body.Details)
	assert.Equal(t, 1, f.submitter.calls)
}

func TestCreateCheckout_SessionHeaderLeavesCartIntact(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/checkout", map[string]any{
		"cartItems": []map[string]any{{"variantId": "variant-1"}},
	}, map[string]string{SessionIDHeader: "session-1"})

	assert.Equal(t, http.StatusOK, rec.Code)

	// The shell clears the cart itself once it has shown the checkout URL.
	f.carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// ============================================================================
// CORS preflight
// ============================================================================

func TestCORSPreflight(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodOptions, "/api/checkout", nil)
	req.Header.Set("Origin", "capacitor://localhost")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "x-session-id")
}

// ============================================================================
// Session cart
// ============================================================================

func TestCartGet_MissingSessionHeader(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodGet, "/api/v1/cart", nil, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, SessionIDHeader)
}

func TestCartGet_EmptyWhenMissing(t *testing.T) {
	f := newRouterFixture()
	f.carts.On("Get", mock.Anything, "session-1").Return(nil, apperrors.NotFound("cart", "session-1"))

	rec := f.do(http.MethodGet, "/api/v1/cart", nil, map[string]string{SessionIDHeader: "session-1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Data)
	f.carts.AssertExpectations(t)
}

func TestCartAddItem(t *testing.T) {
	f := newRouterFixture()
	f.carts.On("Get", mock.Anything, "session-1").Return(nil, apperrors.NotFound("cart", "session-1"))
	f.carts.On("Save", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)

	rec := f.do(http.MethodPost, "/api/v1/cart/items", map[string]string{
		"product_id": "product-1",
		"variant_id": "variant-1",
	}, map[string]string{SessionIDHeader: "session-1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Nil(t, resp.Error)
	f.carts.AssertExpectations(t)
}

func TestCartAddItem_ValidationError(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/v1/cart/items", map[string]string{
		"product_id": "product-1",
	}, map[string]string{SessionIDHeader: "session-1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestCartCheckout_SubmitsStoredCart(t *testing.T) {
	f := newRouterFixture()

	cart := domain.NewCart("session-1")
	cart.Add("product-1", "variant-1")
	cart.Add("product-1", "variant-1")
	f.carts.On("Get", mock.Anything, "session-1").Return(cart, nil)

	rec := f.do(http.MethodPost, "/api/v1/cart/checkout", nil, map[string]string{SessionIDHeader: "session-1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.submitter.lines, 1)
	assert.Equal(t, domain.CheckoutLine{VariantID: "variant-1", Quantity: 2}, f.submitter.lines[0])
	f.carts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.carts.AssertExpectations(t)
}

// ============================================================================
// Auth and profile
// ============================================================================

func TestRegister_IssuesTokens(t *testing.T) {
	f := newRouterFixture()
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	rec := f.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":        "buyer@example.com",
		"password":     "superseguro1",
		"display_name": "Buyer",
	}, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data struct {
			User   *domain.User      `json:"user"`
			Tokens *domain.TokenPair `json:"tokens"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Data.Tokens)
	assert.NotEmpty(t, resp.Data.Tokens.AccessToken)
	assert.Equal(t, "buyer@example.com", resp.Data.User.Email)
	f.users.AssertExpectations(t)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":        "buyer@example.com",
		"password":     "short",
		"display_name": "Buyer",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestProfile_RequiresAuth(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodGet, "/api/v1/profile", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile_Get(t *testing.T) {
	f := newRouterFixture()
	user := &domain.User{ID: "user-1", Email: "buyer@example.com", DisplayName: "Buyer"}
	f.users.On("GetByID", mock.Anything, "user-1").Return(user, nil)

	token := f.accessToken(t, "user-1", "buyer@example.com")
	rec := f.do(http.MethodGet, "/api/v1/profile", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Nil(t, resp.Error)
	f.users.AssertExpectations(t)
}

func TestProfile_RejectsGarbageToken(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodGet, "/api/v1/profile", nil, map[string]string{
		"Authorization": "Bearer not-a-token",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// Devices
// ============================================================================

func TestDeviceReport(t *testing.T) {
	f := newRouterFixture()
	f.devices.On("Insert", mock.Anything, mock.AnythingOfType("*domain.DeviceReport")).Return(nil)

	token := f.accessToken(t, "user-1", "buyer@example.com")
	rec := f.do(http.MethodPost, "/api/v1/devices", map[string]any{
		"deviceModel":  "Pixel 8",
		"platform":     "android",
		"osVersion":    "14",
		"batteryLevel": 0.73,
	}, map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Nil(t, resp.Error)
	f.devices.AssertExpectations(t)
}

func TestDeviceReport_RequiresAuth(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/v1/devices", map[string]any{
		"deviceModel": "Pixel 8",
		"platform":    "android",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// Drops
// ============================================================================

func TestDropsList_Public(t *testing.T) {
	f := newRouterFixture()
	f.drops.On("CountUpcoming", mock.Anything, mock.AnythingOfType("time.Time")).Return(1, nil)
	f.drops.On("ListUpcoming", mock.Anything, mock.AnythingOfType("time.Time"), 20, 0).Return([]domain.Drop{
		{ID: "drop-1", Slug: "verano-2026", Title: "Verano 2026", ReleaseAt: time.Now().Add(48 * time.Hour)},
	}, nil)

	rec := f.do(http.MethodGet, "/api/v1/drops", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Data)
	f.drops.AssertExpectations(t)
}

func TestDropsList_PageParamsReachRepository(t *testing.T) {
	f := newRouterFixture()
	f.drops.On("CountUpcoming", mock.Anything, mock.AnythingOfType("time.Time")).Return(12, nil)
	f.drops.On("ListUpcoming", mock.Anything, mock.AnythingOfType("time.Time"), 5, 5).Return([]domain.Drop{}, nil)

	rec := f.do(http.MethodGet, "/api/v1/drops?page=2&per_page=5", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.drops.AssertExpectations(t)
}

func TestDropSubscribe(t *testing.T) {
	f := newRouterFixture()
	drop := &domain.Drop{ID: "drop-1", Slug: "verano-2026", ReleaseAt: time.Now().Add(48 * time.Hour)}
	f.drops.On("GetBySlug", mock.Anything, "verano-2026").Return(drop, nil)
	f.drops.On("Subscribe", mock.Anything, mock.AnythingOfType("*domain.DropSubscription")).Return(nil)

	token := f.accessToken(t, "user-1", "buyer@example.com")
	rec := f.do(http.MethodPost, "/api/v1/drops/verano-2026/subscribe", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Nil(t, resp.Error)
	f.drops.AssertExpectations(t)
}

func TestDropSubscribe_RequiresAuth(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodPost, "/api/v1/drops/verano-2026/subscribe", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================================================
// Health
// ============================================================================

func TestHealthLive(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(http.MethodGet, "/health/live", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
