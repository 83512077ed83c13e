package routes

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/ovenly-backend/api/controllers"
	"github.com/angelmondragon/ovenly-backend/internal/cart"
	"github.com/angelmondragon/ovenly-backend/internal/checkout"
	"github.com/angelmondragon/ovenly-backend/internal/notifications"
	"github.com/angelmondragon/ovenly-backend/internal/orders"
	"github.com/angelmondragon/ovenly-backend/pkg/auth"
	"github.com/angelmondragon/ovenly-backend/pkg/config"
	"github.com/angelmondragon/ovenly-backend/pkg/db/models"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	"github.com/angelmondragon/ovenly-backend/pkg/metrics"
	"github.com/angelmondragon/ovenly-backend/pkg/pagination"
	pkgredis "github.com/angelmondragon/ovenly-backend/pkg/redis"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubCartService struct{}

func (stubCartService) view(userID uuid.UUID) *cart.View {
	return &cart.View{Cart: &models.Cart{ID: uuid.New(), UserID: userID, Items: []models.CartItem{}}}
}

func (s stubCartService) Get(_ context.Context, userID uuid.UUID) (*cart.View, error) {
	return s.view(userID), nil
}

func (s stubCartService) AddItem(_ context.Context, userID uuid.UUID, _ cart.AddItemInput) (*cart.View, error) {
	return s.view(userID), nil
}

func (s stubCartService) UpdateItem(_ context.Context, userID, _ uuid.UUID, _ int) (*cart.View, error) {
	return s.view(userID), nil
}

func (s stubCartService) RemoveItem(_ context.Context, userID, _ uuid.UUID) (*cart.View, error) {
	return s.view(userID), nil
}

func (s stubCartService) Clear(_ context.Context, userID uuid.UUID) (*cart.View, error) {
	return s.view(userID), nil
}

type countingCheckout struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCheckout) CreateOrder(_ context.Context, userID uuid.UUID, _ checkout.Input) (*models.Order, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return &models.Order{ID: uuid.New(), UserID: userID, TotalAmount: decimal.RequireFromString("10")}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) UpdateStatus(_ context.Context, _ orders.Actor, orderID uuid.UUID, status string) (*models.Order, error) {
	return &models.Order{ID: orderID, OrderStatus: enums.OrderStatus(status)}, nil
}

func (stubOrdersService) Cancel(_ context.Context, _ orders.Actor, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID, OrderStatus: enums.OrderStatusCancelled}, nil
}

func (stubOrdersService) List(context.Context, orders.Actor, pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (stubOrdersService) Detail(_ context.Context, _ orders.Actor, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(context.Context, notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (stubNotificationsService) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key], _ = value.(string)
	return nil
}

func (m *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	_, exists := m.data[key]
	m.mu.Unlock()
	if exists {
		return false, nil
	}
	return true, m.Set(ctx, key, value, ttl)
}

func (m *memoryStore) IdempotencyKey(scope, id string) string { return scope + ":" + id }

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type countingLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (c *countingLimiter) Allow(_ context.Context, scope string, limit int64, _ time.Duration) (pkgredis.Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[scope]++
	return pkgredis.Decision{Allowed: c.counts[scope] <= limit, Count: c.counts[scope]}, nil
}

type harness struct {
	cfg      *config.Config
	router   http.Handler
	checkout *countingCheckout
}

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{Env: config.AppEnvDev, CORSOrigins: []string{"http://localhost:3000"}},
		JWT:         config.JWTConfig{Secret: "router-secret", Issuer: "ovenly", ExpirationMinutes: 30},
		Idempotency: config.IdempotencyConfig{TTL: time.Hour},
		RateLimit:   config.RateLimitConfig{OrdersPerWindow: 2, Window: time.Minute},
	}
}

func newHarness(t *testing.T, health controllers.Dependencies) *harness {
	t.Helper()
	cfg := testConfig()
	reg := prometheus.NewRegistry()
	co := &countingCheckout{}
	router := NewRouter(Deps{
		Config:        cfg,
		Logger:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Health:        health,
		Cart:          stubCartService{},
		Checkout:      co,
		Orders:        stubOrdersService{},
		Notifications: stubNotificationsService{},
		Idempotency:   &memoryStore{data: map[string]string{}},
		RateLimiter:   &countingLimiter{counts: map[string]int64{}},
		Registry:      reg,
		HTTPMetrics:   metrics.NewHTTPMetrics(reg),
	})
	return &harness{cfg: cfg, router: router, checkout: co}
}

func (h *harness) token(t *testing.T, userID uuid.UUID, role enums.Role) string {
	t.Helper()
	token, err := auth.MintAccessToken(h.cfg.JWT, time.Now(), auth.AccessTokenPayload{UserID: userID, Role: role})
	require.NoError(t, err)
	return token
}

func (h *harness) do(method, path, token string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	h.router.ServeHTTP(resp, req)
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t, controllers.Dependencies{"database": stubPinger{}})
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health/live", "", nil, nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health/ready", "", nil, nil).Code)

	down := newHarness(t, controllers.Dependencies{"database": stubPinger{err: fmt.Errorf("closed")}})
	assert.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/health/ready", "", nil, nil).Code)
}

func TestAPIRequiresToken(t *testing.T) {
	h := newHarness(t, nil)
	for _, path := range []string{"/api/v1/cart", "/api/v1/orders", "/api/v1/notifications"} {
		resp := h.do(http.MethodGet, path, "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}

	token := h.token(t, uuid.New(), enums.RoleCustomer)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/cart", token, nil, nil).Code)
}

func TestStatusUpdateRequiresVendorOrAdmin(t *testing.T) {
	h := newHarness(t, nil)
	path := "/api/v1/orders/" + uuid.NewString() + "/status"
	body := []byte(`{"status":"preparing"}`)

	customer := h.token(t, uuid.New(), enums.RoleCustomer)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodPut, path, customer, body, nil).Code)

	owner := h.token(t, uuid.New(), enums.RoleBakeryOwner)
	assert.Equal(t, http.StatusOK, h.do(http.MethodPut, path, owner, body, nil).Code)
}

func TestCreateOrderReplaysIdempotentRequest(t *testing.T) {
	h := newHarness(t, nil)
	token := h.token(t, uuid.New(), enums.RoleCustomer)
	body := []byte(`{"is_pickup":true,"payment_method":"cash"}`)
	headers := map[string]string{"Idempotency-Key": "order-1"}

	first := h.do(http.MethodPost, "/api/v1/orders", token, body, headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := h.do(http.MethodPost, "/api/v1/orders", token, body, headers)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, h.checkout.calls)

	conflict := h.do(http.MethodPost, "/api/v1/orders", token, []byte(`{"is_pickup":false}`), headers)
	assert.Equal(t, http.StatusConflict, conflict.Code)
}

func TestCreateOrderIsRateLimitedPerUser(t *testing.T) {
	h := newHarness(t, nil)
	token := h.token(t, uuid.New(), enums.RoleCustomer)
	body := []byte(`{"is_pickup":true}`)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/v1/orders", token, body, nil).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, h.do(http.MethodPost, "/api/v1/orders", token, body, nil).Code)

	other := h.token(t, uuid.New(), enums.RoleCustomer)
	assert.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/v1/orders", other, body, nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.do(http.MethodOptions, "/api/v1/orders", "", nil, map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, "http://localhost:3000", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpointExposesRequestDurations(t *testing.T) {
	h := newHarness(t, nil)
	h.do(http.MethodGet, "/health/live", "", nil, nil)

	resp := h.do(http.MethodGet, "/metrics", "", nil, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "http_request_duration_seconds")
}
