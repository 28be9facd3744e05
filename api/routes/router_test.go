package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authsvc "github.com/mrivera-dev/stockroom-backend/internal/auth"
	categorysvc "github.com/mrivera-dev/stockroom-backend/internal/categories"
	dashboardsvc "github.com/mrivera-dev/stockroom-backend/internal/dashboard"
	"github.com/mrivera-dev/stockroom-backend/internal/ledger"
	ordersvc "github.com/mrivera-dev/stockroom-backend/internal/orders"
	productsvc "github.com/mrivera-dev/stockroom-backend/internal/products"
	"github.com/mrivera-dev/stockroom-backend/internal/users"
	pkgAuth "github.com/mrivera-dev/stockroom-backend/pkg/auth"
	"github.com/mrivera-dev/stockroom-backend/pkg/auth/session"
	"github.com/mrivera-dev/stockroom-backend/pkg/config"
	"github.com/mrivera-dev/stockroom-backend/pkg/db"
	"github.com/mrivera-dev/stockroom-backend/pkg/db/models"
	"github.com/mrivera-dev/stockroom-backend/pkg/logger"
	"github.com/mrivera-dev/stockroom-backend/pkg/metrics"
	"github.com/mrivera-dev/stockroom-backend/pkg/redis"
)

type stubSessionChecker struct {
	ok bool
}

func (s stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.ok, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return &authsvc.LoginResponse{
		User:         users.DTO{ID: uuid.New(), Username: req.Username},
		AccessToken:  "access",
		RefreshToken: "refresh",
	}, nil
}

func (stubAuthService) Refresh(ctx context.Context, req authsvc.RefreshRequest) (*authsvc.TokenPair, error) {
	return &authsvc.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req authsvc.RegisterRequest) (*authsvc.LoginResponse, error) {
	return &authsvc.LoginResponse{
		User:         users.DTO{ID: uuid.New(), Username: req.Username},
		AccessToken:  "access",
		RefreshToken: "refresh",
	}, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "router-test-secret",
			Issuer:                 "stockroom-test",
			ExpirationMinutes:      30,
			RefreshTokenTTLMinutes: 60,
		},
	}
}

func openRouterTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  user_id TEXT NOT NULL,
  UNIQUE (name, user_id)
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  sku TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  price NUMERIC NOT NULL DEFAULT 0,
  description TEXT NOT NULL DEFAULT '',
  user_id TEXT NOT NULL,
  category_id TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (sku, user_id)
);`,
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'Pending',
  user_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS inventory_logs (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  change_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}

func newTestRouter(t *testing.T, cfg *config.Config, sessions session.AccessSessionChecker) (http.Handler, *gorm.DB) {
	t.Helper()

	conn := openRouterTestDB(t)
	dbClient := db.NewWithConn(conn)
	ledgerRepo := ledger.NewRepository(conn)

	logg := logger.New(logger.Options{ServiceName: "router-test", Level: logger.ParseLevel("debug"), Output: io.Discard})

	registry := prometheus.NewRegistry()

	router := NewRouter(Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           &redis.Client{},
		SessionManager:  sessions,
		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		Categories:      categorysvc.NewService(categorysvc.NewRepository(conn), dbClient),
		Products:        productsvc.NewService(productsvc.NewRepository(conn), ledgerRepo, dbClient),
		Orders:          ordersvc.NewService(ordersvc.NewRepository(conn), ledgerRepo, dbClient),
		Inventory:       ledger.NewService(ledgerRepo),
		Dashboard:       dashboardsvc.NewService(dashboardsvc.NewRepository(conn)),
		Metrics:         metrics.NewHTTPMetrics(registry),
		Registry:        registry,
	})
	return router, conn
}

func seedRouterUser(t *testing.T, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Username:     fmt.Sprintf("user_%s", uuid.NewString()),
		Email:        "router@example.com",
		PasswordHash: "hash",
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func mintRouterToken(t *testing.T, cfg *config.Config, user *models.User) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t, testRouterConfig(), stubSessionChecker{ok: true})

	paths := []string{
		"/api/categories",
		"/api/products",
		"/api/orders",
		"/api/inventory",
		"/api/dashboard/stats",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token, got %d", path, resp.Code)
		}
	}
}

func TestProtectedRouteRejectsRevokedSession(t *testing.T) {
	cfg := testRouterConfig()
	router, conn := newTestRouter(t, cfg, stubSessionChecker{ok: false})
	user := seedRouterUser(t, conn)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set("Authorization", "Bearer "+mintRouterToken(t, cfg, user))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session got %d", resp.Code)
	}
}

func TestCategoryLifecycleThroughRouter(t *testing.T) {
	cfg := testRouterConfig()
	router, conn := newTestRouter(t, cfg, stubSessionChecker{ok: true})
	user := seedRouterUser(t, conn)
	token := mintRouterToken(t, cfg, user)

	create := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Hardware"}`))
	create.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, create)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating category got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		Data categorysvc.DTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Data.Name != "Hardware" {
		t.Fatalf("expected category name Hardware got %q", created.Data.Name)
	}

	list := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	list.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, list)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 listing categories got %d", resp.Code)
	}
	var listed struct {
		Data []categorysvc.DTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed.Data) != 1 || listed.Data[0].ID != created.Data.ID {
		t.Fatalf("expected the created category back, got %+v", listed.Data)
	}
}

func TestDashboardStatsThroughRouter(t *testing.T) {
	cfg := testRouterConfig()
	router, conn := newTestRouter(t, cfg, stubSessionChecker{ok: true})
	user := seedRouterUser(t, conn)
	token := mintRouterToken(t, cfg, user)

	product := &models.Product{
		ID:       uuid.New(),
		Name:     "Router Widget",
		SKU:      fmt.Sprintf("SKU-%s", uuid.NewString()),
		Quantity: 42,
		UserID:   user.ID,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for dashboard stats got %d: %s", resp.Code, resp.Body.String())
	}

	var stats struct {
		Data dashboardsvc.StatsDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Data.TotalProducts != 1 {
		t.Fatalf("expected 1 product got %d", stats.Data.TotalProducts)
	}
	if stats.Data.TotalStock != 42 {
		t.Fatalf("expected stock 42 got %d", stats.Data.TotalStock)
	}
}

func TestLoginRouteUsesAuthService(t *testing.T) {
	router, _ := newTestRouter(t, testRouterConfig(), stubSessionChecker{ok: true})

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"marisol","password":"secret"}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for login got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHealthLiveThroughRouter(t *testing.T) {
	router, _ := newTestRouter(t, testRouterConfig(), stubSessionChecker{ok: true})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
	if env := resp.Header().Get("X-Stockroom-Env"); env != "test" {
		t.Fatalf("expected env header test got %q", env)
	}
}

func TestHealthReadyReportsRedisDown(t *testing.T) {
	// The test router carries an uninitialized redis client, so readiness
	// must fail on the cache dependency.
	router, _ := newTestRouter(t, testRouterConfig(), stubSessionChecker{ok: true})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for readiness got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router, _ := newTestRouter(t, testRouterConfig(), stubSessionChecker{ok: true})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	router, _ := newTestRouter(t, testRouterConfig(), stubSessionChecker{ok: true})

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route got %d", resp.Code)
	}
}
