package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrivera-dev/stockroom-backend/api/controllers"
	"github.com/mrivera-dev/stockroom-backend/api/middleware"
	authsvc "github.com/mrivera-dev/stockroom-backend/internal/auth"
	categorysvc "github.com/mrivera-dev/stockroom-backend/internal/categories"
	dashboardsvc "github.com/mrivera-dev/stockroom-backend/internal/dashboard"
	"github.com/mrivera-dev/stockroom-backend/internal/ledger"
	ordersvc "github.com/mrivera-dev/stockroom-backend/internal/orders"
	productsvc "github.com/mrivera-dev/stockroom-backend/internal/products"
	"github.com/mrivera-dev/stockroom-backend/pkg/auth/session"
	"github.com/mrivera-dev/stockroom-backend/pkg/config"
	"github.com/mrivera-dev/stockroom-backend/pkg/db"
	"github.com/mrivera-dev/stockroom-backend/pkg/logger"
	"github.com/mrivera-dev/stockroom-backend/pkg/metrics"
	"github.com/mrivera-dev/stockroom-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              *db.Client
	Redis           *redis.Client
	SessionManager  session.AccessSessionChecker
	AuthService     authsvc.Service
	RegisterService authsvc.RegisterService
	Categories      *categorysvc.Service
	Products        *productsvc.Service
	Orders          *ordersvc.Service
	Inventory       *ledger.Service
	Dashboard       *dashboardsvc.Service
	Metrics         *metrics.HTTPMetrics
	Registry        *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.CORSOrigins...),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).
			Post("/register", controllers.Register(deps.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.Login(deps.AuthService, logg))
		r.Post("/auth/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/auth/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.ListCategories(deps.Categories, logg))
				r.Post("/", controllers.CreateCategory(deps.Categories, logg))
				r.Get("/{id}", controllers.GetCategory(deps.Categories, logg))
				r.Put("/{id}", controllers.UpdateCategory(deps.Categories, logg))
				r.Patch("/{id}", controllers.UpdateCategory(deps.Categories, logg))
				r.Delete("/{id}", controllers.DeleteCategory(deps.Categories, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ListProducts(deps.Products, logg))
				r.Post("/", controllers.CreateProduct(deps.Products, logg))
				r.Get("/{id}", controllers.GetProduct(deps.Products, logg))
				r.Put("/{id}", controllers.UpdateProduct(deps.Products, logg))
				r.Patch("/{id}", controllers.UpdateProduct(deps.Products, logg))
				r.Delete("/{id}", controllers.DeleteProduct(deps.Products, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(deps.Orders, logg))
				r.Post("/", controllers.CreateOrder(deps.Orders, logg))
				r.Get("/{id}", controllers.GetOrder(deps.Orders, logg))
				r.Put("/{id}", controllers.UpdateOrder(deps.Orders, logg))
				r.Patch("/{id}", controllers.UpdateOrder(deps.Orders, logg))
				r.Delete("/{id}", controllers.DeleteOrder(deps.Orders, logg))
			})

			r.Get("/inventory", controllers.ListInventoryLog(deps.Inventory, logg))

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", controllers.DashboardStats(deps.Dashboard, logg))
				r.Get("/inventory-summary", controllers.DashboardInventorySummary(deps.Dashboard, logg))
				r.Get("/stock-chart", controllers.DashboardStockChart(deps.Dashboard, logg))
			})
		})
	})

	return r
}
