package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/exclusivos-baez/storefront-api/internal/auth"
	"github.com/exclusivos-baez/storefront-api/internal/service"
	"github.com/exclusivos-baez/storefront-api/pkg/health"
	"github.com/exclusivos-baez/storefront-api/pkg/middleware"
)

// RouterDeps bundles everything the router needs. The handler layer stays
// constructor-free of wiring details; internal/app fills this in.
type RouterDeps struct {
	Catalog    *service.CatalogService
	Checkout   *service.CheckoutService
	Carts      *service.CartService
	Users      *service.UserService
	Devices    *service.DeviceService
	Drops      *service.DropService
	JWTManager *auth.JWTManager
	Health     *health.Handler
	Logger     *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront-api"))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	// Health check endpoints
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Public storefront endpoints consumed directly by the mobile shell.
	productHandler := NewProductHandler(deps.Catalog, deps.Logger)
	checkoutHandler := NewCheckoutHandler(deps.Checkout, deps.Logger)

	r.Get("/api/products", productHandler.List)
	r.Post("/api/checkout", checkoutHandler.Create)

	// Session cart endpoints (public, keyed on X-Session-ID)
	cartHandler := NewCartHandler(deps.Carts, deps.Checkout, deps.Logger)
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", cartHandler.Get)
		r.Delete("/", cartHandler.Clear)
		r.Post("/items", cartHandler.AddItem)
		r.Post("/checkout", cartHandler.Checkout)
	})

	// Auth endpoints (public)
	authHandler := NewAuthHandler(deps.Users, deps.Logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
	})

	// Token validator that bridges to our internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := deps.JWTManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
		}, nil
	}

	// Authenticated endpoints
	profileHandler := NewProfileHandler(deps.Users, deps.Logger)
	deviceHandler := NewDeviceHandler(deps.Devices, deps.Logger)
	dropHandler := NewDropHandler(deps.Drops, deps.Logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/api/v1/profile", profileHandler.Get)
		r.Put("/api/v1/profile", profileHandler.Update)

		r.Post("/api/v1/devices", deviceHandler.Report)

		r.Post("/api/v1/drops/{slug}/subscribe", dropHandler.Subscribe)
	})

	// Drop listing is public so the shell can show upcoming releases
	// before login.
	r.Get("/api/v1/drops", dropHandler.List)

	return r
}
