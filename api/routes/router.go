package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/ovenly-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/ovenly-backend/api/controllers/cart"
	ordercontrollers "github.com/angelmondragon/ovenly-backend/api/controllers/orders"
	"github.com/angelmondragon/ovenly-backend/api/middleware"
	"github.com/angelmondragon/ovenly-backend/internal/cart"
	"github.com/angelmondragon/ovenly-backend/internal/checkout"
	"github.com/angelmondragon/ovenly-backend/internal/notifications"
	"github.com/angelmondragon/ovenly-backend/internal/orders"
	"github.com/angelmondragon/ovenly-backend/pkg/config"
	"github.com/angelmondragon/ovenly-backend/pkg/enums"
	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	"github.com/angelmondragon/ovenly-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/ovenly-backend/pkg/redis"
)

// Deps carries everything the router mounts. Idempotency and RateLimiter may
// be nil when Redis is disabled; Registry may be nil to skip /metrics.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Health        controllers.Dependencies
	Cart          cart.Service
	Checkout      checkout.Service
	Orders        orders.Service
	Notifications notifications.Service
	Idempotency   pkgredis.IdempotencyStore
	RateLimiter   pkgredis.RateLimiter
	Registry      *prometheus.Registry
	HTTPMetrics   *metrics.HTTPMetrics
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.Health, logg))
	})
	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))
	}

	idempotent := middleware.Idempotency(deps.Idempotency, cfg.Idempotency.TTL, logg)
	orderReplay := middleware.Idempotency(deps.Idempotency, middleware.OrderReplayTTL, logg)
	orderRateLimit := middleware.UserRateLimit("orders", deps.RateLimiter, cfg.RateLimit.OrdersPerWindow, cfg.RateLimit.Window, logg)
	vendorsOnly := middleware.RequireRole(logg, enums.RoleAdmin, enums.RoleBakeryOwner, enums.RoleRestaurantOwner)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Get(deps.Cart, logg))
			r.Delete("/", cartcontrollers.Clear(deps.Cart, logg))
			r.With(idempotent).Post("/items", cartcontrollers.AddItem(deps.Cart, logg))
			r.Put("/items/{cartItemId}", cartcontrollers.UpdateItem(deps.Cart, logg))
			r.Delete("/items/{cartItemId}", cartcontrollers.RemoveItem(deps.Cart, logg))
		})

		r.Get("/orders", ordercontrollers.List(deps.Orders, logg))
		r.With(orderReplay, orderRateLimit).Post("/orders", ordercontrollers.Create(deps.Checkout, logg))
		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Get("/", ordercontrollers.Detail(deps.Orders, logg))
			r.With(vendorsOnly, idempotent).Put("/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
			r.With(orderReplay).Post("/cancel", ordercontrollers.Cancel(deps.Orders, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Put("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			r.Put("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
		})
	})

	return r
}
