package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luismarin/cartbase-backend/api/controllers"
	"github.com/luismarin/cartbase-backend/api/middleware"
	"github.com/luismarin/cartbase-backend/internal/basket"
	"github.com/luismarin/cartbase-backend/internal/catalog"
	"github.com/luismarin/cartbase-backend/pkg/config"
	"github.com/luismarin/cartbase-backend/pkg/db"
	"github.com/luismarin/cartbase-backend/pkg/logger"
	"github.com/luismarin/cartbase-backend/pkg/redis"
)

const adminRole = "admin"

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	basketService basket.Service,
	catalogService catalog.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(catalogService, logg))
		r.Get("/{id}", controllers.GetProduct(catalogService, logg))
	})

	r.Route("/basket", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}
		r.Get("/", controllers.GetBasket(basketService, logg))
		r.Get("/summary", controllers.BasketSummary(basketService, logg))
		r.Post("/items", controllers.AddBasketItem(basketService, logg))
		r.Put("/items", controllers.SetBasketItemQuantity(basketService, logg))
		r.Delete("/items/{productId}", controllers.RemoveBasketItem(basketService, logg))
		r.Delete("/clear", controllers.ClearBasket(basketService, logg))
	})

	r.Route("/admin/products", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireRole(adminRole, logg),
		)
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}
		r.Post("/", controllers.CreateProduct(catalogService, logg))
		r.Put("/{id}", controllers.UpdateProduct(catalogService, logg))
		r.Delete("/{id}", controllers.DeleteProduct(catalogService, logg))
	})

	return r
}
