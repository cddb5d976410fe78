package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/pcforge-backend/api/controllers"
	"github.com/angelmondragon/pcforge-backend/api/middleware"
	"github.com/angelmondragon/pcforge-backend/internal/builds"
	"github.com/angelmondragon/pcforge-backend/internal/cart"
	"github.com/angelmondragon/pcforge-backend/internal/catalog"
	checkoutsvc "github.com/angelmondragon/pcforge-backend/internal/checkout"
	"github.com/angelmondragon/pcforge-backend/pkg/config"
	"github.com/angelmondragon/pcforge-backend/pkg/logger"
	"github.com/angelmondragon/pcforge-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	storePinger controllers.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	cartService cart.Service,
	buildService builds.Service,
	checkoutService checkoutsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Recoverer(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.Session(logg),
	)

	// A nil *redis.Client must not leak into the middleware as a non-nil
	// interface value.
	var (
		limiter     redis.RateLimiter
		idempotency redis.IdempotencyStore
		readyDeps   = map[string]controllers.Pinger{"store": storePinger}
	)
	if redisClient != nil {
		limiter = redisClient
		idempotency = redisClient
		readyDeps["redis"] = redisClient
	}

	recommendPolicy := middleware.NewRateLimitPolicy(
		"pc_builder",
		cfg.Builder.RateLimitWindow,
		cfg.Builder.RateLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyDeps))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotency, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(catalogService, logg))
			r.Get("/{slug}", controllers.GetCategory(catalogService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Get("/{id}", controllers.GetProduct(catalogService, logg))
		})

		r.Route("/pc-builder", func(r chi.Router) {
			r.With(middleware.RateLimit(recommendPolicy, limiter, logg)).Post("/recommend", controllers.RecommendBuild(buildService, logg))
			r.Get("/{id}", controllers.GetBuild(buildService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(cartService, logg))
			r.Post("/", controllers.AddCartItem(cartService, logg))
			r.Delete("/", controllers.ClearCart(cartService, logg))
			r.Put("/{id}", controllers.UpdateCartItem(cartService, logg))
			r.Delete("/{id}", controllers.RemoveCartItem(cartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))
	})

	return r
}
