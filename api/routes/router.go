package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shubhavasar/storefront-backend/api/controllers"
	webhookcontrollers "github.com/shubhavasar/storefront-backend/api/controllers/webhooks"
	"github.com/shubhavasar/storefront-backend/api/middleware"
	"github.com/shubhavasar/storefront-backend/internal/cart"
	checkoutsvc "github.com/shubhavasar/storefront-backend/internal/checkout"
	"github.com/shubhavasar/storefront-backend/internal/notify"
	"github.com/shubhavasar/storefront-backend/internal/orders"
	"github.com/shubhavasar/storefront-backend/internal/products"
	stripewebhook "github.com/shubhavasar/storefront-backend/internal/webhooks/stripe"
	"github.com/shubhavasar/storefront-backend/internal/wishlist"
	"github.com/shubhavasar/storefront-backend/pkg/config"
	"github.com/shubhavasar/storefront-backend/pkg/db"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
	"github.com/shubhavasar/storefront-backend/pkg/redis"
	"github.com/shubhavasar/storefront-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	checkoutService *checkoutsvc.Service,
	webhookService *stripewebhook.Service,
	stripeClient *stripe.Client,
	notifyService *notify.Service,
	cartService *cart.Service,
	ordersRepo *orders.Repository,
	wishlistRepo *wishlist.Repository,
	productsRepo *products.Repository,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(webhookService, stripeClient, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))

		r.Post("/checkout/session", controllers.CreateCheckoutSession(checkoutService, logg))
		r.Post("/checkout/estimate", controllers.CheckoutEstimate(checkoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(ordersRepo, logg))
			r.Get("/{orderId}", controllers.OrdersDetail(ordersRepo, logg))
		})

		r.Post("/contact", controllers.Contact(notifyService, logg))
		r.Post("/home-visit", controllers.HomeVisit(notifyService, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(cartService, logg))
			r.Post("/items", controllers.CartAdd(cartService, logg))
			r.Patch("/items", controllers.CartUpdateQuantity(cartService, logg))
			r.Delete("/items", controllers.CartRemove(cartService, logg))
			r.Delete("/", controllers.CartClear(cartService, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(wishlistRepo, logg))
			r.Post("/", controllers.WishlistAdd(wishlistRepo, logg))
			r.Delete("/{productId}", controllers.WishlistRemove(wishlistRepo, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(productsRepo, logg))
			r.Get("/{productId}", controllers.ProductsDetail(productsRepo, logg))
		})
	})

	return r
}
