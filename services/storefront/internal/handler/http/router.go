package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/services/storefront/internal/content"
	"github.com/utafrali/storefront/services/storefront/internal/service"
)

const serviceName = "storefront"

// Deps holds everything the router serves.
type Deps struct {
	Visitors *service.Registry
	Catalog  *service.Catalog
	Checkout *service.CheckoutService
	Pages    *content.Library
	Health   *health.Handler
	Logger   *slog.Logger

	RequestTimeout time.Duration
	CORS           middleware.CORSConfig
	Visitor        middleware.VisitorConfig

	// RateLimit is applied to the API routes when set.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(d Deps) http.Handler {
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(d.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(timeout))
	r.Use(middleware.RequestLogging(d.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.CORS(d.CORS))

	// Health check endpoints
	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	pageHandler := NewPageHandler(d.Pages)
	r.Get("/pages", pageHandler.ListPages)
	r.Get("/pages/{slug}", pageHandler.GetPage)

	cartHandler := NewCartHandler(d.Visitors, d.Catalog, d.Logger)
	wishlistHandler := NewWishlistHandler(d.Visitors, d.Catalog, d.Logger)
	productHandler := NewProductHandler(d.Catalog, d.Logger)
	authHandler := NewAuthHandler(d.Visitors, d.Logger)
	orderHandler := NewOrderHandler(d.Visitors, d.Checkout, d.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Visitor(d.Visitor))
		if d.RateLimit != nil {
			r.Use(d.RateLimit)
		}
		r.Use(middleware.RequestLogger(d.Logger))
		r.Use(ContentTypeJSON)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{id}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{id}", cartHandler.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.GetWishlist)
			r.Delete("/", wishlistHandler.ClearWishlist)

			r.Post("/toggle", wishlistHandler.Toggle)
			r.Post("/items", wishlistHandler.AddItem)
			r.Get("/items/{id}", wishlistHandler.Contains)
			r.Delete("/items/{id}", wishlistHandler.RemoveItem)
		})

		r.Get("/products", productHandler.ListProducts)
		r.Get("/products/{id}", productHandler.GetProduct)
		r.Get("/categories", productHandler.ListCategories)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})

		r.Post("/checkout", orderHandler.Checkout)
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.ListOrders)
			r.Get("/{id}", orderHandler.GetOrder)
			r.Put("/{id}/pay", orderHandler.PayOrder)
		})
	})

	return r
}
