package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gatepasshq/gatepass-backend/api/controllers"
	webhookcontrollers "github.com/gatepasshq/gatepass-backend/api/controllers/webhooks"
	"github.com/gatepasshq/gatepass-backend/api/middleware"
	"github.com/gatepasshq/gatepass-backend/internal/auth"
	"github.com/gatepasshq/gatepass-backend/internal/checkout"
	stripewebhook "github.com/gatepasshq/gatepass-backend/internal/webhooks/stripe"
	"github.com/gatepasshq/gatepass-backend/pkg/auth/session"
	"github.com/gatepasshq/gatepass-backend/pkg/config"
	"github.com/gatepasshq/gatepass-backend/pkg/db"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	"github.com/gatepasshq/gatepass-backend/pkg/redis"
	pkgstripe "github.com/gatepasshq/gatepass-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient db.Pinger,
	redisClient *redis.Client,
	cookieCodec *session.CookieCodec,
	authService auth.Service,
	checkoutService checkout.Service,
	stripeClient *pkgstripe.Client,
	stripeWebhookService *stripewebhook.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(),
		middleware.CORS(cfg.Client),
	)

	publicPolicy := middleware.NewRateLimitPolicy(
		"public",
		cfg.RateLimit.PublicWindow,
		cfg.RateLimit.PublicIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// The webhook route stays outside the session/rate-limit stack: it must
	// see the raw request body and is authenticated by signature, not cookie.
	r.Route(cfg.Routes.WebhookPrefix, func(r chi.Router) {
		r.Post("/payment", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, logg))
	})

	r.Route(cfg.Routes.PublicPrefix, func(r chi.Router) {
		r.Use(middleware.RateLimit(publicPolicy, redisClient, logg))
		r.Use(middleware.Session(cookieCodec))

		r.Post("/checkout-session", controllers.CheckoutSession(checkoutService, logg))
		r.Post("/authenticate", controllers.Authenticate(authService, cookieCodec, logg))
		r.Post("/deauthenticate", controllers.Deauthenticate(authService, cookieCodec, logg))
		r.Get("/is-authenticated", controllers.IsAuthenticated(authService, logg))
	})

	r.Route(cfg.Routes.ProtectedPrefix, func(r chi.Router) {
		r.Use(middleware.Session(cookieCodec))
		r.Use(middleware.RequireUser(authService, logg))

		r.Get("/test-data", controllers.ProtectedTestData())
	})

	return r
}
