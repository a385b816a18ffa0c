package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hotelfolio/internal/config"
	"hotelfolio/internal/domain/amenity"
	"hotelfolio/internal/domain/exchange"
	"hotelfolio/internal/domain/folio"
	"hotelfolio/internal/domain/license"
	"hotelfolio/internal/domain/pos"
	"hotelfolio/internal/domain/stay"
	"hotelfolio/internal/middleware"
	"hotelfolio/internal/notification"
	jwtsvc "hotelfolio/internal/pkg/jwt"
	"hotelfolio/internal/pkg/logger"
)

// Deps are the outbound adapters chosen by the caller from configuration.
type Deps struct {
	Mailer    notification.Mailer
	Publisher notification.Publisher
	RateCache exchange.Cache
	Rates     exchange.RateFetcher
	Location  *time.Location
}

// Router is the gin engine plus the background work its handlers start.
type Router struct {
	*gin.Engine
	reconciler *license.Reconciler
}

// Drain waits for licence notifications still in flight after the HTTP
// server stopped accepting requests.
func (r *Router) Drain(ctx context.Context) error {
	return r.reconciler.Wait(ctx)
}

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(cfg *config.Config, db *gorm.DB, deps Deps, log *zap.Logger) *Router {
	log = logger.OrNop(log)
	if deps.Mailer == nil {
		deps.Mailer = notification.NewDevConsoleMailer(log)
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}

	folioService := folio.NewService(
		stay.NewRepository(db),
		pos.NewRepository(db),
		amenity.NewRepository(db),
		folio.RevenuePolicy{OrderSameDay: cfg.OrderRevenueSameDay},
		log,
	)
	folioHandler := folio.NewHandler(folioService, deps.Location, log)

	reconciler := license.NewReconciler(license.NewRepository(db), deps.Mailer, deps.Publisher, cfg.FlutterwaveSecretHash, log)
	licenseHandler := license.NewHandler(reconciler, log)

	exchangeService := exchange.NewService(deps.RateCache, deps.Rates, cfg.ExchangeRateTTL, cfg.ExchangeRateTimeout, log)
	exchangeHandler := exchange.NewHandler(exchangeService, log)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Metrics(), middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", middleware.InternalTokenAuth(cfg.MetricsToken, log), gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		// public
		licenseHandler.RegisterWebhookRoutes(v1, middleware.RateLimit(cfg.WebhookRPS, cfg.WebhookBurst))
		exchangeHandler.RegisterRoutes(v1)

		// staff, scoped to the hotel in the token
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j), middleware.RequireHotelAccess("hotelId"))
		{
			folioHandler.RegisterRoutes(protected)
		}
	}

	return &Router{Engine: r, reconciler: reconciler}
}
