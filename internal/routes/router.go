package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleetview/internal/cache"
	"fleetview/internal/config"
	"fleetview/internal/delivery/http/handler"
	"fleetview/internal/infrastructure/database/postgres"
	"fleetview/internal/logger"
	"fleetview/internal/metrics"
	"fleetview/internal/middleware"
	"fleetview/internal/upstream"
	"fleetview/internal/usecase/binding"
	"fleetview/internal/usecase/dashboard"
	"fleetview/internal/usecase/session"
)

const loginRoute = "/api/v1/auth/login"

// Services exposes the usecases main wires into background jobs after the
// router is built.
type Services struct {
	Sessions  *session.Service
	Dashboard *dashboard.Service
}

func SetupRoutes(
	cfg *config.Config,
	db *postgres.DB,
	store cache.Store,
	collector metrics.Collector,
	registry *prometheus.Registry,
) (*gin.Engine, *Services) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order: recovery, request ID, logging, security headers, CORS, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	upstreamClient := upstream.NewClient(&cfg.Upstream, collector)

	sessionRepository := postgres.NewSessionRepository(db)
	sessionService := session.NewService(sessionRepository, upstreamClient, cfg, collector)

	dashboardService := dashboard.NewService(upstreamClient, store, cfg.Upstream.CacheTTL, collector)
	bindingService := binding.NewService(upstreamClient, dashboardService)

	authHandler := handler.NewAuthHandler(sessionService, cfg)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	deviceHandler := handler.NewDeviceHandler(dashboardService)
	bindingHandler := handler.NewBindingHandler(bindingService)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.SessionGuard(cfg, sessionService, loginRoute))
	{
		authHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		{
			authHandler.RegisterSessionRoutes(protected)
			dashboardHandler.RegisterRoutes(protected)
			deviceHandler.RegisterRoutes(protected)
			bindingHandler.RegisterRoutes(protected)
		}
	}

	logger.Info("All routes initialized")
	return router, &Services{
		Sessions:  sessionService,
		Dashboard: dashboardService,
	}
}
