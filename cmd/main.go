package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"fleetview/internal/cache"
	"fleetview/internal/config"
	"fleetview/internal/infrastructure/database/postgres"
	"fleetview/internal/ingestion"
	"fleetview/internal/logger"
	"fleetview/internal/metrics"
	"fleetview/internal/routes"
	pkgmqtt "fleetview/pkg/mqtt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.Upstream.BaseURL == "" {
		logger.Fatal("Upstream configuration is missing. Please set UPSTREAM_BASE_URL environment variable.")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}
	if cfg.Session.JWTSecret == "" {
		logger.Fatal("Session secret is missing. Please set SESSION_JWT_SECRET environment variable.")
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	store := newCacheStore(cfg)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close cache store", zap.Error(err))
		}
	}()

	registry := prometheus.NewRegistry()
	collector, err := metrics.NewPrometheusCollector(registry)
	if err != nil {
		logger.Fatal("Failed to register metrics", zap.Error(err))
	}

	router, services := routes.SetupRoutes(cfg, db, store, collector, registry)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go services.Sessions.StartCleanupJob(cleanupCtx, 1*time.Hour)

	alarmListener := startAlarmListener(cfg, services.Dashboard, collector)
	if alarmListener != nil {
		defer alarmListener.Stop()
	}

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	log.Println("Server exited properly")
}

// newCacheStore prefers Redis and falls back to the in-process store when no
// Redis address is configured or the connection fails.
func newCacheStore(cfg *config.Config) cache.Store {
	if cfg.Redis.Addr == "" {
		logger.Info("No Redis configured, using in-memory telemetry cache")
		return cache.NewMemoryStore()
	}

	store, err := cache.NewRedisStore(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory telemetry cache",
			zap.String("addr", cfg.Redis.Addr),
			zap.Error(err),
		)
		return cache.NewMemoryStore()
	}

	logger.Info("Redis telemetry cache connected", zap.String("addr", cfg.Redis.Addr))
	return store
}

// startAlarmListener connects the MQTT alarm subscription when a broker is
// configured. Alarm pushes are optional: without a broker the dashboard
// still works, it just waits out the cache TTL.
func startAlarmListener(cfg *config.Config, invalidator ingestion.CacheInvalidator, collector metrics.Collector) *ingestion.AlarmListener {
	if cfg.MQTT.Broker == "" || cfg.MQTT.AlarmTopic == "" {
		logger.Info("No MQTT broker configured, alarm pushes disabled")
		return nil
	}

	listener, err := ingestion.NewAlarmListener(&ingestion.AlarmListenerConfig{
		ClientConfig: &pkgmqtt.Config{
			Broker:               cfg.MQTT.Broker,
			ClientID:             cfg.MQTT.ClientID,
			Username:             cfg.MQTT.Username,
			Password:             cfg.MQTT.Password,
			CleanSession:         true,
			KeepAlive:            30,
			ConnectTimeout:       10,
			AutoReconnect:        true,
			MaxReconnectInterval: 1 * time.Minute,
		},
		AlarmTopic: cfg.MQTT.AlarmTopic,
		QoS:        byte(cfg.MQTT.QoS),
	}, invalidator, collector)
	if err != nil {
		logger.Warn("Alarm listener misconfigured, alarm pushes disabled", zap.Error(err))
		return nil
	}

	if err := listener.Start(); err != nil {
		logger.Warn("Failed to start alarm listener, alarm pushes disabled", zap.Error(err))
		return nil
	}

	return listener
}
