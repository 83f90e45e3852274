package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"

	"github.com/wanderplan/wanderplan-backend/config"
	"github.com/wanderplan/wanderplan-backend/db"
	"github.com/wanderplan/wanderplan-backend/handlers"
	"github.com/wanderplan/wanderplan-backend/internal/store/postgres"
	"github.com/wanderplan/wanderplan-backend/logger"
	"github.com/wanderplan/wanderplan-backend/middleware"
	tripservice "github.com/wanderplan/wanderplan-backend/models/trip/service"
	"github.com/wanderplan/wanderplan-backend/pkg/geocoder"
	"github.com/wanderplan/wanderplan-backend/router"
)

var version = "dev"

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Database
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.ConnString())
	if err != nil {
		log.Fatalf("Failed to parse database config: %v", err)
	}
	if cfg.Server.Environment == config.EnvProduction {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Database.Host,
			MinVersion: tls.VersionTLS12,
		}
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Redis
	redisOptions := &redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	if cfg.Redis.UseTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOptions)
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warnw("Failed to close Redis client", "error", err)
		}
	}()

	// Supabase auth
	supabaseClient, err := supabase.NewClient(cfg.ExternalServices.SupabaseURL, cfg.ExternalServices.SupabaseAnonKey, nil)
	if err != nil {
		log.Fatalf("Failed to create Supabase client: %v", err)
	}

	jwtValidator, err := middleware.NewJWTValidator(cfg)
	if err != nil {
		log.Fatalf("Failed to create JWT validator: %v", err)
	}

	// Geocoding: Mapbox when a token is configured, Nominatim otherwise.
	var geocodeClient geocoder.Client
	if cfg.ExternalServices.MapboxAccessToken != "" {
		geocodeClient = geocoder.NewMapboxClient(cfg.ExternalServices.MapboxAccessToken)
	} else {
		log.Warn("MAPBOX_ACCESS_TOKEN not set, falling back to Nominatim")
		geocodeClient = geocoder.NewNominatimClient()
	}
	geocodeClient = geocoder.NewCachedClient(geocodeClient, redisClient,
		time.Duration(cfg.Search.CacheTTLSeconds)*time.Second)

	// Stores and services
	tripStore := postgres.NewTripStore(pool)
	tripService := tripservice.NewTripService(tripStore, geocodeClient)

	// Handlers
	deps := router.Dependencies{
		Config:          cfg,
		JWTValidator:    jwtValidator,
		RedisClient:     redisClient,
		AuthHandler:     handlers.NewAuthHandler(supabaseClient, cfg),
		TripHandler:     handlers.NewTripHandler(tripService),
		PlaceHandler:    handlers.NewPlaceHandler(geocodeClient, cfg.Search.ResultLimit),
		SearchWSHandler: handlers.NewSearchWSHandler(geocodeClient, &cfg.Search, &cfg.Server),
		HealthHandler:   handlers.NewHealthHandler(pool, redisClient, version),
		Logger:          log,
	}

	r := router.SetupRouter(deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}

	// Let in-flight status repairs finish before the pool closes.
	tripService.Wait()
	log.Info("Server stopped")
}
