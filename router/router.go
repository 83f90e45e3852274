package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wanderplan/wanderplan-backend/config"
	"github.com/wanderplan/wanderplan-backend/handlers"
	"github.com/wanderplan/wanderplan-backend/middleware"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config          *config.Config
	JWTValidator    middleware.Validator
	RedisClient     *redis.Client
	AuthHandler     *handlers.AuthHandler
	TripHandler     *handlers.TripHandler
	PlaceHandler    *handlers.PlaceHandler
	SearchWSHandler *handlers.SearchWSHandler
	HealthHandler   *handlers.HealthHandler
	Logger          *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	// Global middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Health and metrics routes
	r.GET("/health/liveness", deps.HealthHandler.LivenessHandler)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		// Auth routes are keyed by client IP to slow down brute forcing.
		authRateLimit := middleware.RateLimiter(deps.RedisClient, "auth", deps.Config.RateLimit.AuthRequestsPerMinute)
		authGroup := v1.Group("/auth")
		authGroup.Use(authRateLimit)
		{
			authGroup.POST("/signup", deps.AuthHandler.SignUpHandler)
			authGroup.POST("/signin", deps.AuthHandler.SignInHandler)
			authGroup.POST("/refresh", deps.AuthHandler.RefreshTokenHandler)
		}

		// Authenticated routes
		authMiddleware := middleware.AuthMiddleware(deps.JWTValidator)
		authRoutes := v1.Group("")
		authRoutes.Use(authMiddleware)
		{
			tripRoutes := authRoutes.Group("/trips")
			{
				tripRoutes.POST("", deps.TripHandler.CreateTripHandler)
				tripRoutes.GET("", deps.TripHandler.ListTripsHandler)
				tripRoutes.GET("/:id", deps.TripHandler.GetTripHandler)
				tripRoutes.PATCH("/:id", deps.TripHandler.UpdateTripHandler)
				tripRoutes.DELETE("/:id", deps.TripHandler.DeleteTripHandler)
			}

			searchRateLimit := middleware.RateLimiter(deps.RedisClient, "search", deps.Config.Search.RequestsPerMinute)
			placeRoutes := authRoutes.Group("/places")
			placeRoutes.Use(searchRateLimit)
			{
				placeRoutes.POST("/search", deps.PlaceHandler.SearchPlacesHandler)
				placeRoutes.GET("/search/ws", deps.SearchWSHandler.HandleSearchSocket)
			}
		}
	}

	return r
}
