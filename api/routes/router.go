// api/routes/router.go
package routes

import (
	"context"
	"net/http"
	"time"

	"eventhive/internal/auth"
	"eventhive/internal/bookings"
	"eventhive/internal/cancellation"
	"eventhive/internal/events"
	"eventhive/internal/notifications"
	"eventhive/internal/payments"
	"eventhive/internal/shared/config"
	"eventhive/internal/shared/database"
	"eventhive/internal/users"
	"eventhive/pkg/cache"
	"eventhive/pkg/logger"

	_ "eventhive/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher
	gateway   payments.Gateway
	log       *logger.Logger

	verifier     auth.Verifier
	cacheService cache.Service
	userService    users.Service
	eventService   events.Service
	bookingService bookings.Service
}

// NewRouter creates a new router instance. publisher and gateway are shared
// with the process so main can close them on shutdown.
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher, gateway payments.Gateway, log *logger.Logger) *Router {
	r := &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		gateway:   gateway,
		log:       log,
		verifier:  auth.NewJWTVerifier(cfg.Auth),
	}
	if client := db.GetRedisClient(); client != nil {
		r.cacheService = cache.NewService(client)
	}
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// users first: the other groups authorize through its directory
		r.setupUserRoutes(api)
		r.setupEventRoutes(api)
		r.setupBookingRoutes(api)
	}
}

// Close drains work the services started after responding. Call it after
// the HTTP server has stopped and before the publisher is closed.
func (r *Router) Close(ctx context.Context) error {
	if r.bookingService == nil {
		return nil
	}
	return r.bookingService.Close(ctx)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "eventhive-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "eventhive-backend",
			"redis":     r.db.GetRedisClient() != nil,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	userRepo := users.NewRepository(r.db.GetPostgreSQL())
	r.userService = users.NewService(userRepo, r.log)
	if r.cacheService != nil {
		r.userService.SetCacheService(r.cacheService)
	}

	userController := users.NewController(r.userService, r.log)
	users.SetupUserRoutes(rg, userController, r.verifier, r.userService)
}

func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	r.eventService = events.NewService(eventRepo, r.log)
	if r.cacheService != nil {
		r.eventService.SetCacheService(r.cacheService)
	}

	eventController := events.NewController(r.eventService, r.log)
	events.SetupEventRoutes(rg, eventController, r.verifier, r.userService)
}

func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	r.bookingService = bookings.NewService(bookingRepo, r.gateway, cancellation.NewPolicy(r.config.Booking), r.log)
	r.bookingService.SetEventCache(r.eventService)
	if r.publisher != nil {
		r.bookingService.SetNotifier(r.publisher)
	}

	bookingController := bookings.NewController(r.bookingService, r.log)
	bookings.SetupBookingRoutes(rg, bookingController, r.verifier, r.userService)
}
