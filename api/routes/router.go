// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/Rounit002/maasaraswatilibrary/internal/availability"
	"github.com/Rounit002/maasaraswatilibrary/internal/catalog"
	"github.com/Rounit002/maasaraswatilibrary/internal/notifications"
	"github.com/Rounit002/maasaraswatilibrary/internal/renewal"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/config"
	"github.com/Rounit002/maasaraswatilibrary/internal/shared/database"
	"github.com/Rounit002/maasaraswatilibrary/internal/students"
	"github.com/Rounit002/maasaraswatilibrary/pkg/cache"
)

// Router holds all route dependencies
type Router struct {
	config       *config.Config
	db           *database.DB
	sessionStore *renewal.Store
	producer     notifications.EventProducer

	cacheService cache.Service

	// Services are wired once and shared across route groups.
	catalogService      catalog.Service
	availabilityService availability.Service
	studentService      students.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, sessionStore *renewal.Store, producer notifications.EventProducer) *Router {
	return &Router{
		config:       cfg,
		db:           db,
		sessionStore: sessionStore,
		producer:     producer,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Shared redis cache layer; services fall back to the database when
	// redis is unavailable.
	if r.db.Redis != nil {
		r.cacheService = cache.NewService(r.db.GetRedis())
	}

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupCatalogRoutes(api)
		r.setupStudentRoutes(api)
		r.setupAvailabilityRoutes(api)
		r.setupRenewalRoutes(api)
	}

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "library-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "library-backend",
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
			"status":        "operational",
			"api_version":   r.config.APIVersion,
			"open_renewals": r.sessionStore.Len(),
			"timestamp":     time.Now(),
		})
	})
}

// setupCatalogRoutes configures branch/shift catalog routes
func (r *Router) setupCatalogRoutes(rg *gin.RouterGroup) {
	catalogRepo := catalog.NewRepository(r.db.GetPostgreSQL())
	r.catalogService = catalog.NewService(catalogRepo)

	if r.cacheService != nil {
		r.catalogService.SetCacheService(r.cacheService)
	}

	catalogController := catalog.NewController(r.catalogService)

	catalog.SetupCatalogRoutes(rg, catalogController)
}

// setupStudentRoutes configures expired-member listing and student routes
func (r *Router) setupStudentRoutes(rg *gin.RouterGroup) {
	studentRepo := students.NewRepository(r.db.GetPostgreSQL())
	r.studentService = students.NewService(studentRepo)

	if r.cacheService != nil {
		r.studentService.SetCacheService(r.cacheService)
	}

	studentController := students.NewController(r.studentService)
	students.SetupStudentRoutes(rg, studentController)
}

// setupAvailabilityRoutes configures seat/locker/shift availability routes
func (r *Router) setupAvailabilityRoutes(rg *gin.RouterGroup) {
	availabilityRepo := availability.NewRepository(r.db.GetPostgreSQL())
	r.availabilityService = availability.NewService(availabilityRepo)

	if r.cacheService != nil {
		r.availabilityService.SetCacheService(r.cacheService)
	}

	// The student service provides current assignments for the
	// self-exemption merge.
	availabilityController := availability.NewController(r.availabilityService, r.catalogService, r.studentService)
	availability.SetupAvailabilityRoutes(rg, availabilityController)
}

// setupRenewalRoutes configures the renewal session routes
func (r *Router) setupRenewalRoutes(rg *gin.RouterGroup) {
	renewalService := renewal.NewService(r.sessionStore, r.catalogService, r.availabilityService, r.studentService, r.producer)
	renewalController := renewal.NewController(renewalService)

	renewal.SetupRenewalRoutes(rg, renewalController)
}
