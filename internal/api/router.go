package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/eventra/eventra/internal/app"
	"github.com/eventra/eventra/internal/handlers"
	"github.com/eventra/eventra/internal/middleware"
	"github.com/eventra/eventra/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, cfg *app.Config, calendarSvc *services.CalendarService, trigger handlers.ManualTrigger) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if calendarSvc == nil {
		return nil, fmt.Errorf("calendar service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins...))

	r.NoRoute(middleware.NotFoundHandler)

	// Public endpoints
	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// Authenticated routes: the fronting gateway supplies caller identity.
	api := r.Group("/api")
	api.Use(middleware.Identity())

	notificationHandler, err := handlers.NewNotificationHandler(db)
	if err != nil {
		return nil, err
	}
	registerNotificationRoutes(api, notificationHandler)

	calendarHandler, err := handlers.NewCalendarHandler(calendarSvc, trigger)
	if err != nil {
		return nil, err
	}
	registerCalendarRoutes(api, calendarHandler)

	teamHandler, err := handlers.NewTeamHandler(db)
	if err != nil {
		return nil, err
	}
	registerTeamRoutes(api, teamHandler)

	return r, nil
}
