// Package v1 provides HTTP API version 1.
package v1

import (
	"strings"

	"github.com/gin-gonic/gin"

	"beercatalog/internal/domain/beer"
	"beercatalog/internal/infrastructure/http/v1/handlers"
	"beercatalog/internal/infrastructure/http/v1/middleware"
	"beercatalog/pkg/logger"
)

// DefaultBeerPath is where the beer resource is mounted unless configured otherwise.
const DefaultBeerPath = "/api/v1/beers"

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// BeerService backs the beer resource
	BeerService *beer.Service

	// History serves change history; nil disables the history route
	History beer.HistoryReader

	// Ready is checked by the readiness probe
	Ready handlers.Pinger

	// Driver is reported by the readiness probe
	Driver string

	// BeerPath is the mount point of the beer resource
	BeerPath string

	// Debug enables gin debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	cfg.BeerPath = strings.TrimRight(cfg.BeerPath, "/")
	if cfg.BeerPath == "" {
		cfg.BeerPath = DefaultBeerPath
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Ready, cfg.Driver)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	baseHandler := handlers.NewBaseHandler()
	beerHandler := handlers.NewBeerHandler(baseHandler, cfg.BeerService, cfg.History, cfg.BeerPath)
	RegisterBeerRoutes(router.Group(cfg.BeerPath), beerHandler)

	return router
}
