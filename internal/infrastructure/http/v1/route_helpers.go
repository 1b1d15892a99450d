package v1

import (
	"github.com/gin-gonic/gin"
)

// BeerRouteHandler defines the methods a beer resource handler must implement.
type BeerRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Patch(c *gin.Context)
	Delete(c *gin.Context)
}

// BeerHistoryHandler is an optional interface for handlers that serve change history.
type BeerHistoryHandler interface {
	HasHistory() bool
	History(c *gin.Context)
}

// RegisterBeerRoutes registers the CRUD routes of the beer resource.
// If the handler also implements BeerHistoryHandler and has a history source,
// the history route is registered too.
func RegisterBeerRoutes(group *gin.RouterGroup, handler BeerRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.PATCH("/:id", handler.Patch)
	group.DELETE("/:id", handler.Delete)

	if hh, ok := handler.(BeerHistoryHandler); ok && hh.HasHistory() {
		group.GET("/:id/history", hh.History)
	}
}
