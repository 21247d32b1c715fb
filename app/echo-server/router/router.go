package router

import (
	"agrikoSearch/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupSearchRoutes(api *echo.Group, handler *rest.SearchHandler) {
	search := api.Group("/search")

	search.GET("/semantic", handler.SemanticSearch)
	search.GET("/hybrid", handler.HybridSearch)
	search.POST("/hybrid", handler.HybridSearchPost)
	search.GET("/contextual", handler.ContextualSearch)
}

func SetupAnalyticsRoutes(api *echo.Group, handler *rest.AnalyticsHandler, trackLimiter echo.MiddlewareFunc, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	search := api.Group("/search")

	search.POST("/analytics", handler.TrackEvent, trackLimiter)
	search.GET("/analytics", handler.Analytics, authRequired, adminOnly)
}
