package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nvquang/formatforge/internal/handlers"
	"github.com/nvquang/formatforge/internal/middleware"
)

type Router struct {
	convertHandler   *handlers.ConvertHandler
	analyticsHandler *handlers.AnalyticsHandler
	uploadHandler    *handlers.UploadHandler
	healthHandler    *handlers.HealthHandler
	logger           *zap.Logger
}

func NewRouter(
	convertHandler *handlers.ConvertHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	uploadHandler *handlers.UploadHandler,
	healthHandler *handlers.HealthHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		convertHandler:   convertHandler,
		analyticsHandler: analyticsHandler,
		uploadHandler:    uploadHandler,
		healthHandler:    healthHandler,
		logger:           logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.healthHandler.HealthCheck)

		v1.POST("/convert", r.convertHandler.Convert)
		v1.POST("/convert/async", r.convertHandler.ConvertAsync)
		v1.GET("/formats", r.convertHandler.Formats)
		v1.GET("/jobs/:id", r.convertHandler.JobStatus)

		v1.POST("/analytics", r.analyticsHandler.Record)
		v1.GET("/analytics", r.analyticsHandler.Query)

		v1.POST("/upload", r.uploadHandler.Upload)
		v1.GET("/files", r.uploadHandler.ListFiles)
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "File conversion service is running",
		})
	})

	return router
}
