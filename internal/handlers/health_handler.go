package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nvquang/formatforge/internal/models"
	"github.com/nvquang/formatforge/internal/service"
)

type HealthHandler struct {
	storage *service.StorageService
	queue   *service.QueueService
}

func NewHealthHandler(storage *service.StorageService, queue *service.QueueService) *HealthHandler {
	return &HealthHandler{storage: storage, queue: queue}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	services := map[string]string{
		"queue": h.queue.HealthCheck(),
	}
	for k, v := range h.storage.HealthCheck(c.Request.Context()) {
		services[k] = v
	}

	overall := "healthy"
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			overall = "unhealthy"
			break
		}
	}

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}
