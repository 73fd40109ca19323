package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nvquang/formatforge/internal/analytics"
	"github.com/nvquang/formatforge/internal/models"
)

type AnalyticsHandler struct {
	recorder *analytics.Recorder
	logger   *zap.Logger
}

func NewAnalyticsHandler(recorder *analytics.Recorder, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{recorder: recorder, logger: logger}
}

// recordRequest is the POST /analytics body. Numeric and boolean
// fields are pointers so that presence can be validated.
type recordRequest struct {
	FileName       string `json:"fileName"`
	OriginalFormat string `json:"originalFormat"`
	TargetFormat   string `json:"targetFormat"`
	FileSize       *int64 `json:"fileSize"`
	ProcessingTime *int64 `json:"processingTime"`
	Success        *bool  `json:"success"`
	ErrorMessage   string `json:"errorMessage"`
}

func (r *recordRequest) missingFields() []string {
	var missing []string
	if r.FileName == "" {
		missing = append(missing, "fileName")
	}
	if r.OriginalFormat == "" {
		missing = append(missing, "originalFormat")
	}
	if r.TargetFormat == "" {
		missing = append(missing, "targetFormat")
	}
	if r.FileSize == nil {
		missing = append(missing, "fileSize")
	}
	if r.ProcessingTime == nil {
		missing = append(missing, "processingTime")
	}
	if r.Success == nil {
		missing = append(missing, "success")
	}
	return missing
}

// Record accepts an externally reported conversion event.
func (h *AnalyticsHandler) Record(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "Invalid JSON body",
		})
		return
	}

	if missing := req.missingFields(); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "Missing required fields: " + strings.Join(missing, ", "),
		})
		return
	}

	id := h.recorder.Record(analytics.Event{
		FileName:         req.FileName,
		OriginalFormat:   req.OriginalFormat,
		TargetFormat:     req.TargetFormat,
		FileSize:         *req.FileSize,
		ProcessingTimeMs: *req.ProcessingTime,
		Success:          *req.Success,
		ErrorMessage:     req.ErrorMessage,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"analyticsId": id,
		"message":     "Event recorded",
	})
}

// Query serves the GET /analytics actions: summary, formats, insights
// and export.
func (h *AnalyticsHandler) Query(c *gin.Context) {
	action := c.DefaultQuery("action", "summary")
	timeRange := c.DefaultQuery("timeRange", "all")

	switch action {
	case "summary":
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    h.recorder.Summarize(timeRange),
		})
	case "formats":
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    h.recorder.PairBreakdown(timeRange, c.Query("format")),
		})
	case "insights":
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    h.recorder.Insights(),
		})
	case "export":
		c.JSON(http.StatusOK, models.APIResponse{
			Success: true,
			Data:    h.recorder.Export(timeRange),
		})
	default:
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Error:   "Unknown action: " + action,
		})
	}
}
